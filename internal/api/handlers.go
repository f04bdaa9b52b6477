package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	DB            *gorm.DB
	// Redis is nil when the denylist falls back to memory.
	Redis         *redis.Client
	Auth          service.IAuthService
	Users         service.IUserService
	Recipes       service.IRecipeService
	Subscriptions service.ISubscriptionService
	Tags          service.ITagService
	Ingredients   service.IIngredientService
	ShoppingList  service.IShoppingListService
	// RecipeLimiter may be nil; recipe creation is then unlimited.
	RecipeLimiter *middleware.RateLimiter
	Pages         Paginator
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, s *Services) {
	health := HealthCheck(s.DB, s.Redis)
	router.GET("/health", health)
	router.GET("/api/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	group := router.Group("/api")
	NewAuthHandler(s.Auth).RegisterRoutes(group)
	NewUserHandler(s.Users, s.Subscriptions, s.Auth, s.Pages).RegisterRoutes(group)
	NewRecipeHandler(s.Recipes, s.ShoppingList, s.Auth, s.RecipeLimiter, s.Pages).RegisterRoutes(group)
	NewTagHandler(s.Tags).RegisterRoutes(group)
	NewIngredientHandler(s.Ingredients).RegisterRoutes(group)
}

// HealthCheck reports liveness and whether the database and, when
// configured, Redis answer.
func HealthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"status": "healthy", "database": "ok"}
		status := http.StatusOK

		if err := database.HealthCheck(ctx, db); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("database health check failed")
			body["status"], body["database"] = "unhealthy", "unreachable"
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			body["redis"] = "ok"
			if err := database.RedisHealthCheck(ctx, rdb); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("redis health check failed")
				body["status"], body["redis"] = "unhealthy", "unreachable"
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, body)
	}
}
