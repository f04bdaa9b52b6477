package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Name labels rejections in metrics
	Name string
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter handles rate limiting using Redis.
// A limiter without a Redis client lets every request through.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// NewRecipeCreationRateLimiter limits how many recipes one user may publish per hour.
func NewRecipeCreationRateLimiter(redisClient *redis.Client, perHour int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Name:      "recipe_creation",
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: database.RedisKey("rate_limit", "recipe_creation"),
	})
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting.
// It must run after AuthMiddleware.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.redis == nil || rl.config.Limit <= 0 {
			c.Next()
			return
		}

		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), strconv.FormatUint(uint64(userID), 10))
		if err != nil {
			// Log error but don't fail the request
			logging.Ctx(c.Request.Context()).Warn().Err(err).Str("limiter", rl.config.Name).Msg("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimitRejections.WithLabelValues(rl.config.Name).Inc()
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts one request for key in the current fixed window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}
