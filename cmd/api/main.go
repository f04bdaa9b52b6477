package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, cfg.Migrations); err != nil {
			logging.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Redis backs the token denylist and the recipe rate limiter
	var redisClient *redis.Client
	var denylist service.TokenDenylist
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		denylist = service.NewRedisDenylist(redisClient)
	} else {
		logging.Warn().Msg("redis not configured, using in-memory token denylist and no rate limiting")
		mem, err := service.NewMemoryDenylist(10000)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to create token denylist")
		}
		denylist = mem
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize media storage")
	}

	// Initialize services
	images := service.NewImageService(store, cfg.MaxImageWidth)
	tags, err := service.NewTagService(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create tag service")
	}

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit)
	}

	srv := server.New(cfg, &api.Services{
		DB:            db,
		Redis:         redisClient,
		Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist),
		Users:         service.NewUserService(db),
		Recipes:       service.NewRecipeService(db, images),
		Subscriptions: service.NewSubscriptionService(db, images),
		Tags:          tags,
		Ingredients:   service.NewIngredientService(db),
		ShoppingList:  service.NewShoppingListService(db, cfg.Site),
		RecipeLimiter: limiter,
		Pages:         api.Paginator{DefaultLimit: cfg.PageSize, MaxLimit: cfg.MaxPageSize},
	})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logging.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}
