package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// redisNamespace prefixes every key the API writes so one Redis can be
// shared with other applications.
const redisNamespace = "foodgram"

// RedisKey joins parts under the application namespace,
// e.g. RedisKey("revoked", jti) is "foodgram:revoked:<jti>".
func RedisKey(parts ...string) string {
	return redisNamespace + ":" + strings.Join(parts, ":")
}

// RedisOptions builds client options from the configuration.
// REDIS_URL wins over the host/port settings when both are present.
// Denylist lookups sit on every authenticated request, so timeouts are short.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsed
	}

	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	return opts, nil
}

// NewRedisClient connects to the Redis that holds revoked tokens and
// recipe rate limit counters.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RedisHealthCheck(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to redis")
	return client, nil
}

// RedisHealthCheck pings client.
func RedisHealthCheck(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
