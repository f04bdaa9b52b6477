package config

import (
	"fmt"
	"strings"
)

// devJWTSecret is only accepted outside production.
const devJWTSecret = "foodgram-dev-secret"

// ValidateConfig checks if the configuration meets the requirements for its environment.
// Outside production a missing JWT secret falls back to devJWTSecret.
func ValidateConfig(cfg *Config) error {
	var errors []string

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errors = append(errors, "DB_HOST is required for the postgres driver")
		}
		if cfg.DBName == "" {
			errors = append(errors, "DB_NAME is required for the postgres driver")
		}
		if cfg.Env == Production && cfg.DBPassword == "" {
			errors = append(errors, "db_password secret is required")
		}
		if cfg.Env == CI && cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD environment variable is required in CI environment")
		}
	case "sqlite":
		if cfg.Env == Production {
			errors = append(errors, "sqlite driver is not supported in production")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown DB_DRIVER %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == Production {
			errors = append(errors, "jwt_secret secret is required")
		} else {
			cfg.JWTSecret = devJWTSecret
		}
	}

	switch cfg.MediaStorage {
	case "local":
		if cfg.MediaDir == "" {
			errors = append(errors, "MEDIA_DIR is required for local media storage")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET_NAME is required for s3 media storage")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown MEDIA_STORAGE %q", cfg.MediaStorage))
	}

	if cfg.PageSize < 1 {
		errors = append(errors, "PAGE_SIZE must be positive")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		errors = append(errors, "MAX_PAGE_SIZE must not be smaller than PAGE_SIZE")
	}
	if cfg.TokenTTL <= 0 {
		errors = append(errors, "TOKEN_TTL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
