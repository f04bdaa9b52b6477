package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, key := range []string{
		"DB_DRIVER", "DB_HOST", "DB_PASSWORD", "JWT_SECRET", "REDIS_URL", "REDIS_HOST",
		"MEDIA_STORAGE", "PAGE_SIZE", "MAX_PAGE_SIZE", "TOKEN_TTL", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "foodgram")
	t.Setenv("DB_SSL_MODE", "disable")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "foodgram", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "host=db port=5433 user=postgres password=postgres dbname=foodgram sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, "postgres://postgres:postgres@db:5433/foodgram?sslmode=disable", cfg.DatabaseURL())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, "local", cfg.MediaStorage)
	assert.Equal(t, "Thank you for using Foodgram!", cfg.Site.ShoppingListFooter)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigReadsDockerSecrets(t *testing.T) {
	isolateEnv(t)
	secrets := t.TempDir()
	t.Setenv("SECRETS_DIR", secrets)
	t.Setenv("JWT_SECRET", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "jwt_secret"), []byte("from-secret\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	isolateEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SITE_TITLE=Dotenv Foodgram\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("SITE_TITLE", "")
	os.Unsetenv("SITE_TITLE")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Dotenv Foodgram", cfg.Site.Title)
}

func TestValidateConfigProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{
		Env:          Production,
		DBDriver:     "postgres",
		DBHost:       "db",
		DBName:       "foodgram",
		MediaStorage: "s3",
		PageSize:     6,
		MaxPageSize:  100,
		TokenTTL:     time.Hour,
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_password secret is required")
	assert.Contains(t, err.Error(), "jwt_secret secret is required")
	assert.Contains(t, err.Error(), "S3_BUCKET_NAME is required")
}

func TestValidateConfigRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Env:          Development,
		DBDriver:     "mysql",
		MediaStorage: "local",
		MediaDir:     "media",
		PageSize:     6,
		MaxPageSize:  100,
		TokenTTL:     time.Hour,
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown DB_DRIVER "mysql"`)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("ENV", "production")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
