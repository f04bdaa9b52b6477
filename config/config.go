package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SiteConfig holds static display strings shown to users.
type SiteConfig struct {
	Title              string
	ShoppingListFooter string
}

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Database configuration
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string
	AutoMigrate bool
	Migrations  string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Media storage: "local" writes under MediaDir, "s3" uploads to S3Bucket
	MediaStorage  string
	MediaDir      string
	MediaURL      string
	MaxImageWidth int
	S3Bucket      string
	S3Region      string
	S3Endpoint    string

	// Logging
	LogLevel  string
	LogFormat string

	// Pagination and limits
	PageSize          int
	MaxPageSize       int
	RecipeCreateLimit int

	Site SiteConfig
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := fromEnv(env)

	// Docker secrets override plain environment variables outside CI
	if env != CI {
		applySecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func fromEnv(env Environment) *Config {
	defaultDriver := "postgres"
	if env == Development || env == Test {
		defaultDriver = "sqlite"
	}

	return &Config{
		Env: env,

		ServerHost:      getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		DBDriver:    getEnv("DB_DRIVER", defaultDriver),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "foodgram"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "foodgram"),
		DBSSLMode:   getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "foodgram.db"),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", env != Production),
		Migrations:  getEnv("MIGRATIONS_DIR", "migrations"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		MediaStorage:  getEnv("MEDIA_STORAGE", "local"),
		MediaDir:      getEnv("MEDIA_DIR", "media"),
		MediaURL:      getEnv("MEDIA_URL", "/media"),
		MaxImageWidth: getEnvInt("MAX_IMAGE_WIDTH", 1024),
		S3Bucket:      os.Getenv("S3_BUCKET_NAME"),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", defaultLogFormat(env)),

		PageSize:          getEnvInt("PAGE_SIZE", 6),
		MaxPageSize:       getEnvInt("MAX_PAGE_SIZE", 100),
		RecipeCreateLimit: getEnvInt("RECIPE_CREATE_LIMIT", 30),

		Site: SiteConfig{
			Title:              getEnv("SITE_TITLE", "Foodgram"),
			ShoppingListFooter: getEnv("SHOPPING_LIST_FOOTER", "Thank you for using Foodgram!"),
		},
	}
}

func defaultLogFormat(env Environment) string {
	if env == Development {
		return "console"
	}
	return "json"
}

// applySecrets overrides sensitive values with Docker secrets when present
func applySecrets(cfg *Config) {
	if v := readSecret("db_user"); v != "" {
		cfg.DBUser = v
	}
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := getEnv("SECRETS_DIR", "/run/secrets")
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// PostgresDSN returns the key/value connection string used by gorm's postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// DatabaseURL returns the postgres:// form used by cmd/migrate.
// DATABASE_URL takes precedence when set.
func (c *Config) DatabaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether any Redis endpoint was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
