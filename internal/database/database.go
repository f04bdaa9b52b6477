package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// Open connects to the configured database driver.
// TranslateError is enabled so duplicate-key failures surface as gorm.ErrDuplicatedKey.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		logging.Info().
			Str("host", cfg.DBHost).
			Str("port", cfg.DBPort).
			Str("user", cfg.DBUser).
			Msg("connecting to postgres")
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		logging.Info().Str("path", cfg.SQLitePath).Msg("opening sqlite database")
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// single writer; keeps transactions from tripping over SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logging.Info().Str("driver", cfg.DBDriver).Msg("database connection established")
	return db, nil
}

// SQLiteDSN enables foreign keys so ON DELETE CASCADE is honoured.
func SQLiteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	return "file:" + path + "?_foreign_keys=on"
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
