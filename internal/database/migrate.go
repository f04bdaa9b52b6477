package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

// MigrationFiles lists forward migrations in dir, sorted by name.
// Files ending in _rollback.sql are excluded.
func MigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// AutoMigrate creates the schema from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// RunMigrations brings the schema up to date.
// SQLite uses gorm auto-migration; postgres applies the SQL files in migrationsDir once each.
func RunMigrations(db *gorm.DB, migrationsDir string) error {
	if db.Dialector.Name() == "sqlite" {
		logging.Info().Msg("using gorm auto-migration for sqlite")
		return AutoMigrate(db)
	}

	files, err := MigrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Table("schema_migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logging.Debug().Str("migration", name).Msg("skipping applied migration")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logging.Info().Str("migration", name).Msg("applied migration")
	}

	return nil
}
