package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	migrationsDir := cfg.Migrations
	if *dir != "" {
		migrationsDir = *dir
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := &migrator{db: db, dir: migrationsDir}
	if err := m.ensureTable(); err != nil {
		logging.Fatal().Err(err).Msg("failed to prepare schema_migrations")
	}

	if *rollback {
		name, err := m.rollback()
		if err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		logging.Info().Str("migration", name).Msg("rolled back migration")
		return
	}

	applied, err := m.up()
	if err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	logging.Info().Strs("applied", applied).Msg("all migrations applied")
}

// migrator shares the schema_migrations bookkeeping with database.RunMigrations.
type migrator struct {
	db  *sqlx.DB
	dir string
}

func (m *migrator) ensureTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (m *migrator) applied() (map[string]bool, error) {
	var names []string
	if err := m.db.Select(&names, "SELECT name FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}

// up applies every pending migration and returns their names in order.
func (m *migrator) up() ([]string, error) {
	files, err := database.MigrationFiles(m.dir)
	if err != nil {
		return nil, err
	}
	done, err := m.applied()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range files {
		if done[name] {
			logging.Debug().Str("migration", name).Msg("already applied")
			continue
		}

		content, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = m.inTx(func(tx *sqlx.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", name, err)
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (name) VALUES ($1)", name)
			return err
		})
		if err != nil {
			return applied, err
		}

		logging.Info().Str("migration", name).Msg("applied migration")
		applied = append(applied, name)
	}
	return applied, nil
}

// rollback reverts the most recently applied migration using its _rollback.sql twin.
func (m *migrator) rollback() (string, error) {
	var name string
	err := m.db.Get(&name, "SELECT name FROM schema_migrations ORDER BY applied_at DESC, id DESC LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.New("no migrations to rollback")
		}
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	path := filepath.Join(m.dir, strings.TrimSuffix(name, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("rollback file for %s: %w", name, err)
	}

	err = m.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE name = $1", name)
		return err
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

func (m *migrator) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := m.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
