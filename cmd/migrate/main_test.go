package main

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testdb"
)

func TestMigratorRollbackAndReapply(t *testing.T) {
	gdb := testdb.NewPostgres(t)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	m := &migrator{db: sqlx.NewDb(sqlDB, "postgres"), dir: testdb.MigrationsDir()}
	require.NoError(t, m.ensureTable())

	applied, err := m.up()
	require.NoError(t, err)
	assert.Empty(t, applied, "testdb already applied every migration")

	name, err := m.rollback()
	require.NoError(t, err)
	assert.Equal(t, "0001_init.sql", name)

	var exists bool
	require.NoError(t, m.db.Get(&exists, "SELECT to_regclass('public.recipes') IS NOT NULL"))
	assert.False(t, exists)

	applied, err = m.up()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql"}, applied)

	require.NoError(t, m.db.Get(&exists, "SELECT to_regclass('public.recipes') IS NOT NULL"))
	assert.True(t, exists)
}

func TestMigratorRollbackWithNothingApplied(t *testing.T) {
	gdb := testdb.NewPostgres(t)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	m := &migrator{db: sqlx.NewDb(sqlDB, "postgres"), dir: testdb.MigrationsDir()}
	_, err = m.db.Exec("DELETE FROM schema_migrations")
	require.NoError(t, err)

	_, err = m.rollback()
	assert.EqualError(t, err, "no migrations to rollback")
}
