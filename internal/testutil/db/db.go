// Package db provides database utilities for testing
package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sellwatch/internal/config"
	"sellwatch/internal/database"
	"sellwatch/internal/repository/sqlite"
)

// PostgresEnv enables the tests that need a running PostgreSQL server
const PostgresEnv = "SELLWATCH_TEST_POSTGRES"

// CleanupTestDB drops all tables in the test database
func CleanupTestDB(db *sql.DB) error {
	// Get all table names
	rows, err := db.Query(`
		SELECT tablename
		FROM pg_tables
		WHERE schemaname = 'public'
	`)
	if err != nil {
		return fmt.Errorf("failed to get table names: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating over table names: %w", err)
	}

	if len(tables) == 0 {
		return nil
	}

	dropQuery := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", strings.Join(tables, ", "))
	if _, err := db.Exec(dropQuery); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return nil
}

// SetupPostgresTestDB returns a freshly migrated PostgreSQL database. The
// test is skipped unless SELLWATCH_TEST_POSTGRES is set.
func SetupPostgresTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv(PostgresEnv) == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", PostgresEnv)
	}

	cfg := LoadTestConfig(t)
	dbCfg := cfg.Database
	dbCfg.Driver = config.DriverPostgres

	db, err := database.Connect(dbCfg)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	// Clean up any existing tables
	require.NoError(t, CleanupTestDB(db), "Failed to cleanup test database")

	// Run migrations using the same setup as the main app
	require.NoError(t, database.RunMigrations(dbCfg), "Failed to run migrations")

	return db
}

// SetupSQLiteTestDB returns a migrated in-memory SQLite database
func SetupSQLiteTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err, "Failed to open sqlite test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}
