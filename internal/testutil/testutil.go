package testutil

import (
	"database/sql"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yardlex/lexingest/internal/config"
	"github.com/yardlex/lexingest/internal/db"
)

// OpenTestDB connects to the database named by TEST_DB_* env vars and
// applies migrations. Tests that need a database skip when
// TEST_DB_HOST is unset.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping database test")
	}
	port := 5432
	if raw := os.Getenv("TEST_DB_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		require.NoError(t, err)
		port = parsed
	}
	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASSWORD", "postgres"),
		DBName:   envOr("TEST_DB_NAME", "lexingest_test"),
		SSLMode:  "disable",
	}
	conn, err := db.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations(conn))
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
