package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "habitflow_test.db")
	db, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func setupPostgresDB(t *testing.T, driver string) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "habitflow_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "habitflow_db"),
	)

	db, err := Open(context.Background(), driver, dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestSQLite_Repositories(t *testing.T) {
	db := setupSQLiteDB(t)

	t.Run("Habits", func(t *testing.T) {
		testHabitRepositoryContract(t, NewSQLHabitRepository(db))
	})
	t.Run("Reviews", func(t *testing.T) {
		testReviewRepositoryContract(t, NewSQLReviewRepository(db))
	})
	t.Run("Users", func(t *testing.T) {
		testUserRepositoryContract(t, NewSQLUserRepository(db))
	})
}

func TestPostgres_Repositories_Integration(t *testing.T) {
	for _, driver := range []string{DriverPgx, DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			db := setupPostgresDB(t, driver)

			t.Run("Habits", func(t *testing.T) {
				testHabitRepositoryContract(t, NewSQLHabitRepository(db))
			})
			t.Run("Reviews", func(t *testing.T) {
				testReviewRepositoryContract(t, NewSQLReviewRepository(db))
			})
			t.Run("Users", func(t *testing.T) {
				testUserRepositoryContract(t, NewSQLUserRepository(db))
			})
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupSQLiteDB(t)
	assert.NoError(t, Migrate(context.Background(), db))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite",
		sqliteDSN("/tmp/a.db"))
	assert.Equal(t, "file:a.db?_pragma=busy_timeout(1)", sqliteDSN("file:a.db?_pragma=busy_timeout(1)"))
}
