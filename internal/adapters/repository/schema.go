package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		name           TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT 'General',
		color          TEXT NOT NULL DEFAULT '',
		icon           TEXT NOT NULL DEFAULT '',
		sort_order     INTEGER NOT NULL DEFAULT 0,
		frequency_type TEXT NOT NULL DEFAULT 'daily',
		frequency_goal INTEGER NOT NULL DEFAULT 1,
		archived       BOOLEAN NOT NULL DEFAULT FALSE,
		archived_at    TIMESTAMPTZ,
		log            JSONB NOT NULL DEFAULT '{}'::jsonb,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		version        INTEGER NOT NULL DEFAULT 1,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		deleted_at     TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_user_updated ON habits (user_id, updated_at)`,
	`CREATE TABLE IF NOT EXISTS monthly_reviews (
		user_id      TEXT NOT NULL,
		period       TEXT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		decisions    JSONB NOT NULL DEFAULT '[]'::jsonb,
		PRIMARY KEY (user_id, period)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		name           TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT 'General',
		color          TEXT NOT NULL DEFAULT '',
		icon           TEXT NOT NULL DEFAULT '',
		sort_order     INTEGER NOT NULL DEFAULT 0,
		frequency_type TEXT NOT NULL DEFAULT 'daily',
		frequency_goal INTEGER NOT NULL DEFAULT 1,
		archived       BOOLEAN NOT NULL DEFAULT 0,
		archived_at    DATETIME,
		log            TEXT NOT NULL DEFAULT '{}',
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		version        INTEGER NOT NULL DEFAULT 1,
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL,
		deleted_at     DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_user_updated ON habits (user_id, updated_at)`,
	`CREATE TABLE IF NOT EXISTS monthly_reviews (
		user_id      TEXT NOT NULL,
		period       TEXT NOT NULL,
		completed_at DATETIME NOT NULL,
		decisions    TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (user_id, period)
	)`,
}

// Migrate creates the tables for the connected dialect. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := postgresSchema
	if isSQLite(db) {
		stmts = sqliteSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
