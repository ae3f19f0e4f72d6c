package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// Stores bundles the repositories of one backend. DB is nil for the in-memory backend.
type Stores struct {
	Habits  domain.HabitRepository
	Reviews domain.ReviewRepository
	Users   domain.UserRepository
	DB      *sqlx.DB
}

func NewMemoryStores() *Stores {
	return &Stores{
		Habits:  NewInMemoryHabitRepository(),
		Reviews: NewInMemoryReviewRepository(),
		Users:   NewInMemoryUserRepository(),
	}
}

func NewSQLStores(db *sqlx.DB) *Stores {
	return &Stores{
		Habits:  NewSQLHabitRepository(db),
		Reviews: NewSQLReviewRepository(db),
		Users:   NewSQLUserRepository(db),
		DB:      db,
	}
}

// OpenSQLStores connects, migrates and returns SQL-backed stores. For SQLite the
// parent directory of path is created.
func OpenSQLStores(ctx context.Context, driver, dsn string) (*Stores, error) {
	if driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
	}

	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLStores(db), nil
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
