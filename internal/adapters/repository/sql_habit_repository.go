package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

var _ domain.HabitRepository = (*SQLHabitRepository)(nil)

const habitColumns = `id, user_id, name, category, color, icon, sort_order,
	frequency_type, frequency_goal, archived, archived_at, log,
	current_streak, longest_streak, version, created_at, updated_at, deleted_at`

// SQLHabitRepository stores habits in Postgres or SQLite. The completion log is kept
// as a JSON object column so a habit is always read and written as one row.
type SQLHabitRepository struct {
	db *sqlx.DB
}

func NewSQLHabitRepository(db *sqlx.DB) *SQLHabitRepository {
	return &SQLHabitRepository{db: db}
}

type habitRow struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	Name          string     `db:"name"`
	Category      string     `db:"category"`
	Color         string     `db:"color"`
	Icon          string     `db:"icon"`
	SortOrder     int        `db:"sort_order"`
	FrequencyType string     `db:"frequency_type"`
	FrequencyGoal int        `db:"frequency_goal"`
	Archived      bool       `db:"archived"`
	ArchivedAt    *time.Time `db:"archived_at"`
	Log           []byte     `db:"log"`
	CurrentStreak int        `db:"current_streak"`
	LongestStreak int        `db:"longest_streak"`
	Version       int        `db:"version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (r habitRow) toDomain() (*domain.Habit, error) {
	h := &domain.Habit{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Category:      r.Category,
		Color:         r.Color,
		Icon:          r.Icon,
		SortOrder:     r.SortOrder,
		Frequency:     domain.Frequency{Type: r.FrequencyType, Goal: r.FrequencyGoal},
		Archived:      r.Archived,
		ArchivedAt:    utcPtr(r.ArchivedAt),
		Log:           make(domain.CompletionLog),
		CurrentStreak: r.CurrentStreak,
		LongestStreak: r.LongestStreak,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
		DeletedAt:     utcPtr(r.DeletedAt),
	}

	if len(r.Log) > 0 {
		if err := json.Unmarshal(r.Log, &h.Log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log of habit %s: %w", r.ID, err)
		}
	}

	return h, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func encodeLog(l domain.CompletionLog) (string, error) {
	if l == nil {
		l = domain.CompletionLog{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("failed to marshal log: %w", err)
	}
	return string(data), nil
}

func (r *SQLHabitRepository) selectHabits(ctx context.Context, query string, args ...interface{}) ([]*domain.Habit, error) {
	var rows []habitRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	habits := make([]*domain.Habit, 0, len(rows))
	for _, row := range rows {
		h, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

func (r *SQLHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	logJSON, err := encodeLog(h.Log)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO habits (` + habitColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, NULL)`

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		h.ID, h.UserID, h.Name, h.Category, h.Color, h.Icon, h.SortOrder,
		h.Frequency.Type, h.Frequency.Goal, h.Archived, h.ArchivedAt, logJSON,
		h.CurrentStreak, h.LongestStreak, h.CreatedAt.UTC(), h.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: habit %s already exists", domain.ErrHabitConflict, h.ID)
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *SQLHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = ? AND deleted_at IS NULL`

	var row habitRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return row.toDomain()
}

func (r *SQLHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = ? AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at ASC`

	habits, err := r.selectHabits(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (r *SQLHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	logJSON, err := encodeLog(h.Log)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
        UPDATE habits SET
            name=?, category=?, color=?, icon=?, sort_order=?,
            frequency_type=?, frequency_goal=?, archived=?, archived_at=?, log=?,
            updated_at=?, version = version + 1
        WHERE id=? AND version=? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		h.Name, h.Category, h.Color, h.Icon, h.SortOrder,
		h.Frequency.Type, h.Frequency.Goal, h.Archived, h.ArchivedAt, logJSON,
		now, h.ID, h.Version,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		var count int
		existsQuery := r.db.Rebind(`SELECT count(*) FROM habits WHERE id = ? AND deleted_at IS NULL`)
		if checkErr := r.db.GetContext(ctx, &count, existsQuery, h.ID); checkErr != nil {
			return fmt.Errorf("existence check failed: %w", checkErr)
		}
		if count == 0 {
			return domain.ErrHabitNotFound
		}
		return domain.ErrHabitConflict
	}

	h.Version++
	h.UpdatedAt = now
	return nil
}

func (r *SQLHabitRepository) Delete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	query := `
        UPDATE habits
        SET deleted_at = ?, updated_at = ?, version = version + 1
        WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), now, now, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// GetChanges includes soft-deleted rows so clients can drop them locally.
func (r *SQLHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = ? AND updated_at > ?
        ORDER BY updated_at ASC`

	habits, err := r.selectHabits(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return habits, nil
}

func (r *SQLHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `UPDATE habits SET current_streak = ?, longest_streak = ? WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}
