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

var _ domain.ReviewRepository = (*SQLReviewRepository)(nil)

type SQLReviewRepository struct {
	db *sqlx.DB
}

func NewSQLReviewRepository(db *sqlx.DB) *SQLReviewRepository {
	return &SQLReviewRepository{db: db}
}

type reviewRow struct {
	UserID      string    `db:"user_id"`
	Period      string    `db:"period"`
	CompletedAt time.Time `db:"completed_at"`
	Decisions   []byte    `db:"decisions"`
}

func (r reviewRow) toDomain() (*domain.MonthlyReview, error) {
	review := &domain.MonthlyReview{
		UserID:      r.UserID,
		Period:      r.Period,
		CompletedAt: r.CompletedAt.UTC(),
		Decisions:   []domain.ReviewDecision{},
	}
	if len(r.Decisions) > 0 {
		if err := json.Unmarshal(r.Decisions, &review.Decisions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decisions for %s: %w", r.Period, err)
		}
	}
	return review, nil
}

func (r *SQLReviewRepository) Save(ctx context.Context, review *domain.MonthlyReview) error {
	decisions := review.Decisions
	if decisions == nil {
		decisions = []domain.ReviewDecision{}
	}
	data, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("failed to marshal decisions: %w", err)
	}

	query := `
        INSERT INTO monthly_reviews (user_id, period, completed_at, decisions)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (user_id, period)
        DO UPDATE SET completed_at = excluded.completed_at, decisions = excluded.decisions`

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		review.UserID, review.Period, review.CompletedAt.UTC(), string(data))
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *SQLReviewRepository) GetByPeriod(ctx context.Context, userID, period string) (*domain.MonthlyReview, error) {
	query := `
        SELECT user_id, period, completed_at, decisions
        FROM monthly_reviews WHERE user_id = ? AND period = ?`

	var row reviewRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), userID, period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("review query failed: %w", err)
	}
	return row.toDomain()
}

func (r *SQLReviewRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.MonthlyReview, error) {
	query := `
        SELECT user_id, period, completed_at, decisions
        FROM monthly_reviews WHERE user_id = ?
        ORDER BY period DESC`

	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("review list failed: %w", err)
	}

	reviews := make([]*domain.MonthlyReview, 0, len(rows))
	for _, row := range rows {
		review, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
