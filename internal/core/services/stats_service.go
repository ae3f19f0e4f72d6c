package services

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/analytics"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const (
	OverviewHeatmapDays = 30
	MaxHeatmapDays      = 366
)

var ErrRangeTooLarge = errors.New("date range too large, max 1 year allowed")

type StatsService struct {
	habitRepo domain.HabitRepository
}

func NewStatsService(habitRepo domain.HabitRepository) *StatsService {
	return &StatsService{
		habitRepo: habitRepo,
	}
}

func (s *StatsService) loadHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		h.Normalize()
	}
	return habits, nil
}

func (s *StatsService) GetHabitStats(ctx context.Context, userID, habitID string, now time.Time) (*domain.HabitStats, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	habit.Normalize()

	stats := analytics.ComputeHabitStats(habit, now)
	return &stats, nil
}

// GetOverview returns the dashboard payload: stats for every active habit plus
// the heatmap of the last 30 days.
func (s *StatsService) GetOverview(ctx context.Context, userID string, now time.Time) (*domain.Overview, error) {
	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &domain.Overview{
		Date:   domain.DateKey(now),
		Habits: make([]domain.HabitStats, 0, len(habits)),
	}

	for _, h := range habits {
		if h.Archived {
			continue
		}
		overview.Habits = append(overview.Habits, analytics.ComputeHabitStats(h, now))
	}
	overview.ActiveHabits = len(overview.Habits)

	from := domain.Day(now).AddDate(0, 0, -(OverviewHeatmapDays - 1))
	overview.Heatmap = analytics.Heatmap(habits, from, now)

	return overview, nil
}

func (s *StatsService) GetHeatmap(ctx context.Context, userID string, from, to time.Time) ([]domain.HeatmapCell, error) {
	if domain.DaysBetween(from, to)+1 > MaxHeatmapDays {
		return nil, ErrRangeTooLarge
	}

	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	return analytics.Heatmap(habits, from, to), nil
}

func (s *StatsService) GetInsights(ctx context.Context, userID string, today time.Time) ([]domain.Insight, error) {
	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	return analytics.GenerateInsights(habits, today), nil
}

func (s *StatsService) GetReviewSummary(ctx context.Context, userID string, now time.Time) (*domain.ReviewSummary, error) {
	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := analytics.GenerateReviewSummary(habits, now)
	return &summary, nil
}
