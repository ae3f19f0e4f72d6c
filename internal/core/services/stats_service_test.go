package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

func logDays(keys ...string) domain.CompletionLog {
	l := make(domain.CompletionLog, len(keys))
	for _, k := range keys {
		l[k] = true
	}
	return l
}

func TestStatsService_GetHabitStats(t *testing.T) {
	ctx := context.Background()
	userID := "user-stats-1"

	t.Run("Success: Computes streaks and rates for the owner", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)

		habit := &domain.Habit{
			ID:     "h1",
			UserID: userID,
			Name:   "Run",
			Log:    logDays("2024-03-13", "2024-03-14", "2024-03-15", "2024-03-01"),
		}
		habitRepo.On("GetByID", ctx, "h1").Return(habit, nil)

		stats, err := svc.GetHabitStats(ctx, userID, "h1", refNow)

		require.NoError(t, err)
		assert.Equal(t, "Run", stats.HabitName)
		assert.Equal(t, 3, stats.CurrentStreak)
		assert.Equal(t, 3, stats.LongestStreak)
		assert.Equal(t, 13, stats.CompletionRate)
		assert.Equal(t, domain.FrequencyDaily, stats.Target.Type)
		habitRepo.AssertExpectations(t)
	})

	t.Run("Fail: Other user's habit is not found", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)

		habitRepo.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1", UserID: "someone-else"}, nil)

		_, err := svc.GetHabitStats(ctx, userID, "h1", refNow)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestStatsService_GetOverview(t *testing.T) {
	ctx := context.Background()
	userID := "user-stats-1"

	t.Run("Success: Skips archived habits and builds a 30 day heatmap", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)

		habits := []*domain.Habit{
			{ID: "h1", UserID: userID, Name: "Run", Log: logDays("2024-03-15", "2024-03-14")},
			{ID: "h2", UserID: userID, Name: "Read", Log: logDays("2024-03-15")},
			{ID: "h3", UserID: userID, Name: "Old", Archived: true, Log: logDays("2024-03-15")},
		}
		habitRepo.On("ListByUserID", ctx, userID).Return(habits, nil)

		overview, err := svc.GetOverview(ctx, userID, refNow)

		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", overview.Date)
		assert.Equal(t, 2, overview.ActiveHabits)
		require.Len(t, overview.Habits, 2)
		require.Len(t, overview.Heatmap, services.OverviewHeatmapDays)
		assert.Equal(t, "2024-02-15", overview.Heatmap[0].Date)

		last := overview.Heatmap[len(overview.Heatmap)-1]
		assert.Equal(t, domain.HeatmapCell{Date: "2024-03-15", Count: 2}, last)
	})

	t.Run("Edge Case: No Habits returns zero stats", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)
		habitRepo.On("ListByUserID", ctx, userID).Return([]*domain.Habit{}, nil)

		overview, err := svc.GetOverview(ctx, userID, refNow)

		require.NoError(t, err)
		assert.Equal(t, 0, overview.ActiveHabits)
		assert.NotNil(t, overview.Habits)
	})

	t.Run("Fail: Repository error is propagated", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)
		habitRepo.On("ListByUserID", ctx, userID).Return(nil, errors.New("db error"))

		_, err := svc.GetOverview(ctx, userID, refNow)
		assert.EqualError(t, err, "db error")
	})
}

func TestStatsService_GetHeatmap(t *testing.T) {
	ctx := context.Background()

	t.Run("Fail: Range over a year is rejected before loading", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)

		from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		_, err := svc.GetHeatmap(ctx, "u", from, to)
		assert.ErrorIs(t, err, services.ErrRangeTooLarge)
		habitRepo.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
	})

	t.Run("Edge Case: Range capped at 366 days inclusive", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)
		habitRepo.On("ListByUserID", ctx, "u").Return([]*domain.Habit{}, nil)

		from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

		cells, err := svc.GetHeatmap(ctx, "u", from, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, cells, services.MaxHeatmapDays)

		_, err = svc.GetHeatmap(ctx, "u", from, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, services.ErrRangeTooLarge)
	})

	t.Run("Success: Inclusive range", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)
		habitRepo.On("ListByUserID", ctx, "u").Return([]*domain.Habit{
			{ID: "h1", UserID: "u", Log: logDays("2024-03-02")},
		}, nil)

		cells, err := svc.GetHeatmap(ctx, "u",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Equal(t, []domain.HeatmapCell{
			{Date: "2024-03-01", Count: 0},
			{Date: "2024-03-02", Count: 1},
			{Date: "2024-03-03", Count: 0},
		}, cells)
	})
}

func TestStatsService_InsightsAndReview(t *testing.T) {
	ctx := context.Background()
	userID := "user-stats-1"

	t.Run("GetInsights returns an empty list for no habits", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)
		habitRepo.On("ListByUserID", ctx, userID).Return([]*domain.Habit{}, nil)

		insights, err := svc.GetInsights(ctx, userID, refNow)
		require.NoError(t, err)
		assert.NotNil(t, insights)
		assert.Empty(t, insights)
	})

	t.Run("GetReviewSummary scores the previous month", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		svc := services.NewStatsService(habitRepo)

		feb := make([]string, 0, 29)
		for d := 1; d <= 29; d++ {
			feb = append(feb, time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC).Format(domain.DateLayout))
		}
		habitRepo.On("ListByUserID", ctx, userID).Return([]*domain.Habit{
			{ID: "h1", UserID: userID, Name: "Run", Log: logDays(feb...)},
		}, nil)

		summary, err := svc.GetReviewSummary(ctx, userID, refNow)
		require.NoError(t, err)
		assert.Equal(t, "2024-02", summary.Period)
		require.NotNil(t, summary.BestHabit)
		assert.Equal(t, "h1", summary.BestHabit.HabitID)
		assert.Equal(t, 100, summary.TotalCompletionRate)
		assert.Empty(t, summary.MissedTargets)
	})
}
