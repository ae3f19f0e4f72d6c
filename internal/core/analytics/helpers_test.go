package analytics_test

import (
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// 2024-03-15 is a Friday.
var refToday = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refToday.AddDate(0, 0, -n)
}

func logOf(dates ...time.Time) domain.CompletionLog {
	log := make(domain.CompletionLog)
	for _, d := range dates {
		log[domain.DateKey(d)] = true
	}
	return log
}

func habitLoggedDaysAgo(id string, offsets ...int) *domain.Habit {
	dates := make([]time.Time, 0, len(offsets))
	for _, o := range offsets {
		dates = append(dates, daysAgo(o))
	}
	return &domain.Habit{
		ID:        id,
		Name:      "Habit " + id,
		Category:  domain.DefaultCategory,
		Frequency: domain.Frequency{Type: domain.FrequencyDaily, Goal: 1},
		Log:       logOf(dates...),
		CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func habitLoggedWhere(id string, keep func(offset int, d time.Time) bool) *domain.Habit {
	var offsets []int
	for i := 0; i < 28; i++ {
		if keep(i, daysAgo(i)) {
			offsets = append(offsets, i)
		}
	}
	return habitLoggedDaysAgo(id, offsets...)
}
