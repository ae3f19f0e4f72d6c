package analytics

import (
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// BuildAISummaryPayload condenses the active habits into the payload sent to remote insight providers.
func BuildAISummaryPayload(habits []*domain.Habit, now time.Time) []domain.AIHabitSummary {
	today := domain.Day(now)
	from := today.AddDate(0, 0, -(DefaultWindowDays - 1))

	payload := make([]domain.AIHabitSummary, 0, len(habits))
	for _, h := range activeHabits(habits) {
		payload = append(payload, domain.AIHabitSummary{
			Name:             h.Name,
			Category:         h.Category,
			Frequency:        h.Frequency,
			TotalCompletions: len(h.Log),
			Last30Days:       countLogged(h.Log, from, today),
			LongestStreak:    LongestStreak(h),
		})
	}
	return payload
}
