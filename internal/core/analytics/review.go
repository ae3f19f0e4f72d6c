package analytics

import (
	"math"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const (
	dailyTargetRate    = 0.8
	decliningRateLimit = 0.3
)

// PreviousPeriod returns the YYYY-MM key of the month before the one containing now.
func PreviousPeriod(now time.Time) string {
	return domain.PeriodKey(domain.StartOfMonth(now).AddDate(0, -1, 0))
}

// IsReviewDue reports whether the previous month is missing from the reviewed periods.
func IsReviewDue(reviewedPeriods []string, now time.Time) bool {
	prev := PreviousPeriod(now)
	for _, p := range reviewedPeriods {
		if p == prev {
			return false
		}
	}
	return true
}

// GenerateReviewSummary scores every non-archived habit created by the end of the
// month preceding now against that month.
func GenerateReviewSummary(habits []*domain.Habit, now time.Time) domain.ReviewSummary {
	monthStart := domain.StartOfMonth(now).AddDate(0, -1, 0)
	monthEnd := monthStart.AddDate(0, 1, -1)
	daysInMonth := domain.DaysInMonth(monthStart)
	weeksInMonth := int(math.Ceil(float64(daysInMonth) / 7))

	summary := domain.ReviewSummary{
		Period:          domain.PeriodKey(monthStart),
		Habits:          []domain.HabitReviewStat{},
		DecliningHabits: []domain.HabitReviewStat{},
		MissedTargets:   []domain.HabitReviewStat{},
	}

	totalRate := 0.0
	for _, h := range habits {
		if h == nil || h.Archived {
			continue
		}
		if domain.Day(h.CreatedAt).After(monthEnd) {
			continue
		}

		logged := countLogged(h.Log, monthStart, monthEnd)
		rate := float64(logged) / float64(daysInMonth)

		goal := h.Frequency.Goal
		if goal < 1 {
			goal = 1
		}

		var targetMet bool
		switch h.Frequency.Type {
		case domain.FrequencyWeekly:
			targetMet = float64(logged)/float64(weeksInMonth) >= float64(goal)
		case domain.FrequencyMonthly:
			targetMet = logged >= goal
		default:
			targetMet = rate >= dailyTargetRate
		}

		stat := domain.HabitReviewStat{
			HabitID:     h.ID,
			Name:        h.Name,
			LoggedDays:  logged,
			DaysInMonth: daysInMonth,
			Rate:        rate,
			TargetMet:   targetMet,
		}
		summary.Habits = append(summary.Habits, stat)
		totalRate += rate

		if rate < decliningRateLimit {
			summary.DecliningHabits = append(summary.DecliningHabits, stat)
		}
		if !targetMet {
			summary.MissedTargets = append(summary.MissedTargets, stat)
		}
	}

	for i := range summary.Habits {
		if summary.BestHabit == nil || summary.Habits[i].Rate > summary.BestHabit.Rate {
			best := summary.Habits[i]
			summary.BestHabit = &best
		}
	}

	if n := len(summary.Habits); n > 0 {
		summary.TotalCompletionRate = int(math.Round(100 * totalRate / float64(n)))
	}

	return summary
}
