package analytics

import (
	"math"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const (
	DefaultWindowDays = 30

	dailyTargetDays     = 30
	weeklyTargetWeeks   = 8
	monthlyTargetMonths = 6
)

// CompletionRate returns the share of the last windowDays days (today included)
// that were logged, as a rounded percentage. The window is not clamped to the
// habit's creation date.
func CompletionRate(h *domain.Habit, windowDays int, now time.Time) int {
	if h == nil || windowDays <= 0 {
		return 0
	}

	today := domain.Day(now)
	from := today.AddDate(0, 0, -(windowDays - 1))
	return percent(countLogged(h.Log, from, today), windowDays)
}

// TargetAchievementRate reports how many recent periods met the frequency goal:
// 30 days for daily habits, 8 Monday-start weeks for weekly ones and 6 calendar
// months for monthly ones, each ending with the period containing now.
func TargetAchievementRate(h *domain.Habit, now time.Time) domain.TargetAchievement {
	if h == nil {
		return domain.TargetAchievement{Type: domain.FrequencyDaily, Goal: 1}
	}

	goal := h.Frequency.Goal
	if goal < 1 {
		goal = 1
	}

	today := domain.Day(now)
	success, total := 0, 0
	fType := h.Frequency.Type

	switch fType {
	case domain.FrequencyWeekly:
		current := domain.StartOfWeek(today)
		for ws := current.AddDate(0, 0, -7*(weeklyTargetWeeks-1)); !ws.After(current); ws = ws.AddDate(0, 0, 7) {
			if countLogged(h.Log, ws, ws.AddDate(0, 0, 6)) >= goal {
				success++
			}
			total++
		}
	case domain.FrequencyMonthly:
		current := domain.StartOfMonth(today)
		for ms := current.AddDate(0, -(monthlyTargetMonths - 1), 0); !ms.After(current); ms = ms.AddDate(0, 1, 0) {
			if countLogged(h.Log, ms, ms.AddDate(0, 1, -1)) >= goal {
				success++
			}
			total++
		}
	default:
		fType = domain.FrequencyDaily
		from := today.AddDate(0, 0, -(dailyTargetDays - 1))
		success = countLogged(h.Log, from, today)
		total = dailyTargetDays
	}

	return domain.TargetAchievement{
		Rate: percent(success, total),
		Type: fType,
		Goal: goal,
	}
}

func ComputeHabitStats(h *domain.Habit, now time.Time) domain.HabitStats {
	return domain.HabitStats{
		HabitID:        h.ID,
		HabitName:      h.Name,
		CurrentStreak:  CurrentStreak(h, now),
		LongestStreak:  LongestStreak(h),
		CompletionRate: CompletionRate(h, DefaultWindowDays, now),
		Target:         TargetAchievementRate(h, now),
	}
}

func percent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(d)))
}
