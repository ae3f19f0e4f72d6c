// Package analytics derives streaks, rates, insights and review summaries from
// date-keyed completion logs. Every function is pure: the reference moment is a
// parameter and only its calendar date is used.
package analytics

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// CurrentStreak counts the run of logged days ending today. If today is not
// logged yet the run ending yesterday still counts, since today is not over.
func CurrentStreak(h *domain.Habit, today time.Time) int {
	if h == nil || len(h.Log) == 0 {
		return 0
	}

	t := domain.Day(today)
	yesterday := t.AddDate(0, 0, -1)

	var cursor time.Time
	switch {
	case h.Log.Has(domain.DateKey(t)):
		cursor = t
	case h.Log.Has(domain.DateKey(yesterday)):
		cursor = yesterday
	default:
		return 0
	}

	streak := 0
	for h.Log.Has(domain.DateKey(cursor)) {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive logged days in the whole log.
func LongestStreak(h *domain.Habit) int {
	if h == nil {
		return 0
	}

	dates := loggedDates(h.Log)
	if len(dates) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		switch domain.DaysBetween(dates[i-1], dates[i]) {
		case 1:
			run++
		case 0:
		default:
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// loggedDates parses the log keys and returns them in ascending order.
// Malformed keys are skipped; callers are expected to validate logs upstream.
func loggedDates(log domain.CompletionLog) []time.Time {
	dates := make([]time.Time, 0, len(log))
	for key := range log {
		t, err := domain.ParseDateKey(key)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// countLogged counts logged days in [from, to], both inclusive.
func countLogged(log domain.CompletionLog, from, to time.Time) int {
	count := 0
	for d := domain.Day(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		if log.Has(domain.DateKey(d)) {
			count++
		}
	}
	return count
}
