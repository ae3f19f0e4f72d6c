package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const InsightWindowDays = 28

const (
	scoreInconsistent   = 90
	scoreStruggling     = 88
	scoreWeekendDrop    = 85
	scoreMidweekPeak    = 70
	scoreWeekdayWarrior = 55
)

// weekdayProfile holds per-weekday rates, indexed like time.Weekday (0 = Sunday).
type weekdayProfile [7]float64

func (p weekdayProfile) mean(days ...time.Weekday) float64 {
	sum := 0.0
	for _, d := range days {
		sum += p[d]
	}
	return sum / float64(len(days))
}

type habitWindow struct {
	habit   *domain.Habit
	rate    float64
	longest int
}

// GenerateInsights evaluates the heuristic rules over the 28 days ending today
// for the non-archived habits. Rules are independent; the result is sorted by
// score, keeping rule order for ties. Same input, same output.
func GenerateInsights(habits []*domain.Habit, today time.Time) []domain.Insight {
	insights := []domain.Insight{}

	active := activeHabits(habits)
	if len(active) == 0 {
		return insights
	}

	end := domain.Day(today)
	start := end.AddDate(0, 0, -(InsightWindowDays - 1))
	profile := buildWeekdayProfile(active, start, end)

	weekdayRate := profile.mean(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	weekendRate := profile.mean(time.Sunday, time.Saturday)
	midweekRate := profile.mean(time.Tuesday, time.Wednesday, time.Thursday)
	edgesRate := profile.mean(time.Monday, time.Friday)

	if weekdayRate >= 0.15 && weekdayRate-weekendRate >= 0.15 {
		insights = append(insights, domain.Insight{
			ID:    "weekend-drop",
			Type:  domain.InsightWarning,
			Title: "Weekends are slipping",
			Description: fmt.Sprintf(
				"You complete %d%% of your habits on weekdays but only %d%% on weekends. A lighter weekend routine could keep the chain going.",
				pct(weekdayRate), pct(weekendRate)),
			Score: scoreWeekendDrop,
		})
	}

	if midweekRate >= 0.2 && midweekRate-edgesRate >= 0.12 {
		insights = append(insights, domain.Insight{
			ID:    "midweek-peak",
			Type:  domain.InsightNeutral,
			Title: "Midweek is your sweet spot",
			Description: fmt.Sprintf(
				"From Tuesday to Thursday you hit %d%% of your habits, against %d%% on Mondays and Fridays.",
				pct(midweekRate), pct(edgesRate)),
			Score: scoreMidweekPeak,
		})
	}

	windows := make([]habitWindow, 0, len(active))
	for _, h := range active {
		logged, longest := windowRun(h.Log, start, end)
		windows = append(windows, habitWindow{
			habit:   h,
			rate:    float64(logged) / float64(InsightWindowDays),
			longest: longest,
		})
	}

	var inconsistent *habitWindow
	for i := range windows {
		w := &windows[i]
		if w.rate < 0.35 || w.rate > 0.75 || w.longest > 2 {
			continue
		}
		if inconsistent == nil || w.rate > inconsistent.rate {
			inconsistent = w
		}
	}
	if inconsistent != nil {
		insights = append(insights, domain.Insight{
			ID:    "inconsistent-" + inconsistent.habit.ID,
			Type:  domain.InsightTip,
			Title: fmt.Sprintf("%s is on and off", inconsistent.habit.Name),
			Description: fmt.Sprintf(
				"You completed %s on %d%% of the last %d days but never more than %d in a row. Tying it to something you already do every day can make it stick.",
				inconsistent.habit.Name, pct(inconsistent.rate), InsightWindowDays, inconsistent.longest),
			HabitID: inconsistent.habit.ID,
			Score:   scoreInconsistent,
		})
	}

	for _, w := range windows {
		if w.rate <= 0 || w.rate >= 0.2 {
			continue
		}
		insights = append(insights, domain.Insight{
			ID:    "struggling-" + w.habit.ID,
			Type:  domain.InsightWarning,
			Title: fmt.Sprintf("%s needs attention", w.habit.Name),
			Description: fmt.Sprintf(
				"Only %d%% completion over the last %d days. Consider a smaller goal or a different time of day.",
				pct(w.rate), InsightWindowDays),
			HabitID: w.habit.ID,
			Score:   scoreStruggling,
		})
		break
	}

	if weekdayRate >= 0.8 {
		insights = append(insights, domain.Insight{
			ID:    "weekday-warrior",
			Type:  domain.InsightSuccess,
			Title: "Weekday warrior",
			Description: fmt.Sprintf(
				"You hit %d%% of your habits on weekdays. Keep it up!", pct(weekdayRate)),
			Score: scoreWeekdayWarrior,
		})
	}

	SortInsights(insights)
	return insights
}

// SortInsights orders insights by descending score, stable on ties.
func SortInsights(insights []domain.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Score > insights[j].Score
	})
}

func activeHabits(habits []*domain.Habit) []*domain.Habit {
	active := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h != nil && !h.Archived {
			active = append(active, h)
		}
	}
	return active
}

// buildWeekdayProfile returns, per weekday, the fraction of possible completions
// achieved in [start, end] across the given habits.
func buildWeekdayProfile(habits []*domain.Habit, start, end time.Time) weekdayProfile {
	var dayCounts, completionCounts [7]int

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dayCounts[d.Weekday()]++
	}

	before := start.AddDate(0, 0, -1)
	for _, h := range habits {
		for key := range h.Log {
			t, err := domain.ParseDateKey(key)
			if err != nil {
				continue
			}
			if t.After(before) && !t.After(end) {
				completionCounts[t.Weekday()]++
			}
		}
	}

	var profile weekdayProfile
	for d := 0; d < 7; d++ {
		possible := dayCounts[d] * len(habits)
		if possible < 1 {
			possible = 1
		}
		profile[d] = float64(completionCounts[d]) / float64(possible)
	}
	return profile
}

// windowRun returns the number of logged days in [start, end] and the longest
// consecutive run inside that range.
func windowRun(log domain.CompletionLog, start, end time.Time) (logged, longest int) {
	run := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if log.Has(domain.DateKey(d)) {
			logged++
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return logged, longest
}

func pct(rate float64) int {
	return int(math.Round(rate * 100))
}
