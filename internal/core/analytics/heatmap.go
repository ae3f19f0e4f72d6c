package analytics

import (
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// Heatmap returns one cell per day in [from, to] with the number of active habits logged that day.
func Heatmap(habits []*domain.Habit, from, to time.Time) []domain.HeatmapCell {
	start, end := domain.Day(from), domain.Day(to)
	if start.After(end) {
		return []domain.HeatmapCell{}
	}

	active := activeHabits(habits)
	cells := make([]domain.HeatmapCell, 0, domain.DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := domain.DateKey(d)
		count := 0
		for _, h := range active {
			if h.Log.Has(key) {
				count++
			}
		}
		cells = append(cells, domain.HeatmapCell{Date: key, Count: count})
	}
	return cells
}
