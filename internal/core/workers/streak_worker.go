package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/analytics"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const DefaultQueueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes the stored streak snapshot of a habit after its log changes.
// The snapshot is a cache for list views; analytics always derive streaks from the log.
type StreakWorker struct {
	habitRepo HabitRepository
	now       func() time.Time
	jobs      chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, now func() time.Time) *StreakWorker {
	if now == nil {
		now = time.Now
	}
	return &StreakWorker{
		habitRepo: hRepo,
		now:       now,
		jobs:      make(chan StreakJob, DefaultQueueSize),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("[WORKER] Queue full! Dropping streak job for habit %s", habitID)
	}
}

// Process recomputes one habit in the caller's goroutine.
func (w *StreakWorker) Process(ctx context.Context, habitID string) {
	w.processJob(ctx, StreakJob{HabitID: habitID})
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	current := analytics.CurrentStreak(habit, w.now())
	longest := analytics.LongestStreak(habit)

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
		log.Printf("[WORKER] Failed to update streak for %s: %v", job.HabitID, err)
		return
	}
	log.Printf("[WORKER] Streak updated for %s: Current=%d, Longest=%d", habit.Name, current, longest)
}
