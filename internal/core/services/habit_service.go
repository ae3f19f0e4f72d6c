package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/analytics"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// StreakScheduler receives habit IDs whose streak snapshot must be recomputed.
type StreakScheduler interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo    domain.HabitRepository
	streaks StreakScheduler
	now     Clock
}

func NewHabitService(repo domain.HabitRepository, streaks StreakScheduler, clock Clock) *HabitService {
	if clock == nil {
		clock = SystemClock(time.UTC)
	}
	return &HabitService{
		repo:    repo,
		streaks: streaks,
		now:     clock,
	}
}

type CreateHabitInput struct {
	ID        string
	UserID    string
	Name      string
	Category  string
	Color     string
	Icon      string
	Frequency domain.Frequency
}

type UpdateHabitInput struct {
	ID        string
	UserID    string
	Name      *string
	Category  *string
	Color     *string
	Icon      *string
	Frequency *domain.Frequency
	SortOrder *int
	Version   int
}

type ToggleLogInput struct {
	HabitID string
	UserID  string
	Date    time.Time
}

func mergeString(newVal *string, oldVal string) string {
	if newVal == nil {
		return oldVal
	}
	return *newVal
}

// Create persists a new habit. A client-generated ID that already exists for the
// same user returns the stored habit, so offline clients can retry safely.
func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if input.ID != "" {
		existing, err := s.repo.GetByID(ctx, input.ID)
		if err == nil {
			if existing.UserID != input.UserID {
				return nil, domain.ErrHabitConflict
			}
			return existing, nil
		}
		if !errors.Is(err, domain.ErrHabitNotFound) {
			return nil, err
		}
	}

	habit, err := domain.NewHabit(input.UserID, input.Name, input.Category, input.Color, input.Icon, input.Frequency)
	if err != nil {
		return nil, err
	}
	if input.ID != "" {
		habit.ID = input.ID
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	s.refreshStreaks(habit)
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Archived && !includeArchived {
			continue
		}
		s.refreshStreaks(h)
		list = append(list, h)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SortOrder < list[j].SortOrder
	})
	return list, nil
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	changes, err := s.repo.GetChanges(ctx, userID, lastSync)
	if err != nil {
		return nil, err
	}
	for _, h := range changes {
		s.refreshStreaks(h)
	}
	return changes, nil
}

// refreshStreaks recomputes the snapshot at read time; the worker only rewrites
// it when the log changes.
func (s *HabitService) refreshStreaks(h *domain.Habit) {
	h.CurrentStreak = analytics.CurrentStreak(h, s.now())
	h.LongestStreak = analytics.LongestStreak(h)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	freq := habit.Frequency
	if input.Frequency != nil {
		if input.Frequency.Type != "" {
			freq.Type = input.Frequency.Type
		}
		if input.Frequency.Goal != 0 {
			freq.Goal = input.Frequency.Goal
		}
	}

	err = habit.Update(
		mergeString(input.Name, habit.Name),
		mergeString(input.Category, habit.Category),
		mergeString(input.Color, habit.Color),
		mergeString(input.Icon, habit.Icon),
		freq,
	)
	if err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		if err := habit.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// ToggleLog flips the completion of one calendar day and reports the new state.
func (s *HabitService) ToggleLog(ctx context.Context, input ToggleLogInput) (bool, error) {
	habit, err := s.GetByID(ctx, input.HabitID, input.UserID)
	if err != nil {
		return false, err
	}

	if domain.Day(input.Date).After(domain.Day(s.now())) {
		return false, domain.ErrFutureDate
	}

	completed, err := habit.ToggleLog(input.Date)
	if err != nil {
		return false, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return false, err
	}

	if s.streaks != nil {
		s.streaks.Enqueue(habit.ID)
	}

	return completed, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	if s.streaks != nil {
		s.streaks.Enqueue(habit.ID)
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
