package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

var (
	_ domain.HabitRepository  = (*InMemoryHabitRepository)(nil)
	_ domain.ReviewRepository = (*InMemoryReviewRepository)(nil)
	_ domain.UserRepository   = (*InMemoryUserRepository)(nil)
)

// InMemoryHabitRepository keeps habits in a map. Values are copied on the way in and
// out so callers never share state with the store.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func copyHabit(h *domain.Habit) *domain.Habit {
	c := *h
	c.Log = make(domain.CompletionLog, len(h.Log))
	for k, v := range h.Log {
		c.Log[k] = v
	}
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[habit.ID]; exists {
		return fmt.Errorf("%w: habit %s already exists", domain.ErrHabitConflict, habit.ID)
	}

	habit.Version = 1
	r.store[habit.ID] = copyHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return copyHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, copyHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	habit.CurrentStreak = stored.CurrentStreak
	habit.LongestStreak = stored.LongestStreak
	r.store[habit.ID] = copyHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	h.DeletedAt = &now
	h.UpdatedAt = now
	h.Version++
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			changes = append(changes, copyHabit(h))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})
	return changes, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	return nil
}

type InMemoryReviewRepository struct {
	store map[string]*domain.MonthlyReview

	mu sync.RWMutex
}

func NewInMemoryReviewRepository() *InMemoryReviewRepository {
	return &InMemoryReviewRepository{
		store: make(map[string]*domain.MonthlyReview),
	}
}

func reviewKey(userID, period string) string {
	return userID + "|" + period
}

func copyReview(r *domain.MonthlyReview) *domain.MonthlyReview {
	c := *r
	c.Decisions = append([]domain.ReviewDecision{}, r.Decisions...)
	return &c
}

func (r *InMemoryReviewRepository) Save(ctx context.Context, review *domain.MonthlyReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[reviewKey(review.UserID, review.Period)] = copyReview(review)
	return nil
}

func (r *InMemoryReviewRepository) GetByPeriod(ctx context.Context, userID, period string) (*domain.MonthlyReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.store[reviewKey(userID, period)]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	return copyReview(review), nil
}

func (r *InMemoryReviewRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.MonthlyReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := []*domain.MonthlyReview{}
	for _, review := range r.store {
		if review.UserID == userID {
			reviews = append(reviews, copyReview(review))
		}
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].Period > reviews[j].Period
	})
	return reviews, nil
}

type InMemoryUserRepository struct {
	byID map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	c := *user
	r.byID[user.ID] = &c
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}
