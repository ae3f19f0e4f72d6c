package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const DefaultCacheTTL = 30 * time.Minute

// CachedHabitRepository is a cache-aside decorator: list and single-habit reads are
// served from Redis, every write drops the affected keys. Redis failures degrade to
// reading through, never to an error.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration) *CachedHabitRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func listKey(userID string) string {
	return fmt.Sprintf("habitflow:habits:user:%s", userID)
}

func habitKey(id string) string {
	return fmt.Sprintf("habitflow:habits:id:%s", id)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID, habitID string) {
	if err := r.cache.Del(ctx, listKey(userID), habitKey(habitID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

// read returns true when key held a decodable value.
func (r *CachedHabitRepository) read(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Redis read error: %v", err)
		}
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		log.Printf("[CACHE] Corrupted data at %s, cleaning up key", key)
		r.cache.Del(ctx, key)
		return false
	}
	return true
}

func (r *CachedHabitRepository) write(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := listKey(userID)

	var cached []*domain.Habit
	if r.read(ctx, key, &cached) {
		return cached, nil
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.write(ctx, key, habits)
	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	key := habitKey(id)

	var cached domain.Habit
	if r.read(ctx, key, &cached) {
		return &cached, nil
	}

	habit, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.write(ctx, key, habit)
	return habit, nil
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID, habit.ID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID, habit.ID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID, id)
	}

	return r.next.Delete(ctx, id)
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID, id)
	}

	return r.next.UpdateStreaks(ctx, id, current, longest)
}
