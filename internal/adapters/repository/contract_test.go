package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

// The contract tests run unchanged against every storage backend.

func newTestHabit(t *testing.T, userID, name string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, name, "", "#FFFFFF", "dumbbell", domain.Frequency{Type: "weekly", Goal: 3})
	require.NoError(t, err)
	return h
}

func testHabitRepositoryContract(t *testing.T, repo domain.HabitRepository) {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	habit := newTestHabit(t, userID, "Integration Habit")
	habit.Log["2024-03-01"] = true
	habit.Log["2024-03-02"] = true

	t.Run("Create Habit", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, habit))
		assert.Equal(t, 1, habit.Version)
	})

	t.Run("Create duplicate ID is a conflict", func(t *testing.T) {
		dup := *habit
		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, domain.ErrHabitConflict)
	})

	t.Run("Get By ID round-trips the log", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)

		assert.Equal(t, habit.Name, fetched.Name)
		assert.Equal(t, domain.DefaultCategory, fetched.Category)
		assert.Equal(t, domain.Frequency{Type: domain.FrequencyWeekly, Goal: 3}, fetched.Frequency)
		assert.Equal(t, domain.CompletionLog{"2024-03-01": true, "2024-03-02": true}, fetched.Log)
		assert.Equal(t, 1, fetched.Version)
		assert.Nil(t, fetched.DeletedAt)
		assert.Nil(t, fetched.ArchivedAt)
	})

	t.Run("Update Habit bumps the version", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)

		_, err = fetched.ToggleLog(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		fetched.Archive()
		require.NoError(t, repo.Update(ctx, fetched))
		assert.Equal(t, 2, fetched.Version)

		updated, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.True(t, updated.Archived)
		assert.NotNil(t, updated.ArchivedAt)
		assert.True(t, updated.Log.Has("2024-03-03"))
	})

	t.Run("Optimistic Locking: Prevent Overwrite", func(t *testing.T) {
		deviceA, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		deviceB, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)

		deviceB.Name = "B wins"
		require.NoError(t, repo.Update(ctx, deviceB))

		deviceA.Name = "A loses"
		assert.ErrorIs(t, repo.Update(ctx, deviceA), domain.ErrHabitConflict)

		current, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, "B wins", current.Name)
	})

	t.Run("UpdateStreaks keeps the version", func(t *testing.T) {
		before, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStreaks(ctx, habit.ID, 2, 3))

		after, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, after.CurrentStreak)
		assert.Equal(t, 3, after.LongestStreak)
		assert.Equal(t, before.Version, after.Version)
	})

	t.Run("List By UserID", func(t *testing.T) {
		other := newTestHabit(t, userID, "Second")
		other.SortOrder = -1
		require.NoError(t, repo.Create(ctx, other))

		list, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, other.ID, list[0].ID)

		empty, err := repo.ListByUserID(ctx, "nobody-"+uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("GetChanges (Delta Sync) includes tombstones", func(t *testing.T) {
		syncUser := "sync-" + uuid.NewString()
		h1 := newTestHabit(t, syncUser, "H1")
		h2 := newTestHabit(t, syncUser, "H2")
		require.NoError(t, repo.Create(ctx, h1))
		require.NoError(t, repo.Create(ctx, h2))

		time.Sleep(20 * time.Millisecond)
		lastSync := time.Now().UTC()
		time.Sleep(20 * time.Millisecond)

		h1.Name = "H1 Changed"
		require.NoError(t, repo.Update(ctx, h1))
		require.NoError(t, repo.Delete(ctx, h2.ID))

		changes, err := repo.GetChanges(ctx, syncUser, lastSync)
		require.NoError(t, err)
		require.Len(t, changes, 2)

		byID := map[string]*domain.Habit{}
		for _, c := range changes {
			byID[c.ID] = c
		}
		assert.Equal(t, "H1 Changed", byID[h1.ID].Name)
		assert.NotNil(t, byID[h2.ID].DeletedAt)
	})

	t.Run("Delete Habit (Soft Delete Check)", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, habit.ID))

		_, err := repo.GetByID(ctx, habit.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, habit.ID), domain.ErrHabitNotFound)
	})

	t.Run("Update/Delete Non-Existent ID", func(t *testing.T) {
		ghost := newTestHabit(t, userID, "Ghost")

		assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrHabitNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, ghost.ID), domain.ErrHabitNotFound)
		assert.ErrorIs(t, repo.UpdateStreaks(ctx, ghost.ID, 1, 1), domain.ErrHabitNotFound)
	})
}

func testReviewRepositoryContract(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	first, err := domain.NewMonthlyReview(userID, "2024-01", []domain.ReviewDecision{
		{HabitID: "h1", Decision: "keep"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = repo.GetByPeriod(ctx, userID, "2023-12")
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)

	second, err := domain.NewMonthlyReview(userID, "2024-01", []domain.ReviewDecision{
		{HabitID: "h1", Decision: "drop", Notes: "boring"},
		{HabitID: "h2", Decision: "modify"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.GetByPeriod(ctx, userID, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, second.Decisions, got.Decisions)

	feb, err := domain.NewMonthlyReview(userID, "2024-02", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, feb))

	list, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-02", list[0].Period)
	assert.Equal(t, "2024-01", list[1].Period)
	assert.NotNil(t, list[0].Decisions)
}

func testUserRepositoryContract(t *testing.T, repo domain.UserRepository) {
	ctx := context.Background()

	newUser := func(email string) *domain.User {
		u, err := domain.NewUser(uuid.NewString(), email)
		require.NoError(t, err)
		u.PasswordHash = "hash"
		return u
	}

	email := fmt.Sprintf("test_%s@example.com", uuid.NewString())
	user := newUser(email)

	t.Run("Should create a user successfully", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, user))

		saved, err := repo.GetByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())
	})

	t.Run("Should fail on duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, newUser(email))
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("Should retrieve existing user by ID", func(t *testing.T) {
		found, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, email, found.Email)
	})

	t.Run("Should return ErrUserNotFound for unknown keys", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.GetByEmail(ctx, "nonexistent@ghost.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Delete removes the user", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID))

		_, err := repo.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, user.ID), domain.ErrUserNotFound)
	})
}
