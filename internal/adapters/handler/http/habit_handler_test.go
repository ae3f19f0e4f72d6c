package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

func TestCreateHabit(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do("POST", "/api/v1/habits", "user-1",
			`{"name": "Gym", "color": "#FF5733", "frequency": {"type": "weekly", "goal": 3}}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		habit := decode[domain.Habit](t, w)
		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, "Gym", habit.Name)
		assert.Equal(t, domain.DefaultCategory, habit.Category)
		assert.Equal(t, domain.Frequency{Type: "weekly", Goal: 3}, habit.Frequency)
		assert.Equal(t, 1, habit.Version)
	})

	t.Run("Success: client ID retried returns the stored habit", func(t *testing.T) {
		env := newTestEnv(t)
		body := `{"id": "7d9f3c2e-8a41-4b6e-9d0a-2f5c1e7b3a90", "name": "Read"}`

		first := env.do("POST", "/api/v1/habits", "user-1", body)
		second := env.do("POST", "/api/v1/habits", "user-1", body)

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.Equal(t, decode[domain.Habit](t, first).ID, decode[domain.Habit](t, second).ID)
	})

	t.Run("Fail: 401 Unauthorized (Missing User)", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do("POST", "/api/v1/habits", "", `{"name": "Gym"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	cases := []struct {
		name string
		body string
	}{
		{"empty name", `{"name": ""}`},
		{"blank name", `{"name": "   "}`},
		{"unknown frequency", `{"name": "Gym", "frequency": {"type": "hourly"}}`},
		{"negative goal", `{"name": "Gym", "frequency": {"type": "weekly", "goal": -2}}`},
		{"bad color", `{"name": "Gym", "color": "red"}`},
		{"bad id", `{"id": "not-a-uuid", "name": "Gym"}`},
		{"malformed json", `{"name": `},
	}
	for _, tc := range cases {
		t.Run("Fail: 400 "+tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do("POST", "/api/v1/habits", "user-1", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestListHabits(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "user-1", "Run")
	archived := env.seed(t, "user-1", "Old")
	env.seed(t, "user-2", "Other")

	w := env.do("POST", "/api/v1/habits/"+archived.ID+"/archive", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Excludes archived by default", func(t *testing.T) {
		w := env.do("GET", "/api/v1/habits", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[[]domain.Habit](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, "Run", list[0].Name)
	})

	t.Run("Includes archived on request", func(t *testing.T) {
		w := env.do("GET", "/api/v1/habits?include_archived=true", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]domain.Habit](t, w), 2)
	})

	t.Run("Get by id hides other users' habits", func(t *testing.T) {
		w := env.do("GET", "/api/v1/habits/"+archived.ID, "user-2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateHabit(t *testing.T) {
	t.Run("Success: 200 OK Partial Update", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		w := env.do("PUT", "/api/v1/habits/"+h.ID, "user-1", `{"name": "Run 5k", "version": 1}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[domain.Habit](t, w)
		assert.Equal(t, "Run 5k", updated.Name)
		assert.Equal(t, domain.DefaultCategory, updated.Category)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("Fail: 409 Conflict on stale version", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		require.Equal(t, http.StatusOK, env.do("PUT", "/api/v1/habits/"+h.ID, "user-1", `{"name": "A", "version": 1}`).Code)
		w := env.do("PUT", "/api/v1/habits/"+h.ID, "user-1", `{"name": "B", "version": 1}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "version conflict")
	})

	t.Run("Fail: 404 Not Found (IDOR Protection)", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "owner", "Run")

		w := env.do("PUT", "/api/v1/habits/"+h.ID, "intruder", `{"name": "Mine now"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 422 on archived habit", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")
		require.Equal(t, http.StatusOK, env.do("POST", "/api/v1/habits/"+h.ID+"/archive", "user-1", "").Code)

		w := env.do("PUT", "/api/v1/habits/"+h.ID, "user-1", `{"name": "Again"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestArchiveRestore(t *testing.T) {
	env := newTestEnv(t)
	h := env.seed(t, "user-1", "Run")

	w := env.do("POST", "/api/v1/habits/"+h.ID+"/archive", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.Habit](t, w).Archived)

	w = env.do("POST", "/api/v1/habits/"+h.ID+"/restore", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	restored := decode[domain.Habit](t, w)
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.ArchivedAt)
}

func TestDeleteHabit(t *testing.T) {
	t.Run("Success: 204 No Content and tombstone in sync", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		w := env.do("DELETE", "/api/v1/habits/"+h.ID, "user-1", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		_, err := env.habits.GetByID(context.Background(), h.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		w = env.do("GET", "/api/v1/habits/sync", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[struct {
			Changes []domain.Habit `json:"changes"`
		}](t, w)
		require.Len(t, resp.Changes, 1)
		assert.NotNil(t, resp.Changes[0].DeletedAt)
	})

	t.Run("Fail: 404 Not Found (IDOR Protection)", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "owner", "Run")

		w := env.do("DELETE", "/api/v1/habits/"+h.ID, "intruder", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSyncHabits(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "user-1", "Run")

	t.Run("Bad timestamp", func(t *testing.T) {
		w := env.do("GET", "/api/v1/habits/sync?last_sync=yesterday", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Future timestamp yields no changes", func(t *testing.T) {
		w := env.do("GET", "/api/v1/habits/sync?last_sync=2999-01-01T00:00:00Z", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"changes":[]`)
	})
}

func TestToggleLog(t *testing.T) {
	t.Run("Toggle twice restores the log", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		w := env.do("POST", "/api/v1/habits/"+h.ID+"/log", "user-1", `{"date": "2024-03-14"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"date": "2024-03-14", "completed": true}`, w.Body.String())

		w = env.do("POST", "/api/v1/habits/"+h.ID+"/log", "user-1", `{"date": "2024-03-14"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"date": "2024-03-14", "completed": false}`, w.Body.String())

		stored, err := env.habits.GetByID(context.Background(), h.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Log)
	})

	t.Run("Defaults to today", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		w := env.do("POST", "/api/v1/habits/"+h.ID+"/log", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"date": "2024-03-15", "completed": true}`, w.Body.String())
	})

	t.Run("Fail: 422 future date", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		w := env.do("POST", "/api/v1/habits/"+h.ID+"/log", "user-1", `{"date": "2024-03-16"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Fail: 422 archived habit", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")
		require.Equal(t, http.StatusOK, env.do("POST", "/api/v1/habits/"+h.ID+"/archive", "user-1", "").Code)

		w := env.do("POST", "/api/v1/habits/"+h.ID+"/log", "user-1", `{"date": "2024-03-14"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Fail: 400 malformed date", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seed(t, "user-1", "Run")

		w := env.do("POST", "/api/v1/habits/"+h.ID+"/log", "user-1", `{"date": "14/03/2024"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 404 unknown habit", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do("POST", "/api/v1/habits/missing/log", "user-1", `{"date": "2024-03-14"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
