package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/ai"
	adapterHTTP "github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

// refNow is a Friday.
var refNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return refNow }

type stubProvider struct {
	name     string
	insights []domain.Insight
	err      error
	calls    int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) GenerateInsights(ctx context.Context, summary []domain.AIHabitSummary) ([]domain.Insight, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.insights, nil
}

type testEnv struct {
	router  *gin.Engine
	habits  *repository.InMemoryHabitRepository
	reviews *repository.InMemoryReviewRepository
	ai      *ai.Registry
}

// newTestEnv wires every handler over in-memory stores. The X-User-ID header stands
// in for the JWT middleware.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	adapterHTTP.RegisterValidators()

	env := &testEnv{
		habits:  repository.NewInMemoryHabitRepository(),
		reviews: repository.NewInMemoryReviewRepository(),
		ai:      ai.NewRegistry(""),
	}

	habitSvc := services.NewHabitService(env.habits, nil, fixedClock)
	statsSvc := services.NewStatsService(env.habits)
	reviewSvc := services.NewReviewService(env.reviews, env.habits)
	aiSvc := services.NewAIInsightService(env.habits, env.ai, time.Second, fixedClock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	adapterHTTP.NewHabitHandler(habitSvc, fixedClock).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(statsSvc, fixedClock).RegisterRoutes(api)
	adapterHTTP.NewInsightHandler(statsSvc, aiSvc, fixedClock).RegisterRoutes(api)
	adapterHTTP.NewReviewHandler(reviewSvc, statsSvc, fixedClock).RegisterRoutes(api)

	env.router = r
	return env
}

func (e *testEnv) do(method, path, userID, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seed stores a habit with the given completion days straight into the repository.
func (e *testEnv) seed(t *testing.T, userID, name string, days ...string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, name, "", "", "", domain.Frequency{})
	require.NoError(t, err)
	h.CreatedAt = refNow.AddDate(0, -2, 0)
	for _, d := range days {
		h.Log[d] = true
	}
	require.NoError(t, e.habits.Create(context.Background(), h))
	return h
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var errProviderDown = errors.New("upstream 503")
