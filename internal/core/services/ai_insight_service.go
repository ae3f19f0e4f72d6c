package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/analytics"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const DefaultAITimeout = 30 * time.Second

// ProviderRegistry resolves an AI provider by name. An empty name selects the default one.
type ProviderRegistry interface {
	Lookup(name string) (domain.InsightProvider, error)
}

type AIInsightService struct {
	habitRepo domain.HabitRepository
	providers ProviderRegistry
	timeout   time.Duration
	now       Clock
}

func NewAIInsightService(habitRepo domain.HabitRepository, providers ProviderRegistry, timeout time.Duration, clock Clock) *AIInsightService {
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	if clock == nil {
		clock = SystemClock(time.UTC)
	}
	return &AIInsightService{
		habitRepo: habitRepo,
		providers: providers,
		timeout:   timeout,
		now:       clock,
	}
}

// Generate builds the habit summary payload and asks the chosen provider for insights.
// Provider failures are wrapped in ErrAIUnavailable; no local fallback is attempted.
func (s *AIInsightService) Generate(ctx context.Context, userID, providerName string) ([]domain.Insight, error) {
	provider, err := s.providers.Lookup(providerName)
	if err != nil {
		return nil, err
	}

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		h.Normalize()
	}

	payload := analytics.BuildAISummaryPayload(habits, s.now())
	if len(payload) == 0 {
		return []domain.Insight{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	insights, err := provider.GenerateInsights(ctx, payload)
	if err != nil {
		log.Printf("[AI] Provider %s failed after %v: %v", provider.Name(), time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err)
	}
	log.Printf("[AI] Provider %s returned %d insights in %v", provider.Name(), len(insights), time.Since(start))

	if insights == nil {
		insights = []domain.Insight{}
	}
	resolveHabitRefs(insights, habits)
	analytics.SortInsights(insights)
	return insights, nil
}

// resolveHabitRefs replaces the habit names a provider returns with the IDs of
// the user's active habits. Unknown or ambiguous names are cleared.
func resolveHabitRefs(insights []domain.Insight, habits []*domain.Habit) {
	ids := make(map[string]string, len(habits))
	for _, h := range habits {
		if h.Archived {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if _, dup := ids[key]; dup {
			ids[key] = ""
			continue
		}
		ids[key] = h.ID
	}

	for i := range insights {
		ref := strings.ToLower(strings.TrimSpace(insights[i].HabitID))
		insights[i].HabitID = ids[ref]
	}
}
