// Package ai holds the remote insight providers. Each one sends the habit summary
// in the same prompt and decodes the reply with the same parser, so they only
// differ in wire format.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	maxErrorBody       = 500
)

var ErrEmptyResponse = errors.New("empty response from provider")

const systemPrompt = `You are a habit coach. You receive a JSON array describing a user's habits.
Reply ONLY with a JSON array of at most 5 insights, each shaped as
{"type": "warning|success|neutral|tip", "title": string, "description": string, "habit": string, "score": integer 0-100}.
"habit" is the exact name of the habit the insight is about, or "" when it is about several.
Higher scores mean more relevant. Keep titles under 60 characters.`

// ProviderConfig is the per-vendor part of the configuration. Providers without an
// API key are not registered.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func buildUserPrompt(habits []domain.AIHabitSummary) (string, error) {
	data, err := json.Marshal(habits)
	if err != nil {
		return "", fmt.Errorf("marshal habit summary: %w", err)
	}
	return "Here are my habits:\n" + string(data), nil
}

type rawInsight struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Habit       string  `json:"habit"`
	Score       float64 `json:"score"`
}

// parseInsights extracts the JSON array from a model reply. Code fences and prose
// around the array are tolerated; unknown types become neutral, untitled entries
// are dropped and IDs are assigned as ai-1, ai-2, ... HabitID carries the habit
// name the model referred to.
func parseInsights(text string) ([]domain.Insight, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in reply: %q", truncate(text, 120))
	}

	var raw []rawInsight
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse insights: %w", err)
	}

	insights := make([]domain.Insight, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}

		t := strings.ToLower(strings.TrimSpace(r.Type))
		if !domain.IsValidInsightType(t) {
			t = domain.InsightNeutral
		}

		insights = append(insights, domain.Insight{
			ID:          fmt.Sprintf("ai-%d", len(insights)+1),
			Type:        t,
			Title:       title,
			Description: strings.TrimSpace(r.Description),
			HabitID:     strings.TrimSpace(r.Habit),
			Score:       int(math.Round(r.Score)),
		})
	}
	return insights, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
