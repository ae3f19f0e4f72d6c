package domain

import "context"

// AIHabitSummary is the per-habit payload sent to remote insight providers.
type AIHabitSummary struct {
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Frequency        Frequency `json:"frequency"`
	TotalCompletions int       `json:"total_completions"`
	Last30Days       int       `json:"last_30_days"`
	LongestStreak    int       `json:"longest_streak"`
}

type InsightProvider interface {
	// Name returns the registry key of the provider (e.g. "openai").
	Name() string

	// GenerateInsights sends the habit summary to the vendor and returns insight-shaped records.
	// HabitID holds the habit name the vendor referred to; the caller resolves it.
	// Timeouts and retries are the caller's concern.
	GenerateInsights(ctx context.Context, summary []AIHabitSummary) ([]Insight, error)
}
