package domain

import "errors"

var (
	ErrAIProviderNotFound = errors.New("ai insight provider not configured")
	ErrAIUnavailable      = errors.New("ai insight provider unavailable")
)

const (
	InsightWarning = "warning"
	InsightSuccess = "success"
	InsightNeutral = "neutral"
	InsightTip     = "tip"
)

type Insight struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	HabitID     string `json:"habit_id,omitempty"`
	Score       int    `json:"score"`
}

func IsValidInsightType(t string) bool {
	switch t {
	case InsightWarning, InsightSuccess, InsightNeutral, InsightTip:
		return true
	}
	return false
}
