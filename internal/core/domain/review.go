package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrReviewNotFound     = errors.New("monthly review not found")
	ErrInvalidDecision    = errors.New("invalid review decision (must be keep, modify, or drop)")
	ErrReviewMissingHabit = errors.New("review decision requires a habit id")
)

const (
	DecisionKeep   = "keep"
	DecisionModify = "modify"
	DecisionDrop   = "drop"
)

type ReviewDecision struct {
	HabitID  string `json:"habit_id"`
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`
}

// MonthlyReview is keyed by (UserID, Period); saving the same period again overwrites it.
type MonthlyReview struct {
	UserID      string           `json:"user_id"`
	Period      string           `json:"period"`
	CompletedAt time.Time        `json:"completed_at"`
	Decisions   []ReviewDecision `json:"decisions"`
}

func NewMonthlyReview(userID, period string, decisions []ReviewDecision) (*MonthlyReview, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}
	if _, err := ParsePeriod(period); err != nil {
		return nil, err
	}

	clean := make([]ReviewDecision, 0, len(decisions))
	for _, d := range decisions {
		if strings.TrimSpace(d.HabitID) == "" {
			return nil, ErrReviewMissingHabit
		}
		decision := strings.ToLower(strings.TrimSpace(d.Decision))
		switch decision {
		case DecisionKeep, DecisionModify, DecisionDrop:
		default:
			return nil, ErrInvalidDecision
		}
		clean = append(clean, ReviewDecision{
			HabitID:  d.HabitID,
			Decision: decision,
			Notes:    strings.TrimSpace(d.Notes),
		})
	}

	return &MonthlyReview{
		UserID:      userID,
		Period:      period,
		CompletedAt: time.Now().UTC(),
		Decisions:   clean,
	}, nil
}

type HabitReviewStat struct {
	HabitID     string  `json:"habit_id"`
	Name        string  `json:"name"`
	LoggedDays  int     `json:"logged_days"`
	DaysInMonth int     `json:"days_in_month"`
	Rate        float64 `json:"rate"`
	TargetMet   bool    `json:"target_met"`
}

type ReviewSummary struct {
	Period              string            `json:"period"`
	Habits              []HabitReviewStat `json:"habits"`
	BestHabit           *HabitReviewStat  `json:"best_habit,omitempty"`
	DecliningHabits     []HabitReviewStat `json:"declining_habits"`
	MissedTargets       []HabitReviewStat `json:"missed_targets"`
	TotalCompletionRate int               `json:"total_completion_rate"`
}

type ReviewStatus struct {
	Period string `json:"period"`
	Due    bool   `json:"due"`
}
