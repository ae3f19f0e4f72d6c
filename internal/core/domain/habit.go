package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrCategoryTooLong    = errors.New("habit category is too long (max 50 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidFrequency   = errors.New("invalid frequency type (must be daily, weekly, or monthly)")
	ErrInvalidGoal        = errors.New("frequency goal must be a positive integer")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	DefaultCategory  = "General"
	DefaultIcon      = "default_icon"
	MaxNameLen       = 100
	MaxCategoryLen   = 50
)

type Frequency struct {
	Type string `json:"type"`
	Goal int    `json:"goal"`
}

// CompletionLog maps a YYYY-MM-DD key to true. A missing key means not completed.
type CompletionLog map[string]bool

func (l CompletionLog) Has(key string) bool {
	_, ok := l[key]
	return ok
}

type Habit struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Color         string        `json:"color"`
	Icon          string        `json:"icon"`
	SortOrder     int           `json:"sort_order"`
	Frequency     Frequency     `json:"frequency"`
	Archived      bool          `json:"archived"`
	ArchivedAt    *time.Time    `json:"archived_at,omitempty"`
	Log           CompletionLog `json:"log"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
	Version       int           `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     *time.Time    `json:"deleted_at,omitempty"`
}

// NormalizeFrequency fills defaults and validates the frequency.
// An empty type becomes daily; daily always carries goal 1.
func NormalizeFrequency(f Frequency) (Frequency, error) {
	fType := strings.ToLower(strings.TrimSpace(f.Type))
	if fType == "" {
		fType = FrequencyDaily
	}

	switch fType {
	case FrequencyDaily:
		return Frequency{Type: FrequencyDaily, Goal: 1}, nil
	case FrequencyWeekly, FrequencyMonthly:
	default:
		return Frequency{}, ErrInvalidFrequency
	}

	goal := f.Goal
	if goal == 0 {
		goal = 1
	}
	if goal < 0 {
		return Frequency{}, ErrInvalidGoal
	}

	return Frequency{Type: fType, Goal: goal}, nil
}

func validateAndNormalize(name, category, color string, freq Frequency) (string, string, Frequency, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return "", "", Frequency{}, ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(cleanName) > MaxNameLen {
		return "", "", Frequency{}, ErrHabitNameTooLong
	}

	cleanCategory := strings.TrimSpace(category)
	if cleanCategory == "" {
		cleanCategory = DefaultCategory
	}
	if utf8.RuneCountInString(cleanCategory) > MaxCategoryLen {
		return "", "", Frequency{}, ErrCategoryTooLong
	}

	if color != "" && !colorRegex.MatchString(color) {
		return "", "", Frequency{}, ErrInvalidColor
	}

	normFreq, err := NormalizeFrequency(freq)
	if err != nil {
		return "", "", Frequency{}, err
	}

	return cleanName, cleanCategory, normFreq, nil
}

func NewHabit(userID, name, category, color, icon string, freq Frequency) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, cleanCategory, normFreq, err := validateAndNormalize(name, category, color, freq)
	if err != nil {
		return nil, err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      cleanName,
		Category:  cleanCategory,
		Color:     color,
		Icon:      icon,
		Frequency: normFreq,
		Log:       make(CompletionLog),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *Habit) Update(name, category, color, icon string, freq Frequency) error {
	if h.Archived {
		return ErrHabitArchived
	}

	cleanName, cleanCategory, normFreq, err := validateAndNormalize(name, category, color, freq)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	h.Name = cleanName
	h.Category = cleanCategory
	h.Color = color
	h.Icon = icon
	h.Frequency = normFreq
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// Normalize applies the defaults the analytics expect to records that did not go
// through NewHabit (imports, rows written by older clients).
func (h *Habit) Normalize() {
	if strings.TrimSpace(h.Category) == "" {
		h.Category = DefaultCategory
	}
	if freq, err := NormalizeFrequency(h.Frequency); err == nil {
		h.Frequency = freq
	} else {
		h.Frequency = Frequency{Type: FrequencyDaily, Goal: 1}
	}
	if h.Log == nil {
		h.Log = make(CompletionLog)
	}
}

// ToggleLog flips the completion state of the given day and returns the new state.
// Un-toggling deletes the key so two toggles restore the original log.
func (h *Habit) ToggleLog(date time.Time) (bool, error) {
	if h.Archived {
		return false, ErrHabitArchived
	}
	if h.Log == nil {
		h.Log = make(CompletionLog)
	}

	key := DateKey(date)
	completed := !h.Log.Has(key)
	if completed {
		h.Log[key] = true
	} else {
		delete(h.Log, key)
	}

	h.UpdatedAt = time.Now().UTC()
	return completed, nil
}

func (h *Habit) IsCompleted(date time.Time) bool {
	return h.Log.Has(DateKey(date))
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.Archived {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.Archived {
		return
	}

	now := time.Now().UTC()
	h.Archived = true
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if !h.Archived {
		return
	}
	h.Archived = false
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}
