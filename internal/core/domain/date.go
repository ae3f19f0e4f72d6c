package domain

import (
	"errors"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	PeriodLayout = "2006-01"
)

var (
	ErrInvalidDate   = errors.New("invalid date (must be YYYY-MM-DD)")
	ErrInvalidPeriod = errors.New("invalid period (must be YYYY-MM)")
	ErrFutureDate    = errors.New("cannot log a completion in the future")
)

// Day returns midnight UTC of the calendar day t falls on in its own location.
// All day arithmetic happens on these values so DST never shifts a key.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return Day(t).Format(DateLayout)
}

func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func PeriodKey(t time.Time) string {
	return Day(t).Format(PeriodLayout)
}

func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return time.Time{}, ErrInvalidPeriod
	}
	return t, nil
}

func StartOfWeek(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func DaysInMonth(t time.Time) int {
	return StartOfMonth(t).AddDate(0, 1, -1).Day()
}

// DaysBetween counts whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
