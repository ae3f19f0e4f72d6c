package services

import "time"

// Clock returns the current moment. Services never read the system clock directly
// so day boundaries can be pinned in tests.
type Clock func() time.Time

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}
