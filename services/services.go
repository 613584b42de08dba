package services

import (
	"context"
	"time"

	"stackedwins/logger"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// DefaultReassessmentDays is how long an assessment stays current.
const DefaultReassessmentDays = 30

// startOfDay truncates t to local midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// scoped picks the request logger from ctx when present so lines carry the
// correlation id, and tags it with the component name.
func scoped(ctx context.Context, base *logger.Logger, component string) *logger.Logger {
	return logger.FromContext(ctx, base).Component(component)
}

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func orNop(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}
