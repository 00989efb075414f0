package util

import (
	"time"
)

// QuotaWindow is the rolling period after which daily usage counters are
// treated as reset.
const QuotaWindow = 24 * time.Hour

// WindowElapsed reports whether a full rolling window has passed since last.
// A nil last means no window was ever started, which counts as elapsed.
func WindowElapsed(last *time.Time, now time.Time, window time.Duration) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= window
}

// TimeUntilReset returns how long until the rolling window expires. Zero if it
// already has.
func TimeUntilReset(last *time.Time, now time.Time, window time.Duration) time.Duration {
	if WindowElapsed(last, now, window) {
		return 0
	}
	return last.Add(window).Sub(now)
}

// StartOfDay strips the time-of-day, keeping the location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first instant of t's calendar month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// IsSameDay compares two instants at calendar-day precision.
func IsSameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b.In(a.Location())))
}

// IsYesterday reports whether a falls on the calendar day immediately before b.
func IsYesterday(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b.In(a.Location())).AddDate(0, 0, -1))
}
