package rules

import (
	"time"

	"github.com/gomeet-app/backend/internal/domain/enums"
)

// Usage windows are anchored to UTC regardless of the client timezone so
// the same instant always maps to the same window key on every node.

// WindowKind is the rolling period over which a counter accumulates.
type WindowKind string

const (
	WindowDaily   WindowKind = "daily"
	WindowMonthly WindowKind = "monthly"
)

// WindowKindFor returns the window kind metering an action.
func WindowKindFor(kind enums.ActionKind) WindowKind {
	if kind == enums.ActionBoost {
		return WindowMonthly
	}
	return WindowDaily
}

// DayKey formats the UTC day bucket, e.g. "2026-08-31".
func DayKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// MonthKey formats the UTC calendar-month bucket, e.g. "2026-08".
func MonthKey(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// WindowKeyFor returns the counter key for an action at the given instant.
func WindowKeyFor(kind enums.ActionKind, now time.Time) string {
	if WindowKindFor(kind) == WindowMonthly {
		return MonthKey(now)
	}
	return DayKey(now)
}

// NextDailyReset returns the next UTC midnight after now.
func NextDailyReset(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day()+1, 0, 0, 0, 0, time.UTC)
}

// NextMonthlyReset returns the first instant of the next UTC calendar month.
func NextMonthlyReset(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// ResetAtFor returns when the current window for an action ends.
func ResetAtFor(kind enums.ActionKind, now time.Time) time.Time {
	if WindowKindFor(kind) == WindowMonthly {
		return NextMonthlyReset(now)
	}
	return NextDailyReset(now)
}
