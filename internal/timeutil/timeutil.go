// Package timeutil provides helpers for calendar-date handling.
package timeutil

import "time"

// DateOnly is the canonical calendar-date layout used throughout the
// training log. Dates carry no time-of-day semantics.
const DateOnly = "2006-01-02"

// Today returns the current calendar date.
func Today() string {
	return time.Now().Format(DateOnly)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		0,
		t.Location(),
	)
}
