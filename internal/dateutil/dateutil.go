// Package dateutil handles the ISO calendar dates (YYYY-MM-DD, no time or
// zone component) that key all challenge progress.
package dateutil

import (
	"fmt"
	"time"
)

// Layout is the calendar date format used everywhere in the system.
const Layout = "2006-01-02"

// Today returns the local calendar date.
func Today() string {
	return Format(time.Now())
}

// Format renders t as a calendar date in t's location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse parses a calendar date string.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// IsValid reports whether s is a well-formed calendar date.
func IsValid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// AddDays returns the calendar date n days after date. n may be negative.
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}
