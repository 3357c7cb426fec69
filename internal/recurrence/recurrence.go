// Package recurrence computes the next occurrence of a repeating reminder.
package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Pattern is how often a recurring reminder repeats.
type Pattern string

const (
	Daily   Pattern = "daily"
	Weekly  Pattern = "weekly"
	Monthly Pattern = "monthly"
	Yearly  Pattern = "yearly"
)

// Valid reports whether p is one of the recognized patterns.
func (p Pattern) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Parse normalizes s and returns the matching pattern.
func Parse(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown recurring pattern %q (expected daily, weekly, monthly or yearly)", s)
	}
	return p, nil
}

// Next returns the occurrence following current.
//
// Months and years are added with time.AddDate, so days that do not exist in
// the target month roll over into the next one: Jan 31 + monthly is Mar 2 in
// a leap year, not Feb 29. An unknown pattern returns current unchanged.
func Next(current time.Time, p Pattern) time.Time {
	switch p {
	case Daily:
		return current.AddDate(0, 0, 1)
	case Weekly:
		return current.AddDate(0, 0, 7)
	case Monthly:
		return current.AddDate(0, 1, 0)
	case Yearly:
		return current.AddDate(1, 0, 0)
	default:
		return current
	}
}
