package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used at the API boundary (dd/MM/yyyy).
const DateLayout = "02/01/2006"

// ParseDate parses a dd/MM/yyyy string into a UTC date with no time-of-day part.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/MM/yyyy: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date in the dd/MM/yyyy boundary format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly truncates a timestamp to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
