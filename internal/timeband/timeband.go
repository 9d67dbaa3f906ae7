// Package timeband derives the displayable, bookable subset of a schedule's
// slots. It is pure: no database access, no request context. Clock labels are
// compared by minute-of-day, never lexicographically, so the evening band can
// end at midnight without the "00:00" string sorting ahead of every other time.
package timeband

import (
	"fmt"
	"strconv"
	"strings"

	"clinic-booking-server/internal/models"
)

// EndOfDay is the exclusive upper bound for the last band of the day,
// one minute past 23:59.
const EndOfDay = 24 * 60

// ParseClock converts an "HH:mm" label into its minute-of-day (0..1439).
func ParseClock(label string) (int, error) {
	parts := strings.SplitN(label, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time label %q, expected HH:mm", label)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in time label %q", label)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in time label %q", label)
	}
	return h*60 + m, nil
}

// FormatClock renders a minute-of-day as an "HH:mm" label.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Band is a named half-open [Start, End) range of minutes-of-day used to
// group slots for display.
type Band struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Canonical band table. Every view uses the same boundaries.
var (
	Morning   = Band{Name: "morning", Start: 6 * 60, End: 12 * 60}
	Afternoon = Band{Name: "afternoon", Start: 12 * 60, End: 18 * 60}
	Evening   = Band{Name: "evening", Start: 18 * 60, End: EndOfDay}
)

// Bands returns the canonical bands in display order.
func Bands() []Band {
	return []Band{Morning, Afternoon, Evening}
}

// BandByName looks a band up by its canonical name.
func BandByName(name string) (Band, bool) {
	for _, b := range Bands() {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}

// Contains reports whether the minute lies inside the band's [Start, End).
func (b Band) Contains(minute int) bool {
	return minute >= b.Start && minute < b.End
}

// FilterByBand returns the subsequence of slots whose timeline falls inside
// the band, preserving the original order. Slots with an unparseable label
// are skipped rather than failing the whole view.
func FilterByBand(slots []models.TimeSlot, band Band) []models.TimeSlot {
	var filtered []models.TimeSlot
	for _, slot := range slots {
		minute, err := ParseClock(slot.Timeline)
		if err != nil {
			continue
		}
		if band.Contains(minute) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// IsSelectable reports whether a slot can still be picked by the user.
func IsSelectable(slot models.TimeSlot) bool {
	return !slot.IsBooked
}
