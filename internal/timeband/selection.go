package timeband

import (
	"time"

	"clinic-booking-server/internal/apperr"
	"clinic-booking-server/internal/models"
)

// Selection tracks an in-progress date/band/slot pick. Changing the governing
// date invalidates any previously chosen band and slot, since the new date's
// schedule is unrelated to the old one.
type Selection struct {
	date time.Time
	band *Band
	slot *models.TimeSlot
}

// NewSelection creates a Selection anchored to the given date.
func NewSelection(date time.Time) *Selection {
	return &Selection{date: dateOnly(date)}
}

// Date returns the currently governing date.
func (s *Selection) Date() time.Time {
	return s.date
}

// SetDate moves the selection to a new date. Picking a different day resets
// the band and slot; re-setting the same day keeps them.
func (s *Selection) SetDate(date time.Time) {
	d := dateOnly(date)
	if !d.Equal(s.date) {
		s.Reset()
	}
	s.date = d
}

// SetBand narrows the selection to one display band and drops any slot pick
// that falls outside it.
func (s *Selection) SetBand(band Band) {
	s.band = &band
	if s.slot != nil {
		if minute, err := ParseClock(s.slot.Timeline); err != nil || !band.Contains(minute) {
			s.slot = nil
		}
	}
}

// Select picks a slot. A slot already marked booked cannot be selected.
func (s *Selection) Select(slot models.TimeSlot) error {
	if !IsSelectable(slot) {
		return apperr.ErrSlotUnavailable
	}
	s.slot = &slot
	return nil
}

// Reset clears the in-progress band and slot picks.
func (s *Selection) Reset() {
	s.band = nil
	s.slot = nil
}

// Band returns the chosen band, if any.
func (s *Selection) Band() (Band, bool) {
	if s.band == nil {
		return Band{}, false
	}
	return *s.band, true
}

// Slot returns the chosen slot, if any.
func (s *Selection) Slot() (models.TimeSlot, bool) {
	if s.slot == nil {
		return models.TimeSlot{}, false
	}
	return *s.slot, true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
