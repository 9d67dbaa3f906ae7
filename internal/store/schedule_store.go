// Package store owns durable storage and retrieval of doctor schedules and
// their time slots.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clinic-booking-server/internal/apperr"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/timeband"
	"clinic-booking-server/internal/utils"
)

// ScheduleStore performs schedule CRUD and slot state transitions on gorm.
type ScheduleStore struct {
	DB *gorm.DB
}

// NewScheduleStore creates a new ScheduleStore.
func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{DB: db}
}

// WithTx returns a store bound to an existing transaction.
func (s *ScheduleStore) WithTx(tx *gorm.DB) *ScheduleStore {
	return &ScheduleStore{DB: tx}
}

// validateLabels checks that every slot label is a well-formed HH:mm value and
// that no label repeats within the set.
func validateLabels(labels []string) error {
	if len(labels) == 0 {
		return apperr.Validation("timeSlots", "at least one slot is required")
	}
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if _, err := timeband.ParseClock(label); err != nil {
			return apperr.Validation("timeSlots", err.Error())
		}
		if seen[label] {
			return apperr.Validation("timeSlots", "duplicate slot "+label)
		}
		seen[label] = true
	}
	return nil
}

// CreateSchedule creates a Schedule for (doctorID, date) with one free slot
// per label. Creating a second schedule for the same doctor and date fails.
func (s *ScheduleStore) CreateSchedule(ctx context.Context, doctorID string, date time.Time, labels []string) (*models.Schedule, error) {
	if err := validateLabels(labels); err != nil {
		return nil, err
	}
	date = utils.DateOnly(date)

	var schedule models.Schedule
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Schedule
		err := tx.Where("doctor_id = ? AND date = ?", doctorID, date).First(&existing).Error
		if err == nil {
			return apperr.Conflictf("schedule already exists for doctor %s on %s", doctorID, utils.FormatDate(date))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		schedule = models.Schedule{DoctorID: doctorID, Date: date}
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}
		for _, label := range labels {
			slot := models.TimeSlot{ScheduleID: schedule.ID, Timeline: label}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
			schedule.TimeSlots = append(schedule.TimeSlots, slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetSchedule fetches one doctor's schedule for one date, slots in clock order.
func (s *ScheduleStore) GetSchedule(ctx context.Context, doctorID string, date time.Time) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.DB.WithContext(ctx).
		Preload("TimeSlots", slotOrder).
		Where("doctor_id = ? AND date = ?", doctorID, utils.DateOnly(date)).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("no schedule for doctor %s on %s", doctorID, utils.FormatDate(date))
		}
		return nil, err
	}
	return &schedule, nil
}

// GetScheduleByID fetches a schedule by its identifier.
func (s *ScheduleStore) GetScheduleByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.DB.WithContext(ctx).
		Preload("TimeSlots", slotOrder).
		First(&schedule, "id = ?", scheduleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("schedule %s", scheduleID)
		}
		return nil, err
	}
	return &schedule, nil
}

// GetSchedulesInRange returns the doctor's schedules whose date falls in the
// closed [start, end] range, ordered by date ascending. Days without a
// schedule produce no entry.
func (s *ScheduleStore) GetSchedulesInRange(ctx context.Context, doctorID string, start, end time.Time) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := s.DB.WithContext(ctx).
		Preload("TimeSlots", slotOrder).
		Where("doctor_id = ? AND date >= ? AND date <= ?", doctorID, utils.DateOnly(start), utils.DateOnly(end)).
		Order("date asc").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// UpdateSchedule replaces a schedule's doctor, date and slot set. Slots whose
// label carries over keep their row (and booked state); labels not carried
// over are removed, but removing a booked slot is refused so booking state can
// never be silently orphaned.
func (s *ScheduleStore) UpdateSchedule(ctx context.Context, scheduleID, doctorID string, date time.Time, labels []string) (*models.Schedule, error) {
	if err := validateLabels(labels); err != nil {
		return nil, err
	}
	date = utils.DateOnly(date)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.Preload("TimeSlots").First(&schedule, "id = ?", scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("schedule %s", scheduleID)
			}
			return err
		}

		// Moving onto a (doctor, date) already owned by another schedule is
		// the same duplicate as on create.
		var other models.Schedule
		err := tx.Where("doctor_id = ? AND date = ? AND id <> ?", doctorID, date, scheduleID).First(&other).Error
		if err == nil {
			return apperr.Conflictf("schedule already exists for doctor %s on %s", doctorID, utils.FormatDate(date))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		wanted := make(map[string]bool, len(labels))
		for _, label := range labels {
			wanted[label] = true
		}
		existing := make(map[string]bool, len(schedule.TimeSlots))
		for _, slot := range schedule.TimeSlots {
			existing[slot.Timeline] = true
			if wanted[slot.Timeline] {
				continue
			}
			if slot.IsBooked {
				return apperr.Conflictf("slot %s is booked and cannot be removed", slot.Timeline)
			}
			if err := tx.Delete(&models.TimeSlot{}, "id = ?", slot.ID).Error; err != nil {
				return err
			}
		}
		for _, label := range labels {
			if existing[label] {
				continue
			}
			if err := tx.Create(&models.TimeSlot{ScheduleID: schedule.ID, Timeline: label}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Schedule{}).Where("id = ?", scheduleID).
			Updates(map[string]interface{}{"doctor_id": doctorID, "date": date}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetScheduleByID(ctx, scheduleID)
}

// SetSlotBooked flips one slot's booked flag with a single conditional update,
// so two concurrent bookings of the same slot cannot both succeed. Booking an
// already-booked slot fails; freeing an already-free slot is a no-op success.
// The affected slot row is returned.
func (s *ScheduleStore) SetSlotBooked(ctx context.Context, doctorID string, date time.Time, timeline string, booked bool) (*models.TimeSlot, error) {
	schedule, err := s.GetSchedule(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	res := s.DB.WithContext(ctx).Model(&models.TimeSlot{}).
		Where("schedule_id = ? AND timeline = ? AND is_booked = ?", schedule.ID, timeline, !booked).
		Update("is_booked", booked)
	if res.Error != nil {
		return nil, res.Error
	}

	var slot models.TimeSlot
	if err := s.DB.WithContext(ctx).Where("schedule_id = ? AND timeline = ?", schedule.ID, timeline).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("slot %s on %s", timeline, utils.FormatDate(date))
		}
		return nil, err
	}

	if res.RowsAffected == 0 && booked {
		return nil, apperr.Conflictf("slot %s on %s is already booked", timeline, utils.FormatDate(date))
	}
	return &slot, nil
}

// SetSlotBookedByID is SetSlotBooked addressed by the slot's stable identifier.
func (s *ScheduleStore) SetSlotBookedByID(ctx context.Context, slotID string, booked bool) error {
	res := s.DB.WithContext(ctx).Model(&models.TimeSlot{}).
		Where("id = ? AND is_booked = ?", slotID, !booked).
		Update("is_booked", booked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var slot models.TimeSlot
	if err := s.DB.WithContext(ctx).First(&slot, "id = ?", slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("slot %s", slotID)
		}
		return err
	}
	if booked {
		return apperr.Conflictf("slot %s is already booked", slot.Timeline)
	}
	return nil // already free, idempotent
}

// DeleteSchedule removes a schedule and its slots. While any slot is booked
// the delete is refused unless force is set, in which case the matching
// active appointments are cancelled first.
func (s *ScheduleStore) DeleteSchedule(ctx context.Context, scheduleID string, force bool) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.Preload("TimeSlots").First(&schedule, "id = ?", scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("schedule %s", scheduleID)
			}
			return err
		}

		booked := 0
		for _, slot := range schedule.TimeSlots {
			if slot.IsBooked {
				booked++
			}
		}
		if booked > 0 {
			if !force {
				return apperr.Conflictf("schedule %s has %d booked slot(s)", scheduleID, booked)
			}
			err := tx.Model(&models.Appointment{}).
				Where("schedule_id = ? AND status = ?", scheduleID, models.StatusBooked).
				Update("status", models.StatusCancelled).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.TimeSlot{}, "schedule_id = ?", scheduleID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Schedule{}, "id = ?", scheduleID).Error
	})
}

func slotOrder(db *gorm.DB) *gorm.DB {
	return db.Order("timeline asc")
}
