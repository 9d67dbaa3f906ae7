// Package booking enforces booking preconditions and performs the
// slot-plus-appointment transition atomically from the caller's point of view.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"clinic-booking-server/internal/apperr"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/store"
	"clinic-booking-server/internal/utils"
)

// MinReasonsLen is the minimum length of the free-text visit reason.
const MinReasonsLen = 10

// Actor identifies the verified caller of a booking operation. It is built
// from the JWT claims by the handler layer; the core never trusts
// client-supplied role flags.
type Actor struct {
	UserID string
	Role   models.Role
}

// Service orchestrates booking, cancellation and post-visit verification.
type Service struct {
	db    *gorm.DB
	store *store.ScheduleStore
}

// NewService creates a booking Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, store: store.NewScheduleStore(db)}
}

// Store exposes the schedule store the service operates on.
func (s *Service) Store() *store.ScheduleStore {
	return s.store
}

// Request carries a confirmed doctor/date/slot pick plus the patient's
// survey answers.
type Request struct {
	DoctorID     string
	Date         time.Time
	Timeline     string
	Payment      string
	NewPatient   *bool
	ContactPhone string
	Address      string
	Reasons      string
}

func (r *Request) validate() error {
	if r.NewPatient == nil {
		return apperr.Validation("newPatients", "new-vs-returning patient flag is required")
	}
	if strings.TrimSpace(r.ContactPhone) == "" {
		return apperr.Validation("zaloPhone", "contact phone is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		return apperr.Validation("address", "detailed address is required")
	}
	if len(strings.TrimSpace(r.Reasons)) < MinReasonsLen {
		return apperr.Validation("reasons", fmt.Sprintf("visit reason must be at least %d characters", MinReasonsLen))
	}
	return nil
}

// Book validates every precondition and, in one transaction, marks the slot
// booked and creates the Appointment. The slot's free state is re-checked at
// commit time by a conditional update, so of two racing bookings exactly one
// succeeds and the other gets ErrSlotUnavailable.
func (s *Service) Book(ctx context.Context, actor Actor, req Request) (*models.Appointment, error) {
	if actor.Role != models.RoleUser {
		return nil, fmt.Errorf("%w: only patients can book appointments", apperr.ErrUnauthorized)
	}

	var patient models.User
	if err := s.db.WithContext(ctx).First(&patient, "id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", apperr.ErrUnauthorized)
		}
		return nil, err
	}
	if !patient.HasCompleteProfile() {
		return nil, fmt.Errorf("%w: phone number and date of birth are required before booking", apperr.ErrIncompleteProfile)
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	var doctor models.User
	err := s.db.WithContext(ctx).Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("doctor %s", req.DoctorID)
		}
		return nil, err
	}

	date := utils.DateOnly(req.Date)
	var appointment models.Appointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.store.WithTx(tx).SetSlotBooked(ctx, req.DoctorID, date, req.Timeline, true)
		if err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				return fmt.Errorf("%w: %s on %s", apperr.ErrSlotUnavailable, req.Timeline, utils.FormatDate(date))
			}
			return err
		}

		appointment = models.Appointment{
			PatientID:     patient.ID,
			DoctorID:      req.DoctorID,
			ScheduleID:    slot.ScheduleID,
			SlotID:        slot.ID,
			VisitDate:     date,
			Timeline:      slot.Timeline,
			PaymentMethod: req.Payment,
			NewPatient:    *req.NewPatient,
			ContactPhone:  strings.TrimSpace(req.ContactPhone),
			Address:       strings.TrimSpace(req.Address),
			Reasons:       strings.TrimSpace(req.Reasons),
			Status:        models.StatusBooked,
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Cancel reverts a booking: the slot becomes free again and the appointment
// leaves the active list. Cancellation is refused once a visit has been
// verified or finished. Cancelled appointments remain as audit rows but are
// not found by a second cancel.
func (s *Service) Cancel(ctx context.Context, actor Actor, appointmentID string) error {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("appointment %s", appointmentID)
		}
		return err
	}
	if appointment.Status == models.StatusCancelled {
		return apperr.NotFoundf("appointment %s", appointmentID)
	}

	if actor.Role != models.RoleAdmin && actor.UserID != appointment.PatientID {
		return fmt.Errorf("%w: appointment belongs to another patient", apperr.ErrUnauthorized)
	}
	if appointment.IsVerified || appointment.Status == models.StatusFinished {
		return apperr.ErrAlreadyFinished
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.WithTx(tx).SetSlotBookedByID(ctx, appointment.SlotID, false); err != nil {
			return err
		}
		return tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
			Update("status", models.StatusCancelled).Error
	})
}

// Verify records the doctor's post-visit outcome as a HistoryRecord and marks
// the appointment verified. Slot booking state is not touched.
func (s *Service) Verify(ctx context.Context, actor Actor, appointmentID, doctorComment string, healthStatus models.HealthStatus, prescriptionImage string) (*models.HistoryRecord, error) {
	if actor.Role != models.RoleDoctor {
		return nil, fmt.Errorf("%w: only doctors can verify appointments", apperr.ErrUnauthorized)
	}
	if strings.TrimSpace(doctorComment) == "" {
		return nil, apperr.Validation("doctorComment", "doctor comment is required")
	}
	switch healthStatus {
	case models.HealthBad, models.HealthNormal, models.HealthGood:
	default:
		return nil, apperr.Validation("healthStatus", "must be one of bad, normal, good")
	}
	if strings.TrimSpace(prescriptionImage) == "" {
		return nil, apperr.Validation("prescriptionImage", "prescription image is required")
	}

	var appointment models.Appointment
	if err := s.db.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("appointment %s", appointmentID)
		}
		return nil, err
	}
	// A cancelled appointment no longer exists as far as verification goes.
	if appointment.Status == models.StatusCancelled {
		return nil, apperr.NotFoundf("appointment %s", appointmentID)
	}
	if appointment.IsVerified {
		return nil, apperr.Conflictf("appointment %s is already verified", appointmentID)
	}

	record := models.HistoryRecord{
		AppointmentID:     appointment.ID,
		DoctorID:          actor.UserID,
		DoctorComment:     strings.TrimSpace(doctorComment),
		HealthStatus:      healthStatus,
		PrescriptionImage: prescriptionImage,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
			Updates(map[string]interface{}{
				"is_verified": true,
				"status":      models.StatusFinished,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForActor returns the active (non-cancelled) appointments visible to the
// caller: their own for patients, their patients' for doctors, all for admins.
func (s *Service) ListForActor(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	query := s.db.WithContext(ctx).
		Where("status <> ?", models.StatusCancelled).
		Order("visit_date asc, timeline asc")

	switch actor.Role {
	case models.RoleUser:
		query = query.Where("patient_id = ?", actor.UserID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", actor.UserID)
	case models.RoleAdmin:
		// no extra filter
	default:
		return nil, fmt.Errorf("%w: role %s cannot list appointments", apperr.ErrUnauthorized, actor.Role)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}
