package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-booking-server/internal/apperr"
	"clinic-booking-server/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A single connection serializes writers, which is all sqlite supports
	// anyway; the in-memory database also lives exactly as long as it.
	sqlDB.SetMaxOpenConns(1)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const testDoctorID = "11111111-1111-1111-1111-111111111111"

func TestCreateScheduleDuplicate(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()
	date := day(2024, 3, 13)

	if _, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"08:00", "08:30"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"09:00"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate create: got %v, want ErrConflict", err)
	}

	// Same doctor, another day is fine.
	if _, err := st.CreateSchedule(ctx, testDoctorID, day(2024, 3, 14), []string{"08:00"}); err != nil {
		t.Fatalf("create on another day: %v", err)
	}
}

func TestCreateScheduleValidatesLabels(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		labels []string
	}{
		{"empty set", nil},
		{"bad label", []string{"8am"}},
		{"duplicate label", []string{"08:00", "08:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.CreateSchedule(ctx, testDoctorID, day(2024, 3, 13), tt.labels)
			ve, ok := apperr.AsValidation(err)
			if !ok {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if ve.Field != "timeSlots" {
				t.Fatalf("validation field = %q, want timeSlots", ve.Field)
			}
		})
	}
}

func TestGetSchedule(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()
	date := day(2024, 3, 13)

	if _, err := st.GetSchedule(ctx, testDoctorID, date); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing schedule: got %v, want ErrNotFound", err)
	}

	// Labels out of clock order are returned sorted.
	if _, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"13:00", "08:00", "09:30"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := st.GetSchedule(ctx, testDoctorID, date)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []string{"08:00", "09:30", "13:00"}
	if len(got.TimeSlots) != len(want) {
		t.Fatalf("slot count = %d, want %d", len(got.TimeSlots), len(want))
	}
	for i, slot := range got.TimeSlots {
		if slot.Timeline != want[i] {
			t.Errorf("slot %d = %s, want %s", i, slot.Timeline, want[i])
		}
		if slot.IsBooked {
			t.Errorf("slot %s should start free", slot.Timeline)
		}
	}
}

func TestGetSchedulesInRange(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()

	for _, d := range []time.Time{day(2024, 3, 15), day(2024, 3, 11), day(2024, 3, 13), day(2024, 3, 20)} {
		if _, err := st.CreateSchedule(ctx, testDoctorID, d, []string{"08:00"}); err != nil {
			t.Fatalf("create %v: %v", d, err)
		}
	}

	schedules, err := st.GetSchedulesInRange(ctx, testDoctorID, day(2024, 3, 11), day(2024, 3, 17))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	want := []time.Time{day(2024, 3, 11), day(2024, 3, 13), day(2024, 3, 15)}
	if len(schedules) != len(want) {
		t.Fatalf("got %d schedules, want %d", len(schedules), len(want))
	}
	for i, sched := range schedules {
		if !sched.Date.Equal(want[i]) {
			t.Errorf("schedule %d date = %v, want %v", i, sched.Date, want[i])
		}
	}
}

func TestSetSlotBooked(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()
	date := day(2024, 3, 13)

	if _, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"08:00", "08:30"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	slot, err := st.SetSlotBooked(ctx, testDoctorID, date, "08:00", true)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if !slot.IsBooked {
		t.Fatal("returned slot should be booked")
	}

	// Double booking fails.
	if _, err := st.SetSlotBooked(ctx, testDoctorID, date, "08:00", true); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("double book: got %v, want ErrConflict", err)
	}

	// Unbooking is idempotent.
	if _, err := st.SetSlotBooked(ctx, testDoctorID, date, "08:00", false); err != nil {
		t.Fatalf("unbook: %v", err)
	}
	if _, err := st.SetSlotBooked(ctx, testDoctorID, date, "08:00", false); err != nil {
		t.Fatalf("second unbook should be a no-op: %v", err)
	}

	// Unknown timeline and unknown schedule are NotFound.
	if _, err := st.SetSlotBooked(ctx, testDoctorID, date, "22:00", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown timeline: got %v, want ErrNotFound", err)
	}
	if _, err := st.SetSlotBooked(ctx, testDoctorID, day(2024, 3, 14), "08:00", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown schedule: got %v, want ErrNotFound", err)
	}
}

func TestSetSlotBookedConcurrent(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()
	date := day(2024, 3, 13)

	if _, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"08:00"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = st.SetSlotBooked(ctx, testDoctorID, date, "08:00", true)
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly one of each", successes, conflicts)
	}
}

func TestUpdateScheduleCarriesBookedStateByLabel(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()
	date := day(2024, 3, 13)

	created, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"08:00", "09:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	booked, err := st.SetSlotBooked(ctx, testDoctorID, date, "08:00", true)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// Keep 08:00, drop the free 09:00, add 10:00.
	updated, err := st.UpdateSchedule(ctx, created.ID, testDoctorID, date, []string{"08:00", "10:00"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.TimeSlots) != 2 {
		t.Fatalf("slot count = %d, want 2", len(updated.TimeSlots))
	}
	for _, slot := range updated.TimeSlots {
		switch slot.Timeline {
		case "08:00":
			if slot.ID != booked.ID {
				t.Error("carried-over slot must keep its identity")
			}
			if !slot.IsBooked {
				t.Error("carried-over slot must keep its booked state")
			}
		case "10:00":
			if slot.IsBooked {
				t.Error("new slot must start free")
			}
		default:
			t.Errorf("unexpected slot %s", slot.Timeline)
		}
	}

	// Dropping a booked slot is refused.
	if _, err := st.UpdateSchedule(ctx, created.ID, testDoctorID, date, []string{"10:00"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("dropping booked slot: got %v, want ErrConflict", err)
	}
}

func TestUpdateScheduleRejectsDuplicateTarget(t *testing.T) {
	st := NewScheduleStore(newTestDB(t))
	ctx := context.Background()

	if _, err := st.CreateSchedule(ctx, testDoctorID, day(2024, 3, 13), []string{"08:00"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := st.CreateSchedule(ctx, testDoctorID, day(2024, 3, 14), []string{"08:00"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	_, err = st.UpdateSchedule(ctx, second.ID, testDoctorID, day(2024, 3, 13), []string{"08:00"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("moving onto an occupied date: got %v, want ErrConflict", err)
	}
}

func TestDeleteSchedule(t *testing.T) {
	db := newTestDB(t)
	st := NewScheduleStore(db)
	ctx := context.Background()
	date := day(2024, 3, 13)

	created, err := st.CreateSchedule(ctx, testDoctorID, date, []string{"08:00", "09:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	slot, err := st.SetSlotBooked(ctx, testDoctorID, date, "08:00", true)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	appointment := models.Appointment{
		PatientID:  "22222222-2222-2222-2222-222222222222",
		DoctorID:   testDoctorID,
		ScheduleID: created.ID,
		SlotID:     slot.ID,
		VisitDate:  date,
		Timeline:   slot.Timeline,
		Status:     models.StatusBooked,
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	// Blocked while a slot is booked.
	if err := st.DeleteSchedule(ctx, created.ID, false); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("delete with booked slot: got %v, want ErrConflict", err)
	}

	// Force delete cancels the active appointments and removes the slots.
	if err := st.DeleteSchedule(ctx, created.ID, true); err != nil {
		t.Fatalf("force delete: %v", err)
	}
	if _, err := st.GetScheduleByID(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("schedule still present after delete: %v", err)
	}
	var count int64
	if err := db.Model(&models.TimeSlot{}).Where("schedule_id = ?", created.ID).Count(&count).Error; err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if count != 0 {
		t.Fatalf("%d slots left after delete", count)
	}
	var reloaded models.Appointment
	if err := db.First(&reloaded, "id = ?", appointment.ID).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if reloaded.Status != models.StatusCancelled {
		t.Fatalf("appointment status = %s, want cancelled", reloaded.Status)
	}

	if err := st.DeleteSchedule(ctx, created.ID, false); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
