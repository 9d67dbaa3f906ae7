package models

import (
	"time"
)

// Schedule represents one doctor's bookable slot set for a single calendar date.
// At most one Schedule exists per (doctor, date) pair, enforced by a composite
// unique index.
type Schedule struct {
	BaseModel
	DoctorID string    `gorm:"size:36;index;uniqueIndex:idx_doctor_date" json:"doctorId"`
	Date     time.Time `gorm:"type:date;uniqueIndex:idx_doctor_date" json:"date"`

	// Relations
	TimeSlots []TimeSlot `gorm:"foreignKey:ScheduleID" json:"timeSlots"`
	Doctor    User       `gorm:"foreignKey:DoctorID" json:"-"`
}

// TimeSlot represents a single bookable time-of-day unit within a Schedule.
// The row ID is the slot's identity; Timeline is the "HH:mm" display label.
// Timeline values are unique within one Schedule.
type TimeSlot struct {
	BaseModel
	ScheduleID string `gorm:"size:36;index;uniqueIndex:idx_schedule_timeline" json:"scheduleId"`
	Timeline   string `gorm:"size:5;uniqueIndex:idx_schedule_timeline" json:"timeline"`
	IsBooked   bool   `gorm:"default:false" json:"isBooked"`
}
