package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusFinished  AppointmentStatus = "finished"
)

// Appointment represents a patient's confirmed booking against one specific slot.
// SlotID is the authoritative reference into the Schedule; VisitDate and Timeline
// are display copies carried for listings.
type Appointment struct {
	BaseModel
	PatientID  string    `gorm:"size:36;index" json:"patientId"`
	DoctorID   string    `gorm:"size:36;index" json:"doctorId"`
	ScheduleID string    `gorm:"size:36;index" json:"scheduleId"`
	SlotID     string    `gorm:"size:36;index" json:"slotId"`
	VisitDate  time.Time `gorm:"type:date" json:"visitDate"`
	Timeline   string    `gorm:"size:5" json:"timeline"`

	PaymentMethod string            `gorm:"size:50" json:"payment"`
	NewPatient    bool              `gorm:"default:true" json:"newPatients"`
	ContactPhone  string            `gorm:"size:20" json:"zaloPhone"`
	Address       string            `gorm:"size:255" json:"address"`
	Reasons       string            `gorm:"type:text" json:"reasons"`
	Status        AppointmentStatus `gorm:"size:20;default:'booked'" json:"status"`
	IsVerified    bool              `gorm:"default:false" json:"isVerified"`

	// Relations
	Patient User     `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User     `gorm:"foreignKey:DoctorID" json:"-"`
	Slot    TimeSlot `gorm:"foreignKey:SlotID" json:"-"`
}
