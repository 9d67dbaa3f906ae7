package models

// HealthStatus represents the doctor's assessment recorded after a visit
type HealthStatus string

const (
	HealthBad    HealthStatus = "bad"
	HealthNormal HealthStatus = "normal"
	HealthGood   HealthStatus = "good"
)

// HistoryRecord represents a doctor's post-visit record for one appointment.
// Creating one marks the appointment as verified; slot booking state is untouched.
type HistoryRecord struct {
	BaseModel
	AppointmentID     string       `gorm:"size:36;uniqueIndex" json:"appointmentId"`
	DoctorID          string       `gorm:"size:36;index" json:"doctorId"`
	DoctorComment     string       `gorm:"type:text" json:"doctorComment"`
	HealthStatus      HealthStatus `gorm:"size:10" json:"healthStatus"`
	PrescriptionImage string       `gorm:"size:255" json:"prescriptionImage"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Doctor      User        `gorm:"foreignKey:DoctorID" json:"-"`
}
