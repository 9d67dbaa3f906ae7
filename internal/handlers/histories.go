package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/booking"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// HistoryHandler handles post-visit history records.
type HistoryHandler struct {
	DB      *gorm.DB
	Booking *booking.Service
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(db *gorm.DB) *HistoryHandler {
	return &HistoryHandler{DB: db, Booking: booking.NewService(db)}
}

// CreateHistoryRequest represents the request body for verifying an
// appointment with a post-visit record.
type CreateHistoryRequest struct {
	AppointmentID     string `json:"appointmentId" binding:"required,uuid"`
	DoctorComment     string `json:"doctorComment"`
	HealthStatus      string `json:"healthStatus"`
	PrescriptionImage string `json:"prescriptionImage"`
}

// CreateHistory handles recording a visit outcome. Only accessible by
// doctors; marks the appointment verified without touching slot state.
func (h *HistoryHandler) CreateHistory(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreateHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	record, err := h.Booking.Verify(c.Request.Context(), actor, req.AppointmentID,
		req.DoctorComment, models.HealthStatus(req.HealthStatus), req.PrescriptionImage)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Visit verified successfully", record)
}

// GetHistoryForAppointment handles fetching the history record attached to
// one appointment.
func (h *HistoryHandler) GetHistoryForAppointment(c *gin.Context) {
	appointmentID := c.Param("appointmentId")

	var record models.HistoryRecord
	if err := h.DB.First(&record, "appointment_id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "No history record for this appointment")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "History record fetched successfully", record)
}
