package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/booking"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Booking *booking.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{Booking: booking.NewService(db)}
}

func actorFromContext(c *gin.Context) (booking.Actor, bool) {
	userID, okID := middleware.GetUserIDFromContext(c)
	role, okRole := middleware.GetUserRoleFromContext(c)
	if !okID || !okRole {
		utils.Unauthorized(c, "User not authenticated")
		return booking.Actor{}, false
	}
	return booking.Actor{UserID: userID, Role: role}, true
}

// CreateAppointmentRequest represents the request body for booking a slot.
// date is dd/MM/yyyy and time is the HH:mm slot label.
type CreateAppointmentRequest struct {
	DoctorID    string `json:"doctorId" binding:"required,uuid"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Payment     string `json:"payment"`
	NewPatients *bool  `json:"newPatients"`
	ZaloPhone   string `json:"zaloPhone"`
	Address     string `json:"address"`
	Reasons     string `json:"reasons"`
}

// CreateAppointment handles booking a slot for the authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	appointment, err := h.Booking.Book(c.Request.Context(), actor, booking.Request{
		DoctorID:     req.DoctorID,
		Date:         date,
		Timeline:     req.Time,
		Payment:      req.Payment,
		NewPatient:   req.NewPatients,
		ContactPhone: req.ZaloPhone,
		Address:      req.Address,
		Reasons:      req.Reasons,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser handles fetching active appointments for the
// logged-in user (patient, doctor or admin).
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointments, err := h.Booking.ListForActor(c.Request.Context(), actor)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// CancelAppointment handles cancelling an appointment; the booked slot
// becomes free again.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.Booking.Cancel(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", nil)
}
