package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/store"
	"clinic-booking-server/internal/timeband"
	"clinic-booking-server/internal/utils"
)

// ScheduleHandler handles schedule related requests.
type ScheduleHandler struct {
	DB    *gorm.DB
	Store *store.ScheduleStore
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{DB: db, Store: store.NewScheduleStore(db)}
}

// CreateScheduleRequest represents the request body for creating a schedule.
// Dates cross the API boundary as dd/MM/yyyy, slots as HH:mm.
type CreateScheduleRequest struct {
	DoctorID  string   `json:"doctorId" binding:"required,uuid"`
	Date      string   `json:"date" binding:"required"`
	TimeSlots []string `json:"timeSlots" binding:"required"`
}

// CreateSchedule handles creating a doctor's slot set for one date.
// Only accessible by admins and doctors.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Verify doctor exists and is a doctor
	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	schedule, err := h.Store.CreateSchedule(c.Request.Context(), req.DoctorID, date, req.TimeSlots)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Schedule created successfully", schedule)
}

// GetSchedules handles fetching one day or a date range for a doctor.
// ?doctorId&date fetches one day; ?doctorId&startDate&endDate fetches the
// closed range ordered by date ascending.
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
	doctorID := c.Query("doctorId")
	if doctorID == "" {
		utils.BadRequest(c, "doctorId query parameter is required")
		return
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := utils.ParseDate(dateStr)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		schedule, err := h.Store.GetSchedule(c.Request.Context(), doctorID, date)
		if err != nil {
			utils.FromError(c, err)
			return
		}
		utils.Success(c, "Schedule fetched successfully", schedule)
		return
	}

	startStr, endStr := c.Query("startDate"), c.Query("endDate")
	if startStr == "" || endStr == "" {
		utils.BadRequest(c, "either date or startDate and endDate query parameters are required")
		return
	}
	start, err := utils.ParseDate(startStr)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	end, err := utils.ParseDate(endStr)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	schedules, err := h.Store.GetSchedulesInRange(c.Request.Context(), doctorID, start, end)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Schedules fetched successfully", schedules)
}

// GetWeekGrid handles fetching the Monday-start weekly timetable containing
// the given date, cells grouped by time band.
func (h *ScheduleHandler) GetWeekGrid(c *gin.Context) {
	doctorID := c.Query("doctorId")
	if doctorID == "" {
		utils.BadRequest(c, "doctorId query parameter is required")
		return
	}
	ref, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	start, end := timeband.WeekRange(ref)
	schedules, err := h.Store.GetSchedulesInRange(c.Request.Context(), doctorID, start, end)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Week grid fetched successfully", timeband.BuildWeekGrid(ref, schedules))
}

// UpdateScheduleRequest represents the request body for replacing a
// schedule's doctor, date and slot set. Omitted doctorId/date keep their
// current values.
type UpdateScheduleRequest struct {
	DoctorID  string   `json:"doctorId"`
	Date      string   `json:"date"`
	TimeSlots []string `json:"timeSlots" binding:"required"`
}

// UpdateSchedule handles replacing a schedule's slot set.
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	scheduleID := c.Param("id")

	var req UpdateScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	current, err := h.Store.GetScheduleByID(c.Request.Context(), scheduleID)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	doctorID := current.DoctorID
	if req.DoctorID != "" {
		doctorID = req.DoctorID
	}
	date := current.Date
	if req.Date != "" {
		date, err = utils.ParseDate(req.Date)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	schedule, err := h.Store.UpdateSchedule(c.Request.Context(), scheduleID, doctorID, date, req.TimeSlots)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Schedule updated successfully", schedule)
}

// DeleteSchedule handles removing a schedule. Deletion is blocked while any
// slot is booked unless ?force=true, which cancels the affected appointments.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	scheduleID := c.Param("id")
	force := c.Query("force") == "true"

	if err := h.Store.DeleteSchedule(c.Request.Context(), scheduleID, force); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Schedule deleted successfully", nil)
}
