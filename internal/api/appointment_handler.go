package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler holds the appointment service dependency.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

type AppointmentRequest struct {
	PatientID string `json:"patientId"` // staff only; patients book for themselves
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Type      string `json:"type" binding:"omitempty,oneof=presencial videollamada"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pendiente confirmada cancelada completada"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// CreateAppointment godoc
// @Summary Book an appointment
// @Description Patients book for themselves; staff may set patientId.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param appointment body AppointmentRequest true "Appointment details"
// @Success 201 {object} domain.Appointment
// @Failure 409 {object} gin.H "Slot already taken"
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		return
	}

	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patientID := callerID
	if role != domain.RolePatient && req.PatientID != "" {
		patientID, err = parseHex(req.PatientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid patientId format")
			return
		}
	}

	appt := &domain.Appointment{
		PatientID: patientID,
		Date:      req.Date,
		Time:      req.Time,
		Type:      domain.AppointmentType(req.Type),
		Reason:    req.Reason,
		Notes:     req.Notes,
	}
	created, err := h.appointmentService.Create(c.Request.Context(), appt)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetMyAppointments godoc
// @Summary List the caller's appointments
// @Tags Appointments
// @Produce json
// @Success 200 {array} domain.Appointment
// @Router /appointments/me [get]
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	appts, err := h.appointmentService.GetForPatient(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}
	c.JSON(http.StatusOK, appts)
}

// GetAllAppointments godoc
// @Summary List all appointments (Nutritionist only)
// @Tags Appointments
// @Produce json
// @Success 200 {array} domain.Appointment
// @Router /appointments [get]
func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	appts, err := h.appointmentService.GetAll(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}
	c.JSON(http.StatusOK, appts)
}

// UpdateAppointmentStatus godoc
// @Summary Change an appointment's status
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param status body AppointmentStatusRequest true "New status"
// @Success 200 {object} domain.Appointment
// @Failure 404 {object} gin.H "Appointment not found"
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req AppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	appt, err := h.appointmentService.UpdateStatus(c.Request.Context(), id, domain.AppointmentStatus(req.Status))
	if err != nil {
		handleAppointmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// RescheduleAppointment godoc
// @Summary Move an appointment to a different slot
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param slot body RescheduleRequest true "New date and time"
// @Success 200 {object} domain.Appointment
// @Failure 409 {object} gin.H "Slot already taken"
// @Router /appointments/{id}/reschedule [patch]
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	appt, err := h.appointmentService.Reschedule(c.Request.Context(), id, req.Date, req.Time)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// DeleteAppointment godoc
// @Summary Delete an appointment (Nutritionist only)
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Appointment not found"
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.appointmentService.Delete(c.Request.Context(), id); err != nil {
		handleAppointmentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAvailableSlots godoc
// @Summary List free half-hour slots for a date
// @Tags Appointments
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} gin.H "date and slots"
// @Failure 400 {object} gin.H "Invalid date"
// @Router /appointments/available [get]
func (h *AppointmentHandler) GetAvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		abortWithError(c, http.StatusBadRequest, "date query parameter is required")
		return
	}

	slots, err := h.appointmentService.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		handleAppointmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func handleAppointmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAppointmentNotFound), errors.Is(err, service.ErrPatientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSlotTaken):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidSlot):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
