package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type MetricRequest struct {
	Date        string   `json:"date"` // YYYY-MM-DD, defaults to today
	Weight      *float64 `json:"weight"`
	BodyFat     *float64 `json:"bodyFat"`
	MuscleMass  *float64 `json:"muscleMass"`
	WaistCm     *float64 `json:"waistCm"`
	HipCm       *float64 `json:"hipCm"`
	ChestCm     *float64 `json:"chestCm"`
	EnergyLevel *int     `json:"energyLevel" binding:"omitempty,min=1,max=10"`
	SleepHours  *float64 `json:"sleepHours"`
	Mood        string   `json:"mood"`
	Notes       string   `json:"notes"`
}

type AchievementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
}

type NoteRequest struct {
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

// CreateMetric godoc
// @Summary Record a day's measurements for a patient
// @Description Re-submitting for the same date overwrites the earlier entry.
// @Tags Progress
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param metric body MetricRequest true "Measurements"
// @Success 201 {object} domain.ProgressMetric
// @Failure 400 {object} gin.H "Invalid input"
// @Router /progress/{patientId}/metrics [post]
func (h *ProgressHandler) CreateMetric(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	var req MetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	date, ok := parseBodyDate(c, req.Date)
	if !ok {
		return
	}

	metric := &domain.ProgressMetric{
		PatientID:   patientID,
		Date:        date,
		Weight:      req.Weight,
		BodyFat:     req.BodyFat,
		MuscleMass:  req.MuscleMass,
		WaistCm:     req.WaistCm,
		HipCm:       req.HipCm,
		ChestCm:     req.ChestCm,
		EnergyLevel: req.EnergyLevel,
		SleepHours:  req.SleepHours,
		Mood:        req.Mood,
		Notes:       req.Notes,
	}
	created, err := h.progressService.CreateMetric(c.Request.Context(), metric)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetMetrics godoc
// @Summary List a patient's measurements, oldest first
// @Tags Progress
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param limit query int false "Keep only the newest N entries"
// @Success 200 {array} domain.ProgressMetric
// @Router /progress/{patientId}/metrics [get]
func (h *ProgressHandler) GetMetrics(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	metrics, err := h.progressService.GetMetrics(c.Request.Context(), patientID, limit)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// DeleteMetric godoc
// @Summary Delete one progress metric
// @Tags Progress
// @Param patientId path string true "Patient ID"
// @Param metricId path string true "Metric ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Metric not found"
// @Router /progress/{patientId}/metrics/{metricId} [delete]
func (h *ProgressHandler) DeleteMetric(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}
	metricID, ok := pathObjectID(c, "metricId")
	if !ok {
		return
	}

	if err := h.progressService.DeleteMetric(c.Request.Context(), patientID, metricID); err != nil {
		handleProgressError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPatientsProgress godoc
// @Summary Progress board across all patients (Nutritionist only)
// @Tags Progress
// @Produce json
// @Param search query string false "Filter by patient name"
// @Param trend query string false "Filter by trend (up, down, stable)"
// @Success 200 {array} service.PatientProgressSummary
// @Router /progress/patients [get]
func (h *ProgressHandler) GetPatientsProgress(c *gin.Context) {
	summaries, err := h.progressService.GetPatientsProgress(c.Request.Context(), c.Query("search"), domain.Trend(c.Query("trend")))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build progress board")
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetProgressDetails godoc
// @Summary Detailed progress for one patient
// @Tags Progress
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} service.ProgressDetails
// @Failure 404 {object} gin.H "Patient not found"
// @Router /progress/{patientId} [get]
func (h *ProgressHandler) GetProgressDetails(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	details, err := h.progressService.GetProgressDetails(c.Request.Context(), patientID)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetDashboard godoc
// @Summary Patient home dashboard
// @Tags Progress
// @Produce json
// @Success 200 {object} service.PatientDashboard
// @Router /dashboard [get]
func (h *ProgressHandler) GetDashboard(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.progressService.GetDashboard(c.Request.Context(), callerID, time.Now().UTC())
	if err != nil {
		handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// CreateAchievement godoc
// @Summary Record an achievement for a patient (Nutritionist only)
// @Tags Progress
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param achievement body AchievementRequest true "Achievement details"
// @Success 201 {object} domain.Achievement
// @Router /progress/{patientId}/achievements [post]
func (h *ProgressHandler) CreateAchievement(c *gin.Context) {
	patientID, ok := pathObjectID(c, "patientId")
	if !ok {
		return
	}

	var req AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	a := &domain.Achievement{
		PatientID:   patientID,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Category:    req.Category,
	}
	created, err := h.progressService.CreateAchievement(c.Request.Context(), a)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to record achievement")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetAchievements godoc
// @Summary List a patient's achievements
// @Tags Progress
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {array} domain.Achievement
// @Router /progress/{patientId}/achievements [get]
func (h *ProgressHandler) GetAchievements(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	achievements, err := h.progressService.GetAchievements(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve achievements")
		return
	}
	c.JSON(http.StatusOK, achievements)
}

// DeleteAchievement godoc
// @Summary Delete an achievement (Nutritionist only)
// @Tags Progress
// @Param achievementId path string true "Achievement ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Achievement not found"
// @Router /progress/achievements/{achievementId} [delete]
func (h *ProgressHandler) DeleteAchievement(c *gin.Context) {
	id, ok := pathObjectID(c, "achievementId")
	if !ok {
		return
	}

	if err := h.progressService.DeleteAchievement(c.Request.Context(), id); err != nil {
		handleProgressError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateNote godoc
// @Summary Add a clinical note to a patient's record (Nutritionist only)
// @Tags Progress
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param note body NoteRequest true "Note content"
// @Success 201 {object} domain.NutritionistNote
// @Router /progress/{patientId}/notes [post]
func (h *ProgressHandler) CreateNote(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	patientID, ok := pathObjectID(c, "patientId")
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	note := &domain.NutritionistNote{
		PatientID: patientID,
		AuthorID:  callerID,
		Content:   req.Content,
		Category:  req.Category,
	}
	created, err := h.progressService.CreateNote(c.Request.Context(), note)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save note")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetNotes godoc
// @Summary List a patient's clinical notes (Nutritionist only)
// @Tags Progress
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {array} domain.NutritionistNote
// @Router /progress/{patientId}/notes [get]
func (h *ProgressHandler) GetNotes(c *gin.Context) {
	patientID, ok := pathObjectID(c, "patientId")
	if !ok {
		return
	}

	notes, err := h.progressService.GetNotes(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}
	c.JSON(http.StatusOK, notes)
}

// DeleteNote godoc
// @Summary Delete a clinical note (Nutritionist only)
// @Tags Progress
// @Param noteId path string true "Note ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Note not found"
// @Router /progress/notes/{noteId} [delete]
func (h *ProgressHandler) DeleteNote(c *gin.Context) {
	noteID, ok := pathObjectID(c, "noteId")
	if !ok {
		return
	}

	if err := h.progressService.DeleteNote(c.Request.Context(), noteID); err != nil {
		handleProgressError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatientNotFound), errors.Is(err, service.ErrMetricNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
