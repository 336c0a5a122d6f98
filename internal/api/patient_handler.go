package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

// PatientHandler holds the patient service dependency.
type PatientHandler struct {
	patientService service.PatientService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patientService service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// --- Request/Response Structs ---

type UpdateProfileRequest struct {
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	Phone             string   `json:"phone"`
	BirthDate         *string  `json:"birthDate"` // YYYY-MM-DD
	Gender            string   `json:"gender"`
	Address           string   `json:"address"`
	Height            *float64 `json:"height"`
	CurrentWeight     *float64 `json:"currentWeight"`
	GoalWeight        *float64 `json:"goalWeight"`
	ActivityLevel     string   `json:"activityLevel"`
	Allergies         []string `json:"allergies"`
	FoodPreferences   []string `json:"foodPreferences"`
	HealthGoals       string   `json:"healthGoals"`
	MedicalConditions string   `json:"medicalConditions"`
	DislikedFoods     string   `json:"dislikedFoods"`
}

// toInput converts the request into a service input, aborting with 400
// on a malformed birth date.
func (r UpdateProfileRequest) toInput(c *gin.Context) (service.PatientProfileInput, bool) {
	input := service.PatientProfileInput{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Phone:             r.Phone,
		Gender:            r.Gender,
		Address:           r.Address,
		Height:            r.Height,
		CurrentWeight:     r.CurrentWeight,
		GoalWeight:        r.GoalWeight,
		ActivityLevel:     r.ActivityLevel,
		Allergies:         r.Allergies,
		FoodPreferences:   r.FoodPreferences,
		HealthGoals:       r.HealthGoals,
		MedicalConditions: r.MedicalConditions,
		DislikedFoods:     r.DislikedFoods,
	}
	if r.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *r.BirthDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid birthDate format, expected YYYY-MM-DD")
			return input, false
		}
		input.BirthDate = &bd
	}
	return input, true
}

type CreatePatientRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	UpdateProfileRequest
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type PhotoConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// GetPatients godoc
// @Summary List patients
// @Tags Patients
// @Produce json
// @Success 200 {array} UserResponse
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /patients [get]
func (h *PatientHandler) GetPatients(c *gin.Context) {
	patients, err := h.patientService.GetPatients(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve patients")
		return
	}

	resp := make([]UserResponse, len(patients))
	for i := range patients {
		resp[i] = MapUserToResponse(&patients[i])
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePatient godoc
// @Summary Create a patient account (Nutritionist only)
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient body CreatePatientRequest true "Patient data"
// @Success 201 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /patients [post]
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, ok := req.UpdateProfileRequest.toInput(c)
	if !ok {
		return
	}

	patient, err := h.patientService.CreatePatient(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password, profile)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, "A user with this email already exists")
			return
		}
		handlePatientError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(patient))
}

// GetPatientByEmail godoc
// @Summary Look a patient up by email (Nutritionist only)
// @Tags Patients
// @Produce json
// @Param email query string true "Email address"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/by-email [get]
func (h *PatientHandler) GetPatientByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		abortWithError(c, http.StatusBadRequest, "email query parameter is required")
		return
	}

	patient, err := h.patientService.GetPatientByEmail(c.Request.Context(), email)
	if err != nil {
		handlePatientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(patient))
}

// GetPatient godoc
// @Summary Get one patient
// @Tags Patients
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/{patientId} [get]
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	patient, err := h.patientService.GetPatientByID(c.Request.Context(), patientID)
	if err != nil {
		handlePatientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(patient))
}

// UpdateProfile godoc
// @Summary Update a patient's profile
// @Tags Patients
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/{patientId} [put]
func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input, ok := req.toInput(c)
	if !ok {
		return
	}

	patient, err := h.patientService.UpdateProfile(c.Request.Context(), patientID, input)
	if err != nil {
		handlePatientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(patient))
}

// DeletePatient godoc
// @Summary Delete a patient account
// @Tags Patients
// @Param patientId path string true "Patient ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/{patientId} [delete]
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patientID, ok := pathObjectID(c, "patientId")
	if !ok {
		return
	}

	if err := h.patientService.DeletePatient(c.Request.Context(), patientID); err != nil {
		handlePatientError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats godoc
// @Summary Dashboard counters for the nutritionist
// @Tags Patients
// @Produce json
// @Success 200 {object} service.PatientStats
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /patients/stats [get]
func (h *PatientHandler) GetStats(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.patientService.GetStats(c.Request.Context(), adminID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RequestPhotoUpload godoc
// @Summary Get a presigned URL to upload a profile photo
// @Tags Patients
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param request body PhotoUploadRequest true "Upload content type"
// @Success 200 {object} service.PhotoUpload
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/{patientId}/photo/upload-url [post]
func (h *PatientHandler) RequestPhotoUpload(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.patientService.RequestPhotoUpload(c.Request.Context(), patientID, req.ContentType)
	if err != nil {
		handlePatientError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// ConfirmPhotoUpload godoc
// @Summary Confirm an uploaded profile photo
// @Tags Patients
// @Accept json
// @Param patientId path string true "Patient ID"
// @Param request body PhotoConfirmRequest true "Uploaded object key"
// @Success 204 "Confirmed"
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/{patientId}/photo/confirm [post]
func (h *PatientHandler) ConfirmPhotoUpload(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	var req PhotoConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.patientService.ConfirmPhotoUpload(c.Request.Context(), patientID, req.ObjectKey); err != nil {
		handlePatientError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPhotoURL godoc
// @Summary Get a presigned URL to view the profile photo
// @Tags Patients
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} gin.H "Download URL, empty when no photo"
// @Failure 404 {object} gin.H "Patient not found"
// @Router /patients/{patientId}/photo [get]
func (h *PatientHandler) GetPhotoURL(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	url, err := h.patientService.GetPhotoURL(c.Request.Context(), patientID)
	if err != nil {
		handlePatientError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func handlePatientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAPatient):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
