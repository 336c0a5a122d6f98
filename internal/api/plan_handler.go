package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type MealPlanRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Calories      int    `json:"calories" binding:"required,gt=0"`
	Duration      string `json:"duration"`
	Category      string `json:"category"`
	ProteinTarget int    `json:"proteinTarget"`
	CarbsTarget   int    `json:"carbsTarget"`
	FatTarget     int    `json:"fatTarget"`
	MealsPerDay   int    `json:"mealsPerDay"`
}

type WeeklyMenuRequest struct {
	WeekNumber int            `json:"weekNumber"`
	Days       map[string]any `json:"days" binding:"required"`
}

type AssignPlanRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	PlanID    string `json:"planId" binding:"required"`
	MenuID    string `json:"menuId" binding:"required"`
	StartDate string `json:"startDate"` // YYYY-MM-DD, defaults to today
	Notes     string `json:"notes"`
}

type ChangeMenuRequest struct {
	MenuID string `json:"menuId" binding:"required"`
	From   string `json:"from"` // YYYY-MM-DD, defaults to tomorrow
}

type AssignmentStatusRequest struct {
	Status domain.AssignmentStatus `json:"status" binding:"required,oneof=active paused completed"`
}

// --- Meal plan handlers ---

// CreatePlan godoc
// @Summary Create a meal plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan body MealPlanRequest true "Plan details"
// @Success 201 {object} domain.MealPlan
// @Failure 400 {object} gin.H "Invalid input"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan := &domain.MealPlan{
		Name:          req.Name,
		Description:   req.Description,
		Calories:      req.Calories,
		Duration:      req.Duration,
		Category:      req.Category,
		ProteinTarget: req.ProteinTarget,
		CarbsTarget:   req.CarbsTarget,
		FatTarget:     req.FatTarget,
		MealsPerDay:   req.MealsPerDay,
	}
	created, err := h.planService.CreatePlan(c.Request.Context(), plan)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetPlans godoc
// @Summary List meal plans
// @Tags Plans
// @Produce json
// @Success 200 {array} domain.MealPlan
// @Router /plans [get]
func (h *PlanHandler) GetPlans(c *gin.Context) {
	plans, err := h.planService.GetPlans(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get one meal plan
// @Tags Plans
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.MealPlan
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// UpdatePlan godoc
// @Summary Update a meal plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param plan body MealPlanRequest true "Plan details"
// @Success 200 {object} domain.MealPlan
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		handlePlanError(c, err)
		return
	}

	plan.Name = req.Name
	plan.Description = req.Description
	plan.Calories = req.Calories
	plan.Duration = req.Duration
	plan.Category = req.Category
	plan.ProteinTarget = req.ProteinTarget
	plan.CarbsTarget = req.CarbsTarget
	plan.FatTarget = req.FatTarget
	if req.MealsPerDay > 0 {
		plan.MealsPerDay = req.MealsPerDay
	}

	if err := h.planService.UpdatePlan(c.Request.Context(), plan); err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan godoc
// @Summary Delete a meal plan
// @Tags Plans
// @Param planId path string true "Plan ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Plan not found"
// @Failure 409 {object} gin.H "Plan has active assignments"
// @Router /plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		handlePlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Weekly menu handlers (plan-owned) ---

// CreateWeeklyMenu godoc
// @Summary Add a weekly menu to a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param menu body WeeklyMenuRequest true "Menu days"
// @Success 201 {object} domain.WeeklyMenu
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId}/menus [post]
func (h *PlanHandler) CreateWeeklyMenu(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	var req WeeklyMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	menu := &domain.WeeklyMenu{
		MealPlanID: planID,
		WeekNumber: req.WeekNumber,
		Days:       req.Days,
	}
	created, err := h.planService.CreateWeeklyMenu(c.Request.Context(), menu)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetWeeklyMenus godoc
// @Summary List a plan's weekly menus
// @Tags Plans
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {array} domain.WeeklyMenu
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId}/menus [get]
func (h *PlanHandler) GetWeeklyMenus(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	menus, err := h.planService.GetWeeklyMenus(c.Request.Context(), planID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

// --- Assignment handlers ---

// AssignPlan godoc
// @Summary Assign a plan and menu to a patient
// @Description Pauses any active assignment, creates a new one and expands the first week of daily meals.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param assignment body AssignPlanRequest true "Assignment details"
// @Success 201 {object} domain.PlanAssignment
// @Failure 404 {object} gin.H "Patient, plan or menu not found"
// @Failure 409 {object} gin.H "Patient already has an active assignment"
// @Router /assignments [post]
func (h *PlanHandler) AssignPlan(c *gin.Context) {
	var req AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patientID, err := parseHex(req.PatientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patientId format")
		return
	}
	planID, err := parseHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}
	menuID, err := parseHex(req.MenuID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid menuId format")
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid startDate format, expected YYYY-MM-DD")
			return
		}
	}

	assignment, err := h.planService.AssignPlan(c.Request.Context(), patientID, planID, menuID, startDate, req.Notes)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// ChangeMenu godoc
// @Summary Switch the active assignment to another menu
// @Description Drops daily meals from the cutoff date and regenerates them from the new menu.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param request body ChangeMenuRequest true "New menu"
// @Success 200 {object} domain.PlanAssignment
// @Failure 404 {object} gin.H "Menu not found or no active plan"
// @Router /patients/{patientId}/change-menu [post]
func (h *PlanHandler) ChangeMenu(c *gin.Context) {
	patientID, ok := pathObjectID(c, "patientId")
	if !ok {
		return
	}

	var req ChangeMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	menuID, err := parseHex(req.MenuID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid menuId format")
		return
	}

	var cutoff *time.Time
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid from format, expected YYYY-MM-DD")
			return
		}
		cutoff = &from
	}

	assignment, err := h.planService.ChangeWeeklyMenu(c.Request.Context(), patientID, menuID, cutoff)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetActiveAssignment godoc
// @Summary Get a patient's active assignment
// @Tags Assignments
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {object} domain.PlanAssignment
// @Failure 404 {object} gin.H "No active plan"
// @Router /patients/{patientId}/assignments/active [get]
func (h *PlanHandler) GetActiveAssignment(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	assignment, err := h.planService.GetActiveAssignment(c.Request.Context(), patientID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetAssignmentHistory godoc
// @Summary List a patient's assignment history
// @Tags Assignments
// @Produce json
// @Param patientId path string true "Patient ID"
// @Success 200 {array} domain.PlanAssignment
// @Router /patients/{patientId}/assignments/history [get]
func (h *PlanHandler) GetAssignmentHistory(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}

	history, err := h.planService.GetAssignmentHistory(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	c.JSON(http.StatusOK, history)
}

// UpdateAssignmentStatus godoc
// @Summary Change an assignment's status
// @Tags Assignments
// @Accept json
// @Param assignmentId path string true "Assignment ID"
// @Param request body AssignmentStatusRequest true "New status"
// @Success 204 "Updated"
// @Failure 404 {object} gin.H "Assignment not found"
// @Router /assignments/{assignmentId}/status [patch]
func (h *PlanHandler) UpdateAssignmentStatus(c *gin.Context) {
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	var req AssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.planService.UpdateAssignmentStatus(c.Request.Context(), assignmentID, req.Status); err != nil {
		handlePlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAssignment godoc
// @Summary Remove an assignment
// @Description Deletes the assignment together with its expanded daily meals.
// @Tags Assignments
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Assignment not found"
// @Router /assignments/{assignmentId} [delete]
func (h *PlanHandler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	if err := h.planService.DeleteAssignment(c.Request.Context(), assignmentID); err != nil {
		handlePlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrMenuNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrNoActivePlan),
		errors.Is(err, service.ErrPatientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanInUse),
		errors.Is(err, service.ErrMenuInUse),
		errors.Is(err, service.ErrAlreadyAssigned):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotAPatient):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
