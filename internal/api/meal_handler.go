package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MealHandler holds the meal service dependency.
type MealHandler struct {
	mealService service.MealService
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(mealService service.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

type AddFoodRequest struct {
	MealType string  `json:"mealType" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Date     string  `json:"date"` // YYYY-MM-DD, defaults to today
}

type WaterRequest struct {
	Glasses int `json:"glasses" binding:"min=0"`
	GoalML  int `json:"goalMl"`
}

type CustomFoodRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// GetDayMeals godoc
// @Summary Get the patient's assigned meals for a date
// @Tags Meals
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} service.DayMealsView
// @Router /meals/{patientId} [get]
func (h *MealHandler) GetDayMeals(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	view, err := h.mealService.GetDayMeals(c.Request.Context(), patientID, date)
	if err != nil {
		handleMealError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetDetailedMeals godoc
// @Summary Get meals with food checklists, auto-initializing tracking
// @Tags Meals
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} service.DayMealsView
// @Router /meals/{patientId}/detailed [get]
func (h *MealHandler) GetDetailedMeals(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	view, err := h.mealService.GetDetailedMeals(c.Request.Context(), patientID, date)
	if err != nil {
		handleMealError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// InitializeDay godoc
// @Summary Force tracking initialization for a date
// @Tags Meals
// @Produce json
// @Param patientId path string true "Patient ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} service.DayMealsView
// @Router /meals/{patientId}/initialize [post]
func (h *MealHandler) InitializeDay(c *gin.Context) {
	patientID, ok := resolvePatientID(c, "patientId")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	view, err := h.mealService.InitializeDay(c.Request.Context(), patientID, date)
	if err != nil {
		handleMealError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ToggleFood godoc
// @Summary Toggle a food item's checked state
// @Description Flips the item and re-derives the meal's completion.
// @Tags Meals
// @Produce json
// @Param foodId path string true "Food item ID"
// @Success 200 {object} domain.MealTracking
// @Failure 404 {object} gin.H "Food item not found"
// @Router /meals/foods/{foodId}/toggle [post]
func (h *MealHandler) ToggleFood(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	foodID, ok := pathObjectID(c, "foodId")
	if !ok {
		return
	}

	tracking, err := h.mealService.ToggleFood(c.Request.Context(), callerID, foodID)
	if err != nil {
		handleMealError(c, err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

// AddFood godoc
// @Summary Add a food item to a meal
// @Tags Meals
// @Accept json
// @Produce json
// @Param food body AddFoodRequest true "Food details"
// @Success 201 {object} domain.MealFoodItem
// @Failure 400 {object} gin.H "Invalid input"
// @Router /meals/foods [post]
func (h *MealHandler) AddFood(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	date, ok := parseBodyDate(c, req.Date)
	if !ok {
		return
	}

	item, err := h.mealService.AddFood(c.Request.Context(), callerID, date, req.MealType, domain.MealFoodItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
	})
	if err != nil {
		handleMealError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveFood godoc
// @Summary Remove a food item from a meal
// @Tags Meals
// @Param foodId path string true "Food item ID"
// @Success 204 "Removed"
// @Failure 404 {object} gin.H "Food item not found"
// @Router /meals/foods/{foodId} [delete]
func (h *MealHandler) RemoveFood(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	foodID, ok := pathObjectID(c, "foodId")
	if !ok {
		return
	}

	if err := h.mealService.RemoveFood(c.Request.Context(), callerID, foodID); err != nil {
		handleMealError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetWater godoc
// @Summary Get the day's water intake
// @Tags Meals
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.WaterTracking
// @Router /meals/water [get]
func (h *MealHandler) GetWater(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	water, err := h.mealService.GetWater(c.Request.Context(), callerID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve water tracking")
		return
	}
	c.JSON(http.StatusOK, water)
}

// SetWater godoc
// @Summary Set the day's water intake
// @Tags Meals
// @Accept json
// @Produce json
// @Param water body WaterRequest true "Glasses count"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.WaterTracking
// @Router /meals/water [put]
func (h *MealHandler) SetWater(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	var req WaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	water, err := h.mealService.SetWater(c.Request.Context(), callerID, date, req.Glasses, req.GoalML)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save water tracking")
		return
	}
	c.JSON(http.StatusOK, water)
}

// SearchFoods godoc
// @Summary Search the patient's custom food catalog
// @Tags Meals
// @Produce json
// @Param q query string false "Name query"
// @Success 200 {array} domain.CustomFood
// @Router /meals/foods/search [get]
func (h *MealHandler) SearchFoods(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	foods, err := h.mealService.SearchFoods(c.Request.Context(), callerID, c.Query("q"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to search foods")
		return
	}
	c.JSON(http.StatusOK, foods)
}

// CreateCustomFood godoc
// @Summary Add an entry to the patient's food catalog
// @Tags Meals
// @Accept json
// @Produce json
// @Param food body CustomFoodRequest true "Food details"
// @Success 201 {object} domain.CustomFood
// @Failure 400 {object} gin.H "Invalid input"
// @Router /meals/foods/custom [post]
func (h *MealHandler) CreateCustomFood(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CustomFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	food := &domain.CustomFood{
		PatientID: callerID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		Calories:  req.Calories,
		Protein:   req.Protein,
		Carbs:     req.Carbs,
		Fat:       req.Fat,
	}
	created, err := h.mealService.CreateCustomFood(c.Request.Context(), food)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

func handleMealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFoodItemNotFound),
		errors.Is(err, service.ErrTrackingNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
