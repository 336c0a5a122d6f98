package api

import (
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MenuHandler serves the shared menu template library.
type MenuHandler struct {
	planService service.PlanService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(planService service.PlanService) *MenuHandler {
	return &MenuHandler{planService: planService}
}

type MenuTemplateRequest struct {
	Name          string         `json:"name" binding:"required"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Days          map[string]any `json:"days" binding:"required"`
	TotalCalories int            `json:"totalCalories"`
	AvgProtein    int            `json:"avgProtein"`
	AvgCarbs      int            `json:"avgCarbs"`
	AvgFat        int            `json:"avgFat"`
}

type DuplicateMenuRequest struct {
	Name string `json:"name"`
}

// CreateTemplate godoc
// @Summary Create a menu template
// @Tags Menus
// @Accept json
// @Produce json
// @Param menu body MenuTemplateRequest true "Template details"
// @Success 201 {object} domain.MenuTemplate
// @Failure 400 {object} gin.H "Invalid input"
// @Router /menus [post]
func (h *MenuHandler) CreateTemplate(c *gin.Context) {
	var req MenuTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	tpl := &domain.MenuTemplate{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Days:          req.Days,
		TotalCalories: req.TotalCalories,
		AvgProtein:    req.AvgProtein,
		AvgCarbs:      req.AvgCarbs,
		AvgFat:        req.AvgFat,
	}
	created, err := h.planService.CreateTemplate(c.Request.Context(), tpl)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetTemplates godoc
// @Summary List menu templates
// @Tags Menus
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {array} domain.MenuTemplate
// @Router /menus [get]
func (h *MenuHandler) GetTemplates(c *gin.Context) {
	templates, err := h.planService.GetTemplates(c.Request.Context(), c.Query("category"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve menu templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary Get one menu template
// @Tags Menus
// @Produce json
// @Param menuId path string true "Menu ID"
// @Success 200 {object} domain.MenuTemplate
// @Failure 404 {object} gin.H "Menu not found"
// @Router /menus/{menuId} [get]
func (h *MenuHandler) GetTemplate(c *gin.Context) {
	menuID, ok := pathObjectID(c, "menuId")
	if !ok {
		return
	}

	tpl, err := h.planService.GetTemplateByID(c.Request.Context(), menuID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// UpdateTemplate godoc
// @Summary Update a menu template
// @Tags Menus
// @Accept json
// @Produce json
// @Param menuId path string true "Menu ID"
// @Param menu body MenuTemplateRequest true "Template details"
// @Success 200 {object} domain.MenuTemplate
// @Failure 404 {object} gin.H "Menu not found"
// @Router /menus/{menuId} [put]
func (h *MenuHandler) UpdateTemplate(c *gin.Context) {
	menuID, ok := pathObjectID(c, "menuId")
	if !ok {
		return
	}

	var req MenuTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	tpl, err := h.planService.GetTemplateByID(c.Request.Context(), menuID)
	if err != nil {
		handlePlanError(c, err)
		return
	}

	tpl.Name = req.Name
	tpl.Description = req.Description
	tpl.Category = req.Category
	tpl.Days = req.Days
	tpl.TotalCalories = req.TotalCalories
	tpl.AvgProtein = req.AvgProtein
	tpl.AvgCarbs = req.AvgCarbs
	tpl.AvgFat = req.AvgFat

	if err := h.planService.UpdateTemplate(c.Request.Context(), tpl); err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// DeleteTemplate godoc
// @Summary Delete a menu template
// @Tags Menus
// @Param menuId path string true "Menu ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Menu not found"
// @Failure 409 {object} gin.H "Menu has active assignments"
// @Router /menus/{menuId} [delete]
func (h *MenuHandler) DeleteTemplate(c *gin.Context) {
	menuID, ok := pathObjectID(c, "menuId")
	if !ok {
		return
	}

	if err := h.planService.DeleteTemplate(c.Request.Context(), menuID); err != nil {
		handlePlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateTemplate godoc
// @Summary Duplicate a menu template
// @Tags Menus
// @Accept json
// @Produce json
// @Param menuId path string true "Menu ID"
// @Param request body DuplicateMenuRequest false "Optional new name"
// @Success 201 {object} domain.MenuTemplate
// @Failure 404 {object} gin.H "Menu not found"
// @Router /menus/{menuId}/duplicate [post]
func (h *MenuHandler) DuplicateTemplate(c *gin.Context) {
	menuID, ok := pathObjectID(c, "menuId")
	if !ok {
		return
	}

	var req DuplicateMenuRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	copyTpl, err := h.planService.DuplicateTemplate(c.Request.Context(), menuID, req.Name)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, copyTpl)
}

// GetTemplateStats godoc
// @Summary Usage stats of one menu template
// @Tags Menus
// @Produce json
// @Param menuId path string true "Menu ID"
// @Success 200 {object} service.MenuTemplateStats
// @Failure 404 {object} gin.H "Menu not found"
// @Router /menus/{menuId}/stats [get]
func (h *MenuHandler) GetTemplateStats(c *gin.Context) {
	menuID, ok := pathObjectID(c, "menuId")
	if !ok {
		return
	}

	stats, err := h.planService.GetTemplateStats(c.Request.Context(), menuID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetCategories godoc
// @Summary List distinct menu categories
// @Tags Menus
// @Produce json
// @Success 200 {array} string
// @Router /menus/categories [get]
func (h *MenuHandler) GetCategories(c *gin.Context) {
	categories, err := h.planService.GetTemplateCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}
