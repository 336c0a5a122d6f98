package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SuperadminHandler holds the superadmin service dependency.
type SuperadminHandler struct {
	superadminService service.SuperadminService
}

// NewSuperadminHandler creates a new SuperadminHandler.
func NewSuperadminHandler(superadminService service.SuperadminService) *SuperadminHandler {
	return &SuperadminHandler{superadminService: superadminService}
}

type CreateStaffRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=admin superadmin"`
}

type UserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active pending inactive"`
}

type UserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=patient admin superadmin"`
}

// GetUsers godoc
// @Summary List every account in the system (Superadmin only)
// @Tags Superadmin
// @Produce json
// @Success 200 {array} UserResponse
// @Router /superadmin/users [get]
func (h *SuperadminHandler) GetUsers(c *gin.Context) {
	users, err := h.superadminService.GetUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateStaffUser godoc
// @Summary Provision a nutritionist or superadmin account (Superadmin only)
// @Tags Superadmin
// @Accept json
// @Produce json
// @Param user body CreateStaffRequest true "Staff account details"
// @Success 201 {object} UserResponse
// @Failure 409 {object} gin.H "Email already registered"
// @Router /superadmin/users [post]
func (h *SuperadminHandler) CreateStaffUser(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.superadminService.CreateStaffUser(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// SetUserStatus godoc
// @Summary Activate or deactivate an account (Superadmin only)
// @Tags Superadmin
// @Accept json
// @Param id path string true "User ID"
// @Param status body UserStatusRequest true "New status"
// @Success 204 "Updated"
// @Failure 403 {object} gin.H "Cannot change own account"
// @Router /superadmin/users/{id}/status [patch]
func (h *SuperadminHandler) SetUserStatus(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.superadminService.SetUserStatus(c.Request.Context(), callerID, userID, domain.UserStatus(req.Status)); err != nil {
		handleSuperadminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetUserRole godoc
// @Summary Change an account's role (Superadmin only)
// @Tags Superadmin
// @Accept json
// @Param id path string true "User ID"
// @Param role body UserRoleRequest true "New role"
// @Success 204 "Updated"
// @Failure 403 {object} gin.H "Cannot change own account"
// @Router /superadmin/users/{id}/role [patch]
func (h *SuperadminHandler) SetUserRole(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req UserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.superadminService.SetUserRole(c.Request.Context(), callerID, userID, domain.Role(req.Role)); err != nil {
		handleSuperadminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteUser godoc
// @Summary Delete an account (Superadmin only)
// @Tags Superadmin
// @Param id path string true "User ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Cannot delete own account"
// @Router /superadmin/users/{id} [delete]
func (h *SuperadminHandler) DeleteUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.superadminService.DeleteUser(c.Request.Context(), callerID, userID); err != nil {
		handleSuperadminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSystemStats godoc
// @Summary Account counts by role (Superadmin only)
// @Tags Superadmin
// @Produce json
// @Success 200 {object} service.SystemStats
// @Router /superadmin/stats [get]
func (h *SuperadminHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.superadminService.GetSystemStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func handleSuperadminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCannotDemoteSelf):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
