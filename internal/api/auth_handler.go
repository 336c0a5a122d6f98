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

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	FirstName     string   `json:"firstName" binding:"required"`
	LastName      string   `json:"lastName"`
	Email         string   `json:"email" binding:"required,email"`
	Password      string   `json:"password" binding:"required,min=8"`
	Phone         string   `json:"phone"`
	BirthDate     *string  `json:"birthDate"` // YYYY-MM-DD
	Gender        string   `json:"gender"`
	Height        *float64 `json:"height"`
	CurrentWeight *float64 `json:"currentWeight"`
	GoalWeight    *float64 `json:"goalWeight"`
	ActivityLevel string   `json:"activityLevel"`
	HealthGoals   string   `json:"healthGoals"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID            string            `json:"id"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Email         string            `json:"email"`
	Role          domain.Role       `json:"role"`
	Status        domain.UserStatus `json:"status"`
	Phone         string            `json:"phone,omitempty"`
	Gender        string            `json:"gender,omitempty"`
	Height        *float64          `json:"height,omitempty"`
	CurrentWeight *float64          `json:"currentWeight,omitempty"`
	GoalWeight    *float64          `json:"goalWeight,omitempty"`
	ActivityLevel string            `json:"activityLevel,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new patient account
// @Description Creates a patient account with an optional clinical profile.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.RegisterInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		Gender:        req.Gender,
		Height:        req.Height,
		CurrentWeight: req.CurrentWeight,
		GoalWeight:    req.GoalWeight,
		ActivityLevel: req.ActivityLevel,
		HealthGoals:   req.HealthGoals,
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid birthDate format, expected YYYY-MM-DD")
			return
		}
		input.BirthDate = &bd
	}

	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else if errors.Is(err, service.ErrAccountInactive) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrTokenGeneration) {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Always returns 200 so the endpoint cannot probe for accounts.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} gin.H "Request acknowledged"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not process request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, reset instructions were sent"})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:            user.ID.Hex(),
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Email:         user.Email,
		Role:          user.Role,
		Status:        user.Status,
		Phone:         user.Phone,
		Gender:        user.Gender,
		Height:        user.Height,
		CurrentWeight: user.CurrentWeight,
		GoalWeight:    user.GoalWeight,
		ActivityLevel: user.ActivityLevel,
		CreatedAt:     user.CreatedAt,
	}
}
