package service

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountInactive      = errors.New("account is not active")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// RegisterInput carries the fields accepted at registration time.
// Clinical profile fields are optional; patients can complete them later.
type RegisterInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	Phone         string
	BirthDate     *time.Time
	Gender        string
	Height        *float64
	CurrentWeight *float64
	GoalWeight    *float64
	ActivityLevel string
	HealthGoals   string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	ForgotPassword(ctx context.Context, email string) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	jwtSecret        string
	jwtExpiration    time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, notificationRepo repository.NotificationRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		jwtSecret:        jwtSecret,
		jwtExpiration:    jwtExpiration,
	}
}

// Register handles new patient registration. Nutritionists and
// superadmins are provisioned through the superadmin API, not here.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	// 1. Basic input validation
	if input.FirstName == "" || input.Email == "" || input.Password == "" {
		return nil, errors.New("first name, email and password cannot be empty")
	}

	// 2. Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// 4. Create the user domain object
	user := &domain.User{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		PasswordHash:  string(hashedPassword),
		Role:          domain.RolePatient,
		Status:        domain.StatusActive,
		Phone:         input.Phone,
		BirthDate:     input.BirthDate,
		Gender:        input.Gender,
		Height:        input.Height,
		CurrentWeight: input.CurrentWeight,
		GoalWeight:    input.GoalWeight,
		ActivityLevel: input.ActivityLevel,
		HealthGoals:   input.HealthGoals,
	}

	// 5. Save the user to the database
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// The unique email index closes the race between the GetByEmail
		// check and this insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	// 6. Welcome notification, best effort
	if s.notificationRepo != nil {
		_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  userID,
			Title:   "¡Bienvenido a NutriVida!",
			Message: "Tu cuenta fue creada. Completa tu perfil para empezar.",
			Type:    "system",
		})
	}

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	// 1. Basic input validation
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	// 2. Fetch user by email
	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		return
	}

	// 3. Compare the provided password with the stored hash
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	// 4. Reject inactive accounts
	if user.Status == domain.StatusInactive {
		err = ErrAccountInactive
		user = nil
		return
	}

	// 5. Authentication successful, generate JWT
	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ForgotPassword acknowledges a reset request. The response is the same
// whether or not the email exists so the endpoint cannot be used to
// probe for accounts; a known account gets an in-app notification.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if s.notificationRepo != nil {
		_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  user.ID,
			Title:   "Restablecer contraseña",
			Message: "Se solicitó un restablecimiento de contraseña para tu cuenta.",
			Type:    "system",
		})
	}
	return nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "clinic-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
