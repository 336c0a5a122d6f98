package service

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotDemoteSelf = errors.New("superadmin cannot modify their own account here")
)

// SystemStats is the platform-wide counter card for superadmins.
type SystemStats struct {
	TotalUsers       int64 `json:"totalUsers"`
	Patients         int64 `json:"patients"`
	Nutritionists    int64 `json:"nutritionists"`
	Superadmins      int64 `json:"superadmins"`
}

type SuperadminService interface {
	GetUsers(ctx context.Context) ([]domain.User, error)
	CreateStaffUser(ctx context.Context, firstName, lastName, email, password string, role domain.Role) (*domain.User, error)
	SetUserStatus(ctx context.Context, callerID, userID primitive.ObjectID, status domain.UserStatus) error
	SetUserRole(ctx context.Context, callerID, userID primitive.ObjectID, role domain.Role) error
	DeleteUser(ctx context.Context, callerID, userID primitive.ObjectID) error
	GetSystemStats(ctx context.Context) (*SystemStats, error)
}

// superadminService implements the SuperadminService interface.
type superadminService struct {
	userRepo repository.UserRepository
}

// NewSuperadminService creates a new instance of superadminService.
func NewSuperadminService(userRepo repository.UserRepository) SuperadminService {
	return &superadminService{userRepo: userRepo}
}

func (s *superadminService) GetUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// CreateStaffUser provisions a nutritionist or superadmin account.
// Patient accounts self-register through the auth API instead.
func (s *superadminService) CreateStaffUser(ctx context.Context, firstName, lastName, email, password string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleSuperadmin {
		return nil, errors.New("staff role must be admin or superadmin")
	}
	if firstName == "" || email == "" || password == "" {
		return nil, errors.New("first name, email and password cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		Status:       domain.StatusActive,
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = id
	user.PasswordHash = ""
	return user, nil
}

func (s *superadminService) SetUserStatus(ctx context.Context, callerID, userID primitive.ObjectID, status domain.UserStatus) error {
	if callerID == userID {
		return ErrCannotDemoteSelf
	}
	if err := s.userRepo.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *superadminService) SetUserRole(ctx context.Context, callerID, userID primitive.ObjectID, role domain.Role) error {
	if callerID == userID {
		return ErrCannotDemoteSelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.Role = role
	return s.userRepo.Update(ctx, user)
}

func (s *superadminService) DeleteUser(ctx context.Context, callerID, userID primitive.ObjectID) error {
	if callerID == userID {
		return ErrCannotDemoteSelf
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *superadminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	patients, err := s.userRepo.CountByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	admins, err := s.userRepo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	supers, err := s.userRepo.CountByRole(ctx, domain.RoleSuperadmin)
	if err != nil {
		return nil, err
	}

	return &SystemStats{
		TotalUsers:    patients + admins + supers,
		Patients:      patients,
		Nutritionists: admins,
		Superadmins:   supers,
	}, nil
}
