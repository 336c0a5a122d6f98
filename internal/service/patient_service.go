package service

import (
	"context"
	"errors"
	"fmt"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"nutrivida/clinic-app/internal/storage"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrNotAPatient     = errors.New("user is not a patient")
)

// PatientProfileInput carries the editable profile fields. Nil pointers
// and empty strings leave the stored value untouched.
type PatientProfileInput struct {
	FirstName         string
	LastName          string
	Phone             string
	BirthDate         *time.Time
	Gender            string
	Address           string
	Height            *float64
	CurrentWeight     *float64
	GoalWeight        *float64
	ActivityLevel     string
	Allergies         []string
	FoodPreferences   []string
	HealthGoals       string
	MedicalConditions string
	DislikedFoods     string
}

// PatientStats is the aggregate card shown on the nutritionist dashboard.
type PatientStats struct {
	TotalPatients    int64 `json:"totalPatients"`
	ActivePlans      int64 `json:"activePlans"`
	TodayAppointments int  `json:"todayAppointments"`
	UnreadMessages   int64 `json:"unreadMessages"`
}

// PhotoUpload holds the presigned PUT target for a profile photo.
type PhotoUpload struct {
	ObjectKey string `json:"objectKey"`
	UploadURL string `json:"uploadUrl"`
}

type PatientService interface {
	GetPatients(ctx context.Context) ([]domain.User, error)
	CreatePatient(ctx context.Context, firstName, lastName, email, password string, profile PatientProfileInput) (*domain.User, error)
	GetPatientByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetPatientByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, input PatientProfileInput) (*domain.User, error)
	DeletePatient(ctx context.Context, id primitive.ObjectID) error
	GetStats(ctx context.Context, adminID primitive.ObjectID) (*PatientStats, error)

	RequestPhotoUpload(ctx context.Context, patientID primitive.ObjectID, contentType string) (*PhotoUpload, error)
	ConfirmPhotoUpload(ctx context.Context, patientID primitive.ObjectID, objectKey string) error
	GetPhotoURL(ctx context.Context, patientID primitive.ObjectID) (string, error)
}

// patientService implements the PatientService interface.
type patientService struct {
	userRepo        repository.UserRepository
	assignmentRepo  repository.AssignmentRepository
	dailyMealRepo   repository.DailyMealRepository
	appointmentRepo repository.AppointmentRepository
	messageRepo     repository.MessageRepository
	fileStorage     storage.FileStorage
}

// NewPatientService creates a new instance of patientService.
func NewPatientService(
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	dailyMealRepo repository.DailyMealRepository,
	appointmentRepo repository.AppointmentRepository,
	messageRepo repository.MessageRepository,
	fileStorage storage.FileStorage,
) PatientService {
	return &patientService{
		userRepo:        userRepo,
		assignmentRepo:  assignmentRepo,
		dailyMealRepo:   dailyMealRepo,
		appointmentRepo: appointmentRepo,
		messageRepo:     messageRepo,
		fileStorage:     fileStorage,
	}
}

// GetPatients lists every patient account.
func (s *patientService) GetPatients(ctx context.Context) ([]domain.User, error) {
	patients, err := s.userRepo.GetByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		patients[i].PasswordHash = ""
	}
	return patients, nil
}

// CreatePatient provisions a patient account on behalf of the clinic,
// for patients onboarded in person rather than through self-signup.
func (s *patientService) CreatePatient(ctx context.Context, firstName, lastName, email, password string, profile PatientProfileInput) (*domain.User, error) {
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
		Role:         domain.RolePatient,
		Status:       domain.StatusActive,
	}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	// Clinical profile fields go through the same merge as a profile edit.
	return s.UpdateProfile(ctx, id, profile)
}

// GetPatientByID fetches a single patient, rejecting non-patient accounts.
func (s *patientService) GetPatientByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if !user.IsPatient() {
		return nil, ErrNotAPatient
	}
	user.PasswordHash = ""
	return user, nil
}

// GetPatientByEmail looks a patient up by email address.
func (s *patientService) GetPatientByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if !user.IsPatient() {
		return nil, ErrNotAPatient
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies the provided profile fields to a patient.
func (s *patientService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input PatientProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.BirthDate != nil {
		user.BirthDate = input.BirthDate
	}
	if input.Gender != "" {
		user.Gender = input.Gender
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.Height != nil {
		user.Height = input.Height
	}
	if input.CurrentWeight != nil {
		user.CurrentWeight = input.CurrentWeight
	}
	if input.GoalWeight != nil {
		user.GoalWeight = input.GoalWeight
	}
	if input.ActivityLevel != "" {
		user.ActivityLevel = input.ActivityLevel
	}
	if input.Allergies != nil {
		user.Allergies = input.Allergies
	}
	if input.FoodPreferences != nil {
		user.FoodPreferences = input.FoodPreferences
	}
	if input.HealthGoals != "" {
		user.HealthGoals = input.HealthGoals
	}
	if input.MedicalConditions != "" {
		user.MedicalConditions = input.MedicalConditions
	}
	if input.DislikedFoods != "" {
		user.DislikedFoods = input.DislikedFoods
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// DeletePatient removes a patient account together with the data that
// only makes sense while the account exists: assignments' daily rows
// and the stored profile photo. Historical assignments stay for audit.
func (s *patientService) DeletePatient(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	if !user.IsPatient() {
		return ErrNotAPatient
	}

	if _, err := s.dailyMealRepo.DeleteByPatientFromDate(ctx, id, time.Unix(0, 0)); err != nil {
		return err
	}
	if user.PhotoKey != "" && s.fileStorage != nil {
		// Best effort
		_ = s.fileStorage.DeleteObject(ctx, user.PhotoKey)
	}

	return s.userRepo.Delete(ctx, id)
}

// GetStats aggregates the nutritionist dashboard counters.
func (s *patientService) GetStats(ctx context.Context, adminID primitive.ObjectID) (*PatientStats, error) {
	total, err := s.userRepo.CountByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}

	var activePlans int64
	patients, err := s.userRepo.GetByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	for _, p := range patients {
		if _, err := s.assignmentRepo.GetActiveByPatientID(ctx, p.ID); err == nil {
			activePlans++
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	today := time.Now().Format("2006-01-02")
	appts, err := s.appointmentRepo.GetByDate(ctx, today)
	if err != nil {
		return nil, err
	}
	todayCount := 0
	for _, a := range appts {
		if a.Blocking() {
			todayCount++
		}
	}

	unread, err := s.messageRepo.CountUnread(ctx, adminID)
	if err != nil {
		return nil, err
	}

	return &PatientStats{
		TotalPatients:     total,
		ActivePlans:       activePlans,
		TodayAppointments: todayCount,
		UnreadMessages:    unread,
	}, nil
}

// RequestPhotoUpload issues a presigned PUT URL for a new profile photo.
// The caller uploads directly to object storage, then confirms the key.
func (s *patientService) RequestPhotoUpload(ctx context.Context, patientID primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if _, err := s.GetPatientByID(ctx, patientID); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("profile-photos/%s/%s", patientID.Hex(), uuid.NewString())
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &PhotoUpload{ObjectKey: objectKey, UploadURL: url}, nil
}

// ConfirmPhotoUpload records the uploaded object key on the patient and
// drops the previous photo, if any.
func (s *patientService) ConfirmPhotoUpload(ctx context.Context, patientID primitive.ObjectID, objectKey string) error {
	user, err := s.GetPatientByID(ctx, patientID)
	if err != nil {
		return err
	}
	if user.PhotoKey != "" && user.PhotoKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, user.PhotoKey)
	}
	return s.userRepo.SetPhotoKey(ctx, patientID, objectKey)
}

// GetPhotoURL issues a short-lived download URL for the profile photo.
func (s *patientService) GetPhotoURL(ctx context.Context, patientID primitive.ObjectID) (string, error) {
	user, err := s.GetPatientByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	if user.PhotoKey == "" {
		return "", nil
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, user.PhotoKey, storage.DefaultPresignedURLExpiry)
}
