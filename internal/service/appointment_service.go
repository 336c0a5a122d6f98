package service

import (
	"context"
	"errors"
	"fmt"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("appointment slot is already taken")
	ErrInvalidSlot         = errors.New("invalid appointment date or time")
)

type AppointmentService interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error)
	GetForPatient(ctx context.Context, patientID primitive.ObjectID) ([]domain.Appointment, error)
	GetAll(ctx context.Context) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AppointmentStatus) (*domain.Appointment, error)
	Reschedule(ctx context.Context, id primitive.ObjectID, date, timeSlot string) (*domain.Appointment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AvailableSlots(ctx context.Context, date string) ([]string, error)
}

// appointmentService implements the AppointmentService interface.
type appointmentService struct {
	appointmentRepo  repository.AppointmentRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// NewAppointmentService creates a new instance of appointmentService.
func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) AppointmentService {
	return &appointmentService{
		appointmentRepo:  appointmentRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// Create books an appointment. The slot must be free of non-cancelled
// appointments; the partial unique index backs up this check under
// concurrent bookings.
func (s *appointmentService) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if err := validateSlot(appt.Date, appt.Time); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, appt.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	_, err := s.appointmentRepo.FindBlocking(ctx, appt.Date, appt.Time)
	if err == nil {
		return nil, ErrSlotTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if appt.Status == "" {
		appt.Status = domain.AppointmentPending
	}
	if appt.Type == "" {
		appt.Type = domain.AppointmentInPerson
	}

	id, err := s.appointmentRepo.Create(ctx, appt)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	appt.ID = id

	if s.notificationRepo != nil {
		_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  appt.PatientID,
			Title:   "Cita agendada",
			Message: fmt.Sprintf("Tu cita quedó agendada para el %s a las %s.", appt.Date, appt.Time),
			Type:    "appointment",
		})
	}
	return appt, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) GetForPatient(ctx context.Context, patientID primitive.ObjectID) ([]domain.Appointment, error) {
	return s.appointmentRepo.GetByPatientID(ctx, patientID)
}

func (s *appointmentService) GetAll(ctx context.Context) ([]domain.Appointment, error) {
	return s.appointmentRepo.GetAll(ctx)
}

// UpdateStatus moves an appointment through its lifecycle.
func (s *appointmentService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AppointmentStatus) (*domain.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	appt.Status = status
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, err
	}

	if s.notificationRepo != nil && status == domain.AppointmentCancelled {
		_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  appt.PatientID,
			Title:   "Cita cancelada",
			Message: fmt.Sprintf("Tu cita del %s a las %s fue cancelada.", appt.Date, appt.Time),
			Type:    "appointment",
		})
	}
	return appt, nil
}

// Reschedule moves an appointment to a new free slot.
func (s *appointmentService) Reschedule(ctx context.Context, id primitive.ObjectID, date, timeSlot string) (*domain.Appointment, error) {
	if err := validateSlot(date, timeSlot); err != nil {
		return nil, err
	}

	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blocking, err := s.appointmentRepo.FindBlocking(ctx, date, timeSlot)
	if err == nil && blocking.ID != appt.ID {
		return nil, ErrSlotTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	appt.Date = date
	appt.Time = timeSlot
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return err
	}
	return nil
}

// AvailableSlots lists the half-hour slots of a date not taken by a
// non-cancelled appointment.
func (s *appointmentService) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidSlot
	}

	appts, err := s.appointmentRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool)
	for _, a := range appts {
		if a.Blocking() {
			taken[a.Time] = true
		}
	}

	var free []string
	for _, slot := range domain.AllSlots() {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

func validateSlot(date, timeSlot string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidSlot
	}
	if _, err := time.Parse("15:04", timeSlot); err != nil {
		return ErrInvalidSlot
	}
	return nil
}
