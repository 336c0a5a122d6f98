package service

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrMetricNotFound = errors.New("progress metric not found")

// dailyTips rotate on the patient dashboard, one per calendar day.
var dailyTips = []string{
	"Bebe un vaso de agua antes de cada comida.",
	"Mastica despacio: tu cerebro tarda 20 minutos en registrar saciedad.",
	"Agrega verduras de colores variados a tu plato.",
	"Camina al menos 30 minutos hoy.",
	"Prefiere fruta entera en lugar de jugos.",
	"Duerme entre 7 y 8 horas para regular el apetito.",
	"Planifica tus comidas de mañana esta noche.",
}

// PatientProgressSummary is one row of the nutritionist's progress board.
type PatientProgressSummary struct {
	PatientID       primitive.ObjectID `json:"patientId"`
	Name            string             `json:"name"`
	CurrentWeight   *float64           `json:"currentWeight,omitempty"`
	InitialWeight   *float64           `json:"initialWeight,omitempty"`
	GoalWeight      *float64           `json:"goalWeight,omitempty"`
	Trend           domain.Trend       `json:"trend"`
	WeeklyAdherence int                `json:"weeklyAdherence"`
	Progress        int                `json:"progress"`
	HasActivePlan   bool               `json:"hasActivePlan"`
}

// ProgressDetails is the full progress sheet for one patient.
type ProgressDetails struct {
	Patient         domain.User               `json:"patient"`
	Metrics         []domain.ProgressMetric   `json:"metrics"`
	Achievements    []domain.Achievement      `json:"achievements"`
	Notes           []domain.NutritionistNote `json:"notes"`
	Trend           domain.Trend              `json:"trend"`
	WeeklyAdherence int                       `json:"weeklyAdherence"`
	GoalProgress    float64                   `json:"goalProgress"`
	InitialWeight   *float64                  `json:"initialWeight,omitempty"`
}

// PatientDashboard is the patient home screen payload.
type PatientDashboard struct {
	TodayCompleted    int                   `json:"todayCompleted"`
	TodayTotal        int                   `json:"todayTotal"`
	Water             domain.WaterTracking  `json:"water"`
	WeeklyAdherence   int                   `json:"weeklyAdherence"`
	PreviousAdherence int                   `json:"previousAdherence"`
	GoalProgress      float64               `json:"goalProgress"`
	CurrentWeight     *float64              `json:"currentWeight,omitempty"`
	GoalWeight        *float64              `json:"goalWeight,omitempty"`
	Trend             domain.Trend          `json:"trend"`
	Tip               string                `json:"tip"`
	HasActivePlan     bool                  `json:"hasActivePlan"`
	NextAppointment   *domain.Appointment   `json:"nextAppointment,omitempty"`
}

type ProgressService interface {
	CreateMetric(ctx context.Context, metric *domain.ProgressMetric) (*domain.ProgressMetric, error)
	GetMetrics(ctx context.Context, patientID primitive.ObjectID, limit int) ([]domain.ProgressMetric, error)
	DeleteMetric(ctx context.Context, patientID, metricID primitive.ObjectID) error

	GetPatientsProgress(ctx context.Context, search string, trend domain.Trend) ([]PatientProgressSummary, error)
	GetProgressDetails(ctx context.Context, patientID primitive.ObjectID) (*ProgressDetails, error)
	GetDashboard(ctx context.Context, patientID primitive.ObjectID, now time.Time) (*PatientDashboard, error)

	CreateAchievement(ctx context.Context, a *domain.Achievement) (*domain.Achievement, error)
	GetAchievements(ctx context.Context, patientID primitive.ObjectID) ([]domain.Achievement, error)
	DeleteAchievement(ctx context.Context, id primitive.ObjectID) error

	CreateNote(ctx context.Context, note *domain.NutritionistNote) (*domain.NutritionistNote, error)
	GetNotes(ctx context.Context, patientID primitive.ObjectID) ([]domain.NutritionistNote, error)
	DeleteNote(ctx context.Context, id primitive.ObjectID) error
}

// progressService implements the ProgressService interface.
type progressService struct {
	progressRepo    repository.ProgressRepository
	trackingRepo    repository.TrackingRepository
	userRepo        repository.UserRepository
	assignmentRepo  repository.AssignmentRepository
	waterRepo       repository.WaterRepository
	appointmentRepo repository.AppointmentRepository
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	trackingRepo repository.TrackingRepository,
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	waterRepo repository.WaterRepository,
	appointmentRepo repository.AppointmentRepository,
) ProgressService {
	return &progressService{
		progressRepo:    progressRepo,
		trackingRepo:    trackingRepo,
		userRepo:        userRepo,
		assignmentRepo:  assignmentRepo,
		waterRepo:       waterRepo,
		appointmentRepo: appointmentRepo,
	}
}

// CreateMetric stores a day's measurements, overwriting any earlier
// submission for the same date. A weight reading also refreshes the
// patient's current weight.
func (s *progressService) CreateMetric(ctx context.Context, metric *domain.ProgressMetric) (*domain.ProgressMetric, error) {
	if metric.Date.IsZero() {
		metric.Date = time.Now().UTC()
	}

	id, err := s.progressRepo.UpsertMetric(ctx, metric)
	if err != nil {
		return nil, err
	}
	metric.ID = id

	if metric.Weight != nil {
		if err := s.userRepo.UpdateCurrentWeight(ctx, metric.PatientID, *metric.Weight); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return metric, nil
}

func (s *progressService) GetMetrics(ctx context.Context, patientID primitive.ObjectID, limit int) ([]domain.ProgressMetric, error) {
	return s.progressRepo.GetMetrics(ctx, patientID, limit)
}

func (s *progressService) DeleteMetric(ctx context.Context, patientID, metricID primitive.ObjectID) error {
	if err := s.progressRepo.DeleteMetric(ctx, patientID, metricID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMetricNotFound
		}
		return err
	}
	return nil
}

// GetPatientsProgress builds the per-patient summary board, optionally
// narrowed by a name search and a trend filter.
func (s *progressService) GetPatientsProgress(ctx context.Context, search string, trend domain.Trend) ([]PatientProgressSummary, error) {
	patients, err := s.userRepo.GetByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summaries := make([]PatientProgressSummary, 0, len(patients))
	for _, p := range patients {
		if search != "" && !strings.Contains(strings.ToLower(p.FullName()), strings.ToLower(search)) {
			continue
		}

		summary := PatientProgressSummary{
			PatientID:     p.ID,
			Name:          p.FullName(),
			CurrentWeight: p.CurrentWeight,
			GoalWeight:    p.GoalWeight,
			Trend:         domain.TrendStable,
		}

		initial, err := s.initialWeight(ctx, &p)
		if err != nil {
			return nil, err
		}
		summary.InitialWeight = initial

		weights, err := s.recentWeights(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		summary.Trend = domain.CalculateTrend(weights)

		adherence, err := s.weeklyAdherence(ctx, p.ID, now)
		if err != nil {
			return nil, err
		}
		summary.WeeklyAdherence = adherence

		if p.CurrentWeight != nil && p.GoalWeight != nil {
			summary.Progress = domain.ProfileProgress(*p.CurrentWeight, *p.GoalWeight)
		}

		if _, err := s.assignmentRepo.GetActiveByPatientID(ctx, p.ID); err == nil {
			summary.HasActivePlan = true
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		// Trend filter applies after computation since the trend is derived.
		if trend != "" && summary.Trend != trend {
			continue
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetProgressDetails assembles the full sheet for one patient.
func (s *progressService) GetProgressDetails(ctx context.Context, patientID primitive.ObjectID) (*ProgressDetails, error) {
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	patient.PasswordHash = ""

	metrics, err := s.progressRepo.GetMetrics(ctx, patientID, 0)
	if err != nil {
		return nil, err
	}
	achievements, err := s.progressRepo.GetAchievements(ctx, patientID)
	if err != nil {
		return nil, err
	}
	notes, err := s.progressRepo.GetNotes(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var weights []float64
	for _, m := range metrics {
		if m.Weight != nil {
			weights = append(weights, *m.Weight)
		}
	}

	adherence, err := s.weeklyAdherence(ctx, patientID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	details := &ProgressDetails{
		Patient:         *patient,
		Metrics:         metrics,
		Achievements:    achievements,
		Notes:           notes,
		Trend:           domain.CalculateTrend(weights),
		WeeklyAdherence: adherence,
	}

	initial, err := s.initialWeight(ctx, patient)
	if err != nil {
		return nil, err
	}
	details.InitialWeight = initial

	if initial != nil && patient.CurrentWeight != nil && patient.GoalWeight != nil {
		details.GoalProgress = domain.GoalProgress(*initial, *patient.CurrentWeight, *patient.GoalWeight)
	}
	return details, nil
}

// GetDashboard assembles the patient home screen. now is injected so
// the week math is testable.
func (s *progressService) GetDashboard(ctx context.Context, patientID primitive.ObjectID, now time.Time) (*PatientDashboard, error) {
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	dash := &PatientDashboard{
		CurrentWeight: patient.CurrentWeight,
		GoalWeight:    patient.GoalWeight,
		Trend:         domain.TrendStable,
		Tip:           dailyTips[now.YearDay()%len(dailyTips)],
	}

	// Today's meal completion
	rows, err := s.trackingRepo.GetTrackingByDate(ctx, patientID, now)
	if err != nil {
		return nil, err
	}
	dash.TodayTotal = len(rows)
	for _, r := range rows {
		if r.Completed {
			dash.TodayCompleted++
		}
	}

	// Water
	water, err := s.waterRepo.Get(ctx, patientID, now)
	if err == nil {
		dash.Water = *water
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	} else {
		dash.Water = domain.WaterTracking{PatientID: patientID, Date: now.UTC().Truncate(24 * time.Hour), GoalML: 2000}
	}

	// This week's adherence compared to the previous week
	adherence, err := s.weeklyAdherence(ctx, patientID, now)
	if err != nil {
		return nil, err
	}
	dash.WeeklyAdherence = adherence

	prevMonday := mondayOf(now).AddDate(0, 0, -7)
	prevSunday := prevMonday.AddDate(0, 0, 6)
	previous, err := s.adherenceBetween(ctx, patientID, prevMonday, prevSunday)
	if err != nil {
		return nil, err
	}
	dash.PreviousAdherence = previous

	// Trend and goal progress
	weights, err := s.recentWeights(ctx, patientID)
	if err != nil {
		return nil, err
	}
	dash.Trend = domain.CalculateTrend(weights)

	initial, err := s.initialWeight(ctx, patient)
	if err != nil {
		return nil, err
	}
	if initial != nil && patient.CurrentWeight != nil && patient.GoalWeight != nil {
		dash.GoalProgress = domain.GoalProgress(*initial, *patient.CurrentWeight, *patient.GoalWeight)
	}

	if _, err := s.assignmentRepo.GetActiveByPatientID(ctx, patientID); err == nil {
		dash.HasActivePlan = true
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Next upcoming appointment
	appts, err := s.appointmentRepo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	today := now.Format("2006-01-02")
	for i := range appts {
		a := appts[i]
		if a.Blocking() && a.Date >= today {
			dash.NextAppointment = &a
			break
		}
	}

	return dash, nil
}

func (s *progressService) CreateAchievement(ctx context.Context, a *domain.Achievement) (*domain.Achievement, error) {
	if a.Title == "" {
		return nil, errors.New("achievement title cannot be empty")
	}
	id, err := s.progressRepo.CreateAchievement(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (s *progressService) GetAchievements(ctx context.Context, patientID primitive.ObjectID) ([]domain.Achievement, error) {
	return s.progressRepo.GetAchievements(ctx, patientID)
}

func (s *progressService) DeleteAchievement(ctx context.Context, id primitive.ObjectID) error {
	if err := s.progressRepo.DeleteAchievement(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMetricNotFound
		}
		return err
	}
	return nil
}

func (s *progressService) CreateNote(ctx context.Context, note *domain.NutritionistNote) (*domain.NutritionistNote, error) {
	if note.Content == "" {
		return nil, errors.New("note content cannot be empty")
	}
	id, err := s.progressRepo.CreateNote(ctx, note)
	if err != nil {
		return nil, err
	}
	note.ID = id
	return note, nil
}

func (s *progressService) GetNotes(ctx context.Context, patientID primitive.ObjectID) ([]domain.NutritionistNote, error) {
	return s.progressRepo.GetNotes(ctx, patientID)
}

func (s *progressService) DeleteNote(ctx context.Context, id primitive.ObjectID) error {
	if err := s.progressRepo.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMetricNotFound
		}
		return err
	}
	return nil
}

// --- helpers ---

// initialWeight is the earliest recorded metric weight, falling back to
// the profile's current weight when no metric exists yet.
func (s *progressService) initialWeight(ctx context.Context, patient *domain.User) (*float64, error) {
	earliest, err := s.progressRepo.GetEarliestMetric(ctx, patient.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return patient.CurrentWeight, nil
		}
		return nil, err
	}
	if earliest.Weight != nil {
		return earliest.Weight, nil
	}
	return patient.CurrentWeight, nil
}

// recentWeights returns the patient's weight series ordered by date.
func (s *progressService) recentWeights(ctx context.Context, patientID primitive.ObjectID) ([]float64, error) {
	metrics, err := s.progressRepo.GetMetrics(ctx, patientID, 10)
	if err != nil {
		return nil, err
	}
	var weights []float64
	for _, m := range metrics {
		if m.Weight != nil {
			weights = append(weights, *m.Weight)
		}
	}
	return weights, nil
}

// weeklyAdherence measures completed vs tracked meals from Monday of
// the current week through now.
func (s *progressService) weeklyAdherence(ctx context.Context, patientID primitive.ObjectID, now time.Time) (int, error) {
	return s.adherenceBetween(ctx, patientID, mondayOf(now), now)
}

func (s *progressService) adherenceBetween(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) (int, error) {
	rows, err := s.trackingRepo.GetTrackingByRange(ctx, patientID, from, to)
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, r := range rows {
		if r.Completed {
			completed++
		}
	}
	return domain.WeeklyAdherence(completed, len(rows)), nil
}

// mondayOf truncates a time to the Monday of its week.
func mondayOf(t time.Time) time.Time {
	day := t.UTC().Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
