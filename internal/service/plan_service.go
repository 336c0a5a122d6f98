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
	ErrPlanNotFound       = errors.New("meal plan not found")
	ErrMenuNotFound       = errors.New("weekly menu not found")
	ErrTemplateNotFound   = errors.New("menu template not found")
	ErrAssignmentNotFound = errors.New("plan assignment not found")
	ErrNoActivePlan       = errors.New("patient has no active plan assignment")
	ErrPlanInUse          = errors.New("meal plan has active assignments")
	ErrMenuInUse          = errors.New("menu template has active assignments")
	ErrAlreadyAssigned    = errors.New("patient already has an active assignment")
)

// menuChangeHorizonDays is how far ahead daily meals are regenerated
// when a patient's menu is switched mid-plan.
const menuChangeHorizonDays = 28

// MenuTemplateStats summarizes usage of one template.
type MenuTemplateStats struct {
	Template          domain.MenuTemplate `json:"template"`
	ActiveAssignments int64               `json:"activeAssignments"`
	DaysFilled        int                 `json:"daysFilled"`
}

type PlanService interface {
	// Meal plans
	CreatePlan(ctx context.Context, plan *domain.MealPlan) (*domain.MealPlan, error)
	GetPlans(ctx context.Context) ([]domain.MealPlan, error)
	GetPlanByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	UpdatePlan(ctx context.Context, plan *domain.MealPlan) error
	DeletePlan(ctx context.Context, id primitive.ObjectID) error

	// Plan-owned weekly menus
	CreateWeeklyMenu(ctx context.Context, menu *domain.WeeklyMenu) (*domain.WeeklyMenu, error)
	GetWeeklyMenus(ctx context.Context, planID primitive.ObjectID) ([]domain.WeeklyMenu, error)
	UpdateWeeklyMenu(ctx context.Context, menu *domain.WeeklyMenu) error
	DeleteWeeklyMenu(ctx context.Context, id primitive.ObjectID) error

	// Menu template library
	CreateTemplate(ctx context.Context, tpl *domain.MenuTemplate) (*domain.MenuTemplate, error)
	GetTemplates(ctx context.Context, category string) ([]domain.MenuTemplate, error)
	GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*domain.MenuTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *domain.MenuTemplate) error
	DeleteTemplate(ctx context.Context, id primitive.ObjectID) error
	DuplicateTemplate(ctx context.Context, id primitive.ObjectID, newName string) (*domain.MenuTemplate, error)
	GetTemplateStats(ctx context.Context, id primitive.ObjectID) (*MenuTemplateStats, error)
	GetTemplateCategories(ctx context.Context) ([]string, error)

	// Assignments
	AssignPlan(ctx context.Context, patientID, planID, menuID primitive.ObjectID, startDate time.Time, notes string) (*domain.PlanAssignment, error)
	ChangeWeeklyMenu(ctx context.Context, patientID, newMenuID primitive.ObjectID, cutoff *time.Time) (*domain.PlanAssignment, error)
	GetActiveAssignment(ctx context.Context, patientID primitive.ObjectID) (*domain.PlanAssignment, error)
	GetAssignmentHistory(ctx context.Context, patientID primitive.ObjectID) ([]domain.PlanAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID primitive.ObjectID, status domain.AssignmentStatus) error
	DeleteAssignment(ctx context.Context, assignmentID primitive.ObjectID) error
}

// planService implements the PlanService interface.
type planService struct {
	planRepo         repository.MealPlanRepository
	weeklyMenuRepo   repository.WeeklyMenuRepository
	templateRepo     repository.MenuTemplateRepository
	assignmentRepo   repository.AssignmentRepository
	dailyMealRepo    repository.DailyMealRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	tx               repository.TxRunner
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.MealPlanRepository,
	weeklyMenuRepo repository.WeeklyMenuRepository,
	templateRepo repository.MenuTemplateRepository,
	assignmentRepo repository.AssignmentRepository,
	dailyMealRepo repository.DailyMealRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	tx repository.TxRunner,
) PlanService {
	return &planService{
		planRepo:         planRepo,
		weeklyMenuRepo:   weeklyMenuRepo,
		templateRepo:     templateRepo,
		assignmentRepo:   assignmentRepo,
		dailyMealRepo:    dailyMealRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		tx:               tx,
	}
}

// --- Meal plans ---

func (s *planService) CreatePlan(ctx context.Context, plan *domain.MealPlan) (*domain.MealPlan, error) {
	if plan.Name == "" {
		return nil, errors.New("plan name cannot be empty")
	}
	if plan.MealsPerDay <= 0 {
		plan.MealsPerDay = len(domain.MealSlots)
	}
	plan.IsActive = true

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

func (s *planService) GetPlans(ctx context.Context) ([]domain.MealPlan, error) {
	return s.planRepo.GetAll(ctx)
}

func (s *planService) GetPlanByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) UpdatePlan(ctx context.Context, plan *domain.MealPlan) error {
	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

// DeletePlan removes a plan and its weekly menus. Plans with active
// assignments cannot be deleted.
func (s *planService) DeletePlan(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetPlanByID(ctx, id); err != nil {
		return err
	}

	active, err := s.assignmentRepo.CountActiveByPlanID(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrPlanInUse
	}

	if err := s.weeklyMenuRepo.DeleteByPlanID(ctx, id); err != nil {
		return err
	}
	return s.planRepo.Delete(ctx, id)
}

// --- Plan-owned weekly menus ---

func (s *planService) CreateWeeklyMenu(ctx context.Context, menu *domain.WeeklyMenu) (*domain.WeeklyMenu, error) {
	if _, err := s.GetPlanByID(ctx, menu.MealPlanID); err != nil {
		return nil, err
	}
	if menu.WeekNumber <= 0 {
		menu.WeekNumber = 1
	}

	id, err := s.weeklyMenuRepo.Create(ctx, menu)
	if err != nil {
		return nil, err
	}
	menu.ID = id
	return menu, nil
}

func (s *planService) GetWeeklyMenus(ctx context.Context, planID primitive.ObjectID) ([]domain.WeeklyMenu, error) {
	if _, err := s.GetPlanByID(ctx, planID); err != nil {
		return nil, err
	}
	return s.weeklyMenuRepo.GetByPlanID(ctx, planID)
}

func (s *planService) UpdateWeeklyMenu(ctx context.Context, menu *domain.WeeklyMenu) error {
	if err := s.weeklyMenuRepo.Update(ctx, menu); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMenuNotFound
		}
		return err
	}
	return nil
}

func (s *planService) DeleteWeeklyMenu(ctx context.Context, id primitive.ObjectID) error {
	if err := s.weeklyMenuRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMenuNotFound
		}
		return err
	}
	return nil
}

// --- Menu template library ---

func (s *planService) CreateTemplate(ctx context.Context, tpl *domain.MenuTemplate) (*domain.MenuTemplate, error) {
	if tpl.Name == "" {
		return nil, errors.New("template name cannot be empty")
	}
	tpl.IsActive = true

	id, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

func (s *planService) GetTemplates(ctx context.Context, category string) ([]domain.MenuTemplate, error) {
	return s.templateRepo.GetAll(ctx, category)
}

func (s *planService) GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*domain.MenuTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (s *planService) UpdateTemplate(ctx context.Context, tpl *domain.MenuTemplate) error {
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// DeleteTemplate removes a menu template unless a patient is actively
// assigned to it.
func (s *planService) DeleteTemplate(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetTemplateByID(ctx, id); err != nil {
		return err
	}

	active, err := s.assignmentRepo.CountActiveByMenuID(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrMenuInUse
	}

	return s.templateRepo.Delete(ctx, id)
}

// DuplicateTemplate copies an existing template under a new name.
func (s *planService) DuplicateTemplate(ctx context.Context, id primitive.ObjectID, newName string) (*domain.MenuTemplate, error) {
	src, err := s.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	copyTpl := *src
	copyTpl.ID = primitive.NilObjectID
	if newName != "" {
		copyTpl.Name = newName
	} else {
		copyTpl.Name = src.Name + " (copia)"
	}

	newID, err := s.templateRepo.Create(ctx, &copyTpl)
	if err != nil {
		return nil, err
	}
	copyTpl.ID = newID
	return &copyTpl, nil
}

// GetTemplateStats reports usage counters for one template.
func (s *planService) GetTemplateStats(ctx context.Context, id primitive.ObjectID) (*MenuTemplateStats, error) {
	tpl, err := s.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := s.assignmentRepo.CountActiveByMenuID(ctx, id)
	if err != nil {
		return nil, err
	}

	filled := 0
	for _, wd := range domain.WeekDays {
		day := domain.NormalizeDay(tpl.Day(wd.Key))
		if len(domain.DaySlots(day)) > 0 {
			filled++
		}
	}

	return &MenuTemplateStats{
		Template:          *tpl,
		ActiveAssignments: active,
		DaysFilled:        filled,
	}, nil
}

func (s *planService) GetTemplateCategories(ctx context.Context) ([]string, error) {
	return s.templateRepo.Categories(ctx)
}

// --- Assignments ---

// AssignPlan links a patient to a plan and expands the chosen menu into
// seven daily meal rows starting at startDate. Any previously active
// assignment is paused first. All writes happen in one transaction so a
// failed expansion leaves the previous assignment untouched.
func (s *planService) AssignPlan(ctx context.Context, patientID, planID, menuID primitive.ObjectID, startDate time.Time, notes string) (*domain.PlanAssignment, error) {
	// 1. Validate all referenced entities exist
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if !patient.IsPatient() {
		return nil, ErrNotAPatient
	}
	plan, err := s.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	menu, err := s.GetTemplateByID(ctx, menuID)
	if err != nil {
		return nil, err
	}

	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}
	startDate = startDate.UTC().Truncate(24 * time.Hour)

	assignment := &domain.PlanAssignment{
		PatientID:      patientID,
		MealPlanID:     planID,
		MenuTemplateID: menuID,
		Status:         domain.AssignmentActive,
		AssignedDate:   time.Now().UTC(),
		StartDate:      startDate,
		CurrentWeek:    1,
		Notes:          notes,
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		// 2. Pause whatever plan was active before
		if _, err := s.assignmentRepo.PauseActiveByPatientID(txCtx, patientID); err != nil {
			return err
		}

		// 3. Create the new active assignment
		id, err := s.assignmentRepo.Create(txCtx, assignment)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyAssigned
			}
			return err
		}
		assignment.ID = id

		// 4. Expand the menu into daily rows for the first week
		days := s.expandMenu(menu, assignment, startDate, 7)
		return s.dailyMealRepo.CreateMany(txCtx, days)
	})
	if err != nil {
		return nil, err
	}

	if s.notificationRepo != nil {
		_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  patientID,
			Title:   "Nuevo plan asignado",
			Message: fmt.Sprintf("Se te asignó el plan %q con el menú %q.", plan.Name, menu.Name),
			Type:    "plan",
		})
	}

	return assignment, nil
}

// ChangeWeeklyMenu switches the patient's active assignment to a new
// menu. Rows from the cutoff date onward are dropped and regenerated;
// by default the cutoff is tomorrow so today's tracked meals survive.
func (s *planService) ChangeWeeklyMenu(ctx context.Context, patientID, newMenuID primitive.ObjectID, cutoff *time.Time) (*domain.PlanAssignment, error) {
	assignment, err := s.GetActiveAssignment(ctx, patientID)
	if err != nil {
		return nil, err
	}
	menu, err := s.GetTemplateByID(ctx, newMenuID)
	if err != nil {
		return nil, err
	}

	from := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if cutoff != nil {
		from = cutoff.UTC().Truncate(24 * time.Hour)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.dailyMealRepo.DeleteByPatientFromDate(txCtx, patientID, from); err != nil {
			return err
		}

		assignment.MenuTemplateID = newMenuID
		if err := s.assignmentRepo.Update(txCtx, assignment); err != nil {
			return err
		}

		days := s.expandMenu(menu, assignment, from, menuChangeHorizonDays)
		return s.dailyMealRepo.CreateMany(txCtx, days)
	})
	if err != nil {
		return nil, err
	}

	if s.notificationRepo != nil {
		_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
			UserID:  patientID,
			Title:   "Menú actualizado",
			Message: fmt.Sprintf("Tu menú semanal cambió a %q.", menu.Name),
			Type:    "plan",
		})
	}

	return assignment, nil
}

func (s *planService) GetActiveAssignment(ctx context.Context, patientID primitive.ObjectID) (*domain.PlanAssignment, error) {
	assignment, err := s.assignmentRepo.GetActiveByPatientID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return assignment, nil
}

func (s *planService) GetAssignmentHistory(ctx context.Context, patientID primitive.ObjectID) ([]domain.PlanAssignment, error) {
	return s.assignmentRepo.GetByPatientID(ctx, patientID)
}

func (s *planService) UpdateAssignmentStatus(ctx context.Context, assignmentID primitive.ObjectID, status domain.AssignmentStatus) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		// Reactivating must not leave two active assignments; the
		// unique index on (patientId, active) would reject the update.
		if status == domain.AssignmentActive && assignment.Status != domain.AssignmentActive {
			if _, err := s.assignmentRepo.PauseActiveByPatientID(txCtx, assignment.PatientID); err != nil {
				return err
			}
		}

		assignment.Status = status
		if status == domain.AssignmentCompleted {
			now := time.Now().UTC()
			assignment.EndDate = &now
		}
		if err := s.assignmentRepo.Update(txCtx, assignment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyAssigned
			}
			return err
		}
		return nil
	})
}

// DeleteAssignment removes an assignment and the daily meal rows that
// were expanded from it.
func (s *planService) DeleteAssignment(ctx context.Context, assignmentID primitive.ObjectID) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.dailyMealRepo.DeleteByAssignmentID(txCtx, assignment.ID); err != nil {
			return err
		}
		return s.assignmentRepo.Delete(txCtx, assignment.ID)
	})
}

// expandMenu materializes numDays daily rows from a menu template,
// resolving each calendar date against the template's weekday entry.
func (s *planService) expandMenu(menu *domain.MenuTemplate, assignment *domain.PlanAssignment, from time.Time, numDays int) []domain.DailyMealAssignment {
	days := make([]domain.DailyMealAssignment, 0, numDays)
	for i := 0; i < numDays; i++ {
		date := from.AddDate(0, 0, i)
		wd := domain.WeekDayFor(date)

		row := domain.DailyMealAssignment{
			PatientID:         assignment.PatientID,
			AssignmentID:      assignment.ID,
			Date:              date,
			DayOfWeek:         wd.Name,
			GeneratedFromMenu: menu.ID,
		}

		day := domain.NormalizeDay(menu.Day(wd.Key))
		for slot, meal := range domain.DaySlots(day) {
			row.SetSlot(slot, meal)
		}

		days = append(days, row)
	}
	return days
}
