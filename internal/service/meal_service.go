package service

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrFoodItemNotFound = errors.New("food item not found")
	ErrTrackingNotFound = errors.New("meal tracking not found")
	ErrNotOwner         = errors.New("resource does not belong to this patient")
)

// Messages shown to patients when a date resolves to nothing.
const (
	msgNoActivePlan = "No tienes un plan activo asignado"
	msgNoMenuForDay = "No hay menú configurado para esta fecha"
)

// MealSlotView is one meal slot of a day with its tracking state.
type MealSlotView struct {
	Slot       string                 `json:"slot"`
	Label      string                 `json:"label"`
	Meal       *domain.MealDescriptor `json:"meal,omitempty"`
	TrackingID primitive.ObjectID     `json:"trackingId,omitempty"`
	Completed  bool                   `json:"completed"`
	Foods      []domain.MealFoodItem  `json:"foods,omitempty"`
}

// MacroAmount pairs what the patient consumed against the daily target
// from the active plan.
type MacroAmount struct {
	Consumed float64 `json:"consumed"`
	Target   float64 `json:"target"`
}

// DaySummary aggregates checked food items against the plan targets.
type DaySummary struct {
	Calories MacroAmount `json:"calories"`
	Protein  MacroAmount `json:"protein"`
	Carbs    MacroAmount `json:"carbs"`
	Fat      MacroAmount `json:"fat"`
}

// DayMealsView is the resolved view of a patient's day. Slots is empty
// and Message is set when the date has no assigned meals.
type DayMealsView struct {
	Date           time.Time      `json:"date"`
	DayOfWeek      string         `json:"dayOfWeek"`
	Slots          []MealSlotView `json:"slots"`
	CompletedCount int            `json:"completedCount"`
	TotalCalories  float64        `json:"totalCalories"`
	Summary        *DaySummary    `json:"summary,omitempty"`
	Message        string         `json:"message,omitempty"`
}

type MealService interface {
	GetDayMeals(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error)
	GetDetailedMeals(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error)
	InitializeDay(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error)

	ToggleFood(ctx context.Context, patientID, foodItemID primitive.ObjectID) (*domain.MealTracking, error)
	AddFood(ctx context.Context, patientID primitive.ObjectID, date time.Time, mealType string, food domain.MealFoodItem) (*domain.MealFoodItem, error)
	RemoveFood(ctx context.Context, patientID, foodItemID primitive.ObjectID) error

	GetWater(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.WaterTracking, error)
	SetWater(ctx context.Context, patientID primitive.ObjectID, date time.Time, glasses, goalML int) (*domain.WaterTracking, error)

	SearchFoods(ctx context.Context, patientID primitive.ObjectID, query string) ([]domain.CustomFood, error)
	CreateCustomFood(ctx context.Context, food *domain.CustomFood) (*domain.CustomFood, error)
}

// mealService implements the MealService interface.
type mealService struct {
	dailyMealRepo  repository.DailyMealRepository
	trackingRepo   repository.TrackingRepository
	waterRepo      repository.WaterRepository
	customFoodRepo repository.CustomFoodRepository
	assignmentRepo repository.AssignmentRepository
	planRepo       repository.MealPlanRepository
}

// NewMealService creates a new instance of mealService.
func NewMealService(
	dailyMealRepo repository.DailyMealRepository,
	trackingRepo repository.TrackingRepository,
	waterRepo repository.WaterRepository,
	customFoodRepo repository.CustomFoodRepository,
	assignmentRepo repository.AssignmentRepository,
	planRepo repository.MealPlanRepository,
) MealService {
	return &mealService{
		dailyMealRepo:  dailyMealRepo,
		trackingRepo:   trackingRepo,
		waterRepo:      waterRepo,
		customFoodRepo: customFoodRepo,
		assignmentRepo: assignmentRepo,
		planRepo:       planRepo,
	}
}

// GetDayMeals resolves the patient's assigned meals for one date,
// without touching tracking rows. A date with nothing assigned yields
// an empty slot list and an explanatory message, not an error.
func (s *mealService) GetDayMeals(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error) {
	day, err := s.dailyMealRepo.GetByPatientAndDate(ctx, patientID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.emptyDayView(ctx, patientID, date)
		}
		return nil, err
	}

	view := &DayMealsView{Date: day.Date, DayOfWeek: day.DayOfWeek}
	for _, slot := range domain.MealSlots {
		sv := MealSlotView{Slot: slot, Label: domain.SlotLabels[slot]}
		if meal := s.resolveSlotMeal(day, slot); meal != nil {
			sv.Meal = meal
			view.TotalCalories += meal.Calories
		}
		if t, err := s.trackingRepo.GetTracking(ctx, patientID, date, slot); err == nil {
			sv.TrackingID = t.ID
			sv.Completed = t.Completed
			if t.Completed {
				view.CompletedCount++
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		view.Slots = append(view.Slots, sv)
	}
	return view, nil
}

// emptyDayView builds the response for a date with no daily row. The
// message distinguishes a patient with no active plan from a plan
// whose menu does not cover the date.
func (s *mealService) emptyDayView(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error) {
	view := &DayMealsView{
		Date:      date.UTC().Truncate(24 * time.Hour),
		DayOfWeek: domain.WeekDayFor(date).Name,
		Slots:     []MealSlotView{},
		Message:   msgNoMenuForDay,
	}
	if _, err := s.assignmentRepo.GetActiveByPatientID(ctx, patientID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		view.Message = msgNoActivePlan
	}
	return view, nil
}

// GetDetailedMeals returns the day view with food items, initializing
// tracking rows on first read. Initialization is idempotent so repeated
// calls never duplicate rows.
func (s *mealService) GetDetailedMeals(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error) {
	if err := s.initializeDay(ctx, patientID, date); err != nil {
		return nil, err
	}
	return s.detailedView(ctx, patientID, date)
}

// InitializeDay forces tracking rows into existence for a date and
// returns the detailed view.
func (s *mealService) InitializeDay(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error) {
	if err := s.initializeDay(ctx, patientID, date); err != nil {
		return nil, err
	}
	return s.detailedView(ctx, patientID, date)
}

// initializeDay creates missing tracking rows and seeds food items for
// each canonical slot. The food list comes from the assigned recipe
// when one exists, otherwise the default list for the slot.
func (s *mealService) initializeDay(ctx context.Context, patientID primitive.ObjectID, date time.Time) error {
	day, err := s.dailyMealRepo.GetByPatientAndDate(ctx, patientID, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		// No assignment row; still seed the default slots so the
		// patient can track free-form.
		day = nil
	}

	for _, slot := range domain.MealSlots {
		_, err := s.trackingRepo.GetTracking(ctx, patientID, date, slot)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		var meal *domain.MealDescriptor
		if day != nil {
			meal = s.resolveSlotMeal(day, slot)
		}

		mealName := domain.SlotLabels[slot]
		if meal != nil && meal.Name != "" {
			mealName = meal.Name
		}

		tracking := &domain.MealTracking{
			PatientID: patientID,
			Date:      date.UTC().Truncate(24 * time.Hour),
			MealType:  slot,
			MealName:  mealName,
		}
		trackingID, err := s.trackingRepo.CreateTracking(ctx, tracking)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue // concurrent init won the race
			}
			return err
		}

		// Seed food items
		if meal != nil && meal.Name != "" {
			item := &domain.MealFoodItem{
				TrackingID: trackingID,
				Name:       meal.Name,
				Quantity:   "1 porción",
				Calories:   meal.Calories,
				Protein:    meal.Protein,
				Carbs:      meal.Carbs,
				Fat:        meal.Fat,
				OrderIndex: 0,
			}
			if _, err := s.trackingRepo.CreateFoodItem(ctx, item); err != nil {
				return err
			}
			continue
		}
		for i, f := range domain.DefaultFoodsForSlot(slot) {
			item := &domain.MealFoodItem{
				TrackingID: trackingID,
				Name:       f.Name,
				Quantity:   f.Quantity,
				Calories:   f.Calories,
				Protein:    f.Protein,
				Carbs:      f.Carbs,
				Fat:        f.Fat,
				OrderIndex: i,
			}
			if _, err := s.trackingRepo.CreateFoodItem(ctx, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// detailedView assembles the day view with food items included.
func (s *mealService) detailedView(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*DayMealsView, error) {
	day, err := s.dailyMealRepo.GetByPatientAndDate(ctx, patientID, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	view := &DayMealsView{
		Date:      date.UTC().Truncate(24 * time.Hour),
		DayOfWeek: domain.WeekDayFor(date).Name,
	}
	if day != nil {
		view.Date = day.Date
		view.DayOfWeek = day.DayOfWeek
	}

	summary := &DaySummary{}
	for _, slot := range domain.MealSlots {
		sv := MealSlotView{Slot: slot, Label: domain.SlotLabels[slot]}
		if day != nil {
			if meal := s.resolveSlotMeal(day, slot); meal != nil {
				sv.Meal = meal
			}
		}

		t, err := s.trackingRepo.GetTracking(ctx, patientID, date, slot)
		if err == nil {
			sv.TrackingID = t.ID
			sv.Completed = t.Completed
			if t.Completed {
				view.CompletedCount++
			}
			foods, err := s.trackingRepo.GetFoodItems(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			sv.Foods = foods
			for _, f := range foods {
				view.TotalCalories += f.Calories
				if f.Checked {
					summary.Calories.Consumed += f.Calories
					summary.Protein.Consumed += f.Protein
					summary.Carbs.Consumed += f.Carbs
					summary.Fat.Consumed += f.Fat
				}
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		view.Slots = append(view.Slots, sv)
	}

	if plan, err := s.activePlan(ctx, patientID); err != nil {
		return nil, err
	} else if plan != nil {
		summary.Calories.Target = float64(plan.Calories)
		summary.Protein.Target = float64(plan.ProteinTarget)
		summary.Carbs.Target = float64(plan.CarbsTarget)
		summary.Fat.Target = float64(plan.FatTarget)
	}
	view.Summary = summary
	return view, nil
}

// activePlan loads the plan behind the patient's active assignment,
// nil when the patient has none.
func (s *mealService) activePlan(ctx context.Context, patientID primitive.ObjectID) (*domain.MealPlan, error) {
	assignment, err := s.assignmentRepo.GetActiveByPatientID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	plan, err := s.planRepo.GetByID(ctx, assignment.MealPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return plan, nil
}

// resolveSlotMeal reads a slot of a daily row into a descriptor,
// tolerating both document and JSON-string storage.
func (s *mealService) resolveSlotMeal(day *domain.DailyMealAssignment, slot string) *domain.MealDescriptor {
	raw := day.Slot(slot)
	if raw == nil {
		return nil
	}
	meal := domain.NormalizeDay(raw)
	if len(meal) == 0 {
		if name, ok := raw.(string); ok && name != "" {
			// Bare string that is not JSON: treat as a recipe name.
			return &domain.MealDescriptor{Name: name}
		}
		return nil
	}
	d := domain.DescribeMeal(meal)
	return &d
}

// ToggleFood flips one food item's checked state and re-derives the
// parent meal's completion: completed only while every item is checked.
func (s *mealService) ToggleFood(ctx context.Context, patientID, foodItemID primitive.ObjectID) (*domain.MealTracking, error) {
	item, err := s.trackingRepo.GetFoodItem(ctx, foodItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFoodItemNotFound
		}
		return nil, err
	}

	tracking, err := s.trackingRepo.GetTrackingByID(ctx, item.TrackingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrackingNotFound
		}
		return nil, err
	}
	if tracking.PatientID != patientID {
		return nil, ErrNotOwner
	}

	item.Checked = !item.Checked
	if err := s.trackingRepo.UpdateFoodItem(ctx, item); err != nil {
		return nil, err
	}

	return s.recomputeCompletion(ctx, tracking)
}

// AddFood appends a food item to a meal, creating the tracking row on
// demand when the meal was never initialized.
func (s *mealService) AddFood(ctx context.Context, patientID primitive.ObjectID, date time.Time, mealType string, food domain.MealFoodItem) (*domain.MealFoodItem, error) {
	if food.Name == "" {
		return nil, errors.New("food name cannot be empty")
	}

	tracking, err := s.trackingRepo.GetTracking(ctx, patientID, date, mealType)
	if errors.Is(err, repository.ErrNotFound) {
		tracking = &domain.MealTracking{
			PatientID: patientID,
			Date:      date.UTC().Truncate(24 * time.Hour),
			MealType:  mealType,
			MealName:  domain.SlotLabels[mealType],
		}
		id, cerr := s.trackingRepo.CreateTracking(ctx, tracking)
		if cerr != nil {
			return nil, cerr
		}
		tracking.ID = id
	} else if err != nil {
		return nil, err
	}

	items, err := s.trackingRepo.GetFoodItems(ctx, tracking.ID)
	if err != nil {
		return nil, err
	}
	next := 0
	for _, it := range items {
		if it.OrderIndex >= next {
			next = it.OrderIndex + 1
		}
	}

	item := &domain.MealFoodItem{
		TrackingID: tracking.ID,
		Name:       food.Name,
		Quantity:   food.Quantity,
		Calories:   food.Calories,
		Protein:    food.Protein,
		Carbs:      food.Carbs,
		Fat:        food.Fat,
		OrderIndex: next,
	}
	id, err := s.trackingRepo.CreateFoodItem(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id

	// Adding an unchecked item can only clear completion.
	if _, err := s.recomputeCompletion(ctx, tracking); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveFood deletes a food item and re-derives the meal's completion.
func (s *mealService) RemoveFood(ctx context.Context, patientID, foodItemID primitive.ObjectID) error {
	item, err := s.trackingRepo.GetFoodItem(ctx, foodItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFoodItemNotFound
		}
		return err
	}

	tracking, err := s.trackingRepo.GetTrackingByID(ctx, item.TrackingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrackingNotFound
		}
		return err
	}
	if tracking.PatientID != patientID {
		return ErrNotOwner
	}

	if err := s.trackingRepo.DeleteFoodItem(ctx, foodItemID); err != nil {
		return err
	}
	_, err = s.recomputeCompletion(ctx, tracking)
	return err
}

// recomputeCompletion derives the meal's completed flag from its items.
func (s *mealService) recomputeCompletion(ctx context.Context, tracking *domain.MealTracking) (*domain.MealTracking, error) {
	items, err := s.trackingRepo.GetFoodItems(ctx, tracking.ID)
	if err != nil {
		return nil, err
	}

	completed := len(items) > 0
	for _, it := range items {
		if !it.Checked {
			completed = false
			break
		}
	}

	if completed != tracking.Completed {
		tracking.Completed = completed
		if completed {
			now := time.Now().UTC()
			tracking.CompletedAt = &now
		} else {
			tracking.CompletedAt = nil
		}
		if err := s.trackingRepo.UpdateTracking(ctx, tracking); err != nil {
			return nil, err
		}
	}
	return tracking, nil
}

// GetWater returns the day's water row, a zero row when none exists.
func (s *mealService) GetWater(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.WaterTracking, error) {
	w, err := s.waterRepo.Get(ctx, patientID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.WaterTracking{
				PatientID: patientID,
				Date:      date.UTC().Truncate(24 * time.Hour),
				GoalML:    2000,
			}, nil
		}
		return nil, err
	}
	return w, nil
}

// SetWater stores the day's glasses count.
func (s *mealService) SetWater(ctx context.Context, patientID primitive.ObjectID, date time.Time, glasses, goalML int) (*domain.WaterTracking, error) {
	if glasses < 0 {
		glasses = 0
	}
	if goalML <= 0 {
		goalML = 2000
	}

	w := &domain.WaterTracking{
		PatientID: patientID,
		Date:      date,
		Glasses:   glasses,
		GoalML:    goalML,
	}
	if err := s.waterRepo.Upsert(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// SearchFoods looks up the patient's custom food catalog.
func (s *mealService) SearchFoods(ctx context.Context, patientID primitive.ObjectID, query string) ([]domain.CustomFood, error) {
	return s.customFoodRepo.Search(ctx, patientID, query)
}

// CreateCustomFood adds an entry to the patient's food catalog.
func (s *mealService) CreateCustomFood(ctx context.Context, food *domain.CustomFood) (*domain.CustomFood, error) {
	if food.Name == "" {
		return nil, errors.New("food name cannot be empty")
	}
	id, err := s.customFoodRepo.Create(ctx, food)
	if err != nil {
		return nil, err
	}
	food.ID = id
	return food, nil
}
