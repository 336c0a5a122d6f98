package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nutrivida/clinic-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mealFixture struct {
	svc         MealService
	daily       *fakeDailyMealRepo
	tracking    *fakeTrackingRepo
	water       *fakeWaterRepo
	customFoods *fakeCustomFoodRepo
	assignments *fakeAssignmentRepo
	plans       *fakeMealPlanRepo
}

func newMealFixture() *mealFixture {
	f := &mealFixture{
		daily:       &fakeDailyMealRepo{},
		tracking:    &fakeTrackingRepo{},
		water:       &fakeWaterRepo{},
		customFoods: &fakeCustomFoodRepo{},
		assignments: &fakeAssignmentRepo{},
		plans:       newFakeMealPlanRepo(),
	}
	f.svc = NewMealService(f.daily, f.tracking, f.water, f.customFoods, f.assignments, f.plans)
	return f
}

func (f *mealFixture) seedDay(patientID primitive.ObjectID, date time.Time) {
	f.daily.rows = append(f.daily.rows, domain.DailyMealAssignment{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		Date:      date,
		DayOfWeek: domain.WeekDayFor(date).Name,
		Breakfast: map[string]any{"name": "Avena con leche", "calorias": 300, "proteina": 12, "carbohidratos": 40, "grasas": 6},
		Dinner:    `{"name":"Pescado a la plancha","calorias":200}`,
	})
}

// seedActivePlan gives the patient an active assignment backed by a
// plan with daily targets.
func (f *mealFixture) seedActivePlan(patientID primitive.ObjectID) *domain.MealPlan {
	plan := domain.MealPlan{
		ID:            primitive.NewObjectID(),
		Name:          "Plan control",
		Calories:      1800,
		ProteinTarget: 120,
		CarbsTarget:   180,
		FatTarget:     60,
	}
	f.plans.plans[plan.ID] = &plan
	f.assignments.assignments = append(f.assignments.assignments, domain.PlanAssignment{
		ID:         primitive.NewObjectID(),
		PatientID:  patientID,
		MealPlanID: plan.ID,
		Status:     domain.AssignmentActive,
	})
	return &plan
}

func TestInitializeDaySeedsTrackingAndFoods(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	f.seedDay(patientID, date)

	view, err := f.svc.InitializeDay(ctx, patientID, date)
	if err != nil {
		t.Fatalf("InitializeDay: %v", err)
	}
	if len(f.tracking.trackings) != len(domain.MealSlots) {
		t.Fatalf("expected %d tracking rows, got %d", len(domain.MealSlots), len(f.tracking.trackings))
	}

	// The assigned breakfast recipe seeds a single food item.
	breakfast, err := f.tracking.GetTracking(ctx, patientID, date, domain.SlotBreakfast)
	if err != nil {
		t.Fatalf("breakfast tracking missing: %v", err)
	}
	if breakfast.MealName != "Avena con leche" {
		t.Errorf("breakfast meal name = %q", breakfast.MealName)
	}
	foods, _ := f.tracking.GetFoodItems(ctx, breakfast.ID)
	if len(foods) != 1 || foods[0].Quantity != "1 porción" {
		t.Errorf("recipe slot should seed one portion item, got %v", foods)
	}
	if foods[0].Protein != 12 || foods[0].Carbs != 40 || foods[0].Fat != 6 {
		t.Errorf("recipe macros not carried onto the food item: %+v", foods[0])
	}

	// Slots without an assigned recipe fall back to the defaults.
	lunch, err := f.tracking.GetTracking(ctx, patientID, date, domain.SlotLunch)
	if err != nil {
		t.Fatalf("lunch tracking missing: %v", err)
	}
	lunchFoods, _ := f.tracking.GetFoodItems(ctx, lunch.ID)
	if len(lunchFoods) != len(domain.DefaultFoodsForSlot(domain.SlotLunch)) {
		t.Errorf("lunch should seed default foods, got %d items", len(lunchFoods))
	}

	if view.CompletedCount != 0 {
		t.Errorf("fresh day should have no completed meals")
	}

	// Re-initializing is idempotent.
	if _, err := f.svc.InitializeDay(ctx, patientID, date); err != nil {
		t.Fatalf("second InitializeDay: %v", err)
	}
	if len(f.tracking.trackings) != len(domain.MealSlots) {
		t.Errorf("re-init duplicated tracking rows: %d", len(f.tracking.trackings))
	}
}

func TestToggleFoodDerivesCompletion(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	f.seedDay(patientID, date)

	if _, err := f.svc.InitializeDay(ctx, patientID, date); err != nil {
		t.Fatalf("InitializeDay: %v", err)
	}
	breakfast, _ := f.tracking.GetTracking(ctx, patientID, date, domain.SlotBreakfast)
	foods, _ := f.tracking.GetFoodItems(ctx, breakfast.ID)
	if len(foods) != 1 {
		t.Fatalf("expected one breakfast food, got %d", len(foods))
	}

	// Checking the only item completes the meal.
	tracking, err := f.svc.ToggleFood(ctx, patientID, foods[0].ID)
	if err != nil {
		t.Fatalf("ToggleFood: %v", err)
	}
	if !tracking.Completed || tracking.CompletedAt == nil {
		t.Errorf("meal should be completed with a timestamp, got %+v", tracking)
	}

	// Unchecking it reverts completion.
	tracking, err = f.svc.ToggleFood(ctx, patientID, foods[0].ID)
	if err != nil {
		t.Fatalf("second ToggleFood: %v", err)
	}
	if tracking.Completed || tracking.CompletedAt != nil {
		t.Errorf("meal should no longer be completed, got %+v", tracking)
	}
}

func TestToggleFoodOwnership(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	f.seedDay(owner, date)
	if _, err := f.svc.InitializeDay(ctx, owner, date); err != nil {
		t.Fatalf("InitializeDay: %v", err)
	}
	breakfast, _ := f.tracking.GetTracking(ctx, owner, date, domain.SlotBreakfast)
	foods, _ := f.tracking.GetFoodItems(ctx, breakfast.ID)

	intruder := primitive.NewObjectID()
	if _, err := f.svc.ToggleFood(ctx, intruder, foods[0].ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestAddFoodAppendsAfterExistingItems(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	f.seedDay(patientID, date)
	if _, err := f.svc.InitializeDay(ctx, patientID, date); err != nil {
		t.Fatalf("InitializeDay: %v", err)
	}

	item, err := f.svc.AddFood(ctx, patientID, date, domain.SlotLunch, domain.MealFoodItem{
		Name:     "Aguacate",
		Quantity: "1/2 pieza",
		Calories: 120,
		Fat:      11,
	})
	if err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if item.Fat != 11 {
		t.Errorf("added food lost its macros: %+v", item)
	}

	lunch, _ := f.tracking.GetTracking(ctx, patientID, date, domain.SlotLunch)
	foods, _ := f.tracking.GetFoodItems(ctx, lunch.ID)
	last := foods[len(foods)-1]
	if last.ID != item.ID {
		t.Errorf("new food should sort last by order index")
	}
	if last.OrderIndex != len(foods)-1 {
		t.Errorf("order index = %d, want %d", last.OrderIndex, len(foods)-1)
	}

	if err := f.svc.RemoveFood(ctx, patientID, item.ID); err != nil {
		t.Fatalf("RemoveFood: %v", err)
	}
	if err := f.svc.RemoveFood(ctx, patientID, item.ID); !errors.Is(err, ErrFoodItemNotFound) {
		t.Fatalf("expected ErrFoodItemNotFound on second remove, got %v", err)
	}
}

func TestAddFoodCreatesTrackingOnDemand(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	// No assignment and no prior initialization for the date.
	if _, err := f.svc.AddFood(ctx, patientID, date, domain.SlotDinner, domain.MealFoodItem{
		Name:     "Sopa",
		Quantity: "1 plato",
		Calories: 150,
	}); err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if _, err := f.tracking.GetTracking(ctx, patientID, date, domain.SlotDinner); err != nil {
		t.Fatalf("tracking row not created on demand: %v", err)
	}
}

func TestWaterDefaultsAndUpsert(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	water, err := f.svc.GetWater(ctx, patientID, date)
	if err != nil {
		t.Fatalf("GetWater: %v", err)
	}
	if water.Glasses != 0 || water.GoalML != 2000 {
		t.Errorf("default water = %+v, want 0 glasses and 2000ml goal", water)
	}

	if _, err := f.svc.SetWater(ctx, patientID, date, 5, 0); err != nil {
		t.Fatalf("SetWater: %v", err)
	}
	water, _ = f.svc.GetWater(ctx, patientID, date)
	if water.Glasses != 5 {
		t.Errorf("glasses = %d, want 5", water.Glasses)
	}

	// Same-day set overwrites rather than duplicating.
	if _, err := f.svc.SetWater(ctx, patientID, date, 7, 2500); err != nil {
		t.Fatalf("second SetWater: %v", err)
	}
	water, _ = f.svc.GetWater(ctx, patientID, date)
	if water.Glasses != 7 || water.GoalML != 2500 {
		t.Errorf("water after overwrite = %+v", water)
	}
}

func TestGetDayMealsWithoutMenuReturnsEmptyList(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	// No active plan at all.
	view, err := f.svc.GetDayMeals(ctx, patientID, date)
	if err != nil {
		t.Fatalf("GetDayMeals: %v", err)
	}
	if len(view.Slots) != 0 {
		t.Errorf("expected no slots, got %d", len(view.Slots))
	}
	if view.Message != msgNoActivePlan {
		t.Errorf("message = %q, want %q", view.Message, msgNoActivePlan)
	}
	if view.DayOfWeek == "" {
		t.Errorf("empty view should still carry the day of week")
	}

	// Active plan whose menu does not cover the date.
	f.seedActivePlan(patientID)
	view, err = f.svc.GetDayMeals(ctx, patientID, date)
	if err != nil {
		t.Fatalf("GetDayMeals with plan: %v", err)
	}
	if len(view.Slots) != 0 {
		t.Errorf("expected no slots, got %d", len(view.Slots))
	}
	if view.Message != msgNoMenuForDay {
		t.Errorf("message = %q, want %q", view.Message, msgNoMenuForDay)
	}
}

func TestDetailedMealsSummaryTracksCheckedFoods(t *testing.T) {
	f := newMealFixture()
	ctx := context.Background()
	patientID := primitive.NewObjectID()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	plan := f.seedActivePlan(patientID)
	f.seedDay(patientID, date)

	view, err := f.svc.GetDetailedMeals(ctx, patientID, date)
	if err != nil {
		t.Fatalf("GetDetailedMeals: %v", err)
	}
	if view.Summary == nil {
		t.Fatal("detailed view should carry a summary")
	}
	if view.Summary.Calories.Target != float64(plan.Calories) ||
		view.Summary.Protein.Target != float64(plan.ProteinTarget) {
		t.Errorf("summary targets = %+v, want plan targets", view.Summary)
	}
	if view.Summary.Calories.Consumed != 0 {
		t.Errorf("nothing checked yet, consumed = %v", view.Summary.Calories.Consumed)
	}

	// Checking the breakfast item moves its macros into consumed.
	breakfast, _ := f.tracking.GetTracking(ctx, patientID, date, domain.SlotBreakfast)
	foods, _ := f.tracking.GetFoodItems(ctx, breakfast.ID)
	if _, err := f.svc.ToggleFood(ctx, patientID, foods[0].ID); err != nil {
		t.Fatalf("ToggleFood: %v", err)
	}

	view, err = f.svc.GetDetailedMeals(ctx, patientID, date)
	if err != nil {
		t.Fatalf("second GetDetailedMeals: %v", err)
	}
	if view.Summary.Calories.Consumed != 300 || view.Summary.Protein.Consumed != 12 ||
		view.Summary.Carbs.Consumed != 40 || view.Summary.Fat.Consumed != 6 {
		t.Errorf("consumed summary = %+v, want the checked breakfast macros", view.Summary)
	}
}
