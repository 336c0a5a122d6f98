package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nutrivida/clinic-app/internal/domain"
)

func newPlanFixture(t *testing.T) (PlanService, *fakeUserRepo, *fakeAssignmentRepo, *fakeDailyMealRepo, *fakeTemplateRepo, *fakeMealPlanRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	planRepo := newFakeMealPlanRepo()
	weeklyMenuRepo := &fakeWeeklyMenuRepo{}
	templateRepo := newFakeTemplateRepo()
	assignmentRepo := &fakeAssignmentRepo{}
	dailyMealRepo := &fakeDailyMealRepo{}
	notificationRepo := &fakeNotificationRepo{}

	svc := NewPlanService(planRepo, weeklyMenuRepo, templateRepo, assignmentRepo, dailyMealRepo, userRepo, notificationRepo, fakeTxRunner{})
	return svc, userRepo, assignmentRepo, dailyMealRepo, templateRepo, planRepo
}

func seedMenuTemplate(t *testing.T, templates *fakeTemplateRepo) *domain.MenuTemplate {
	t.Helper()
	tpl := &domain.MenuTemplate{
		Name:     "Menú mediterráneo",
		Category: "perdida_peso",
		IsActive: true,
		Days: map[string]any{
			"monday": map[string]any{
				"meals": []any{
					map[string]any{"type": "desayuno", "name": "Avena con fruta", "calorias": 300},
					map[string]any{"type": "cena", "name": "Pescado al horno", "calorias": 400},
				},
			},
			"wednesday": map[string]any{
				"desayuno": map[string]any{"name": "Tostadas integrales", "calorias": 250},
			},
		},
	}
	id, err := templates.Create(context.Background(), tpl)
	if err != nil {
		t.Fatalf("seed template: %v", err)
	}
	tpl.ID = id
	return tpl
}

func TestAssignPlanExpandsSevenDays(t *testing.T) {
	svc, userRepo, _, dailyMealRepo, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Ana", Email: "ana@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan 1500", Calories: 1500, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	// 2024-06-03 is a Monday.
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	assignment, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, start, "primer plan")
	if err != nil {
		t.Fatalf("AssignPlan: %v", err)
	}
	if !assignment.IsActive() {
		t.Errorf("new assignment should be active, got %q", assignment.Status)
	}

	if len(dailyMealRepo.rows) != 7 {
		t.Fatalf("expected 7 daily rows, got %d", len(dailyMealRepo.rows))
	}
	if dailyMealRepo.rows[0].DayOfWeek != "Lunes" {
		t.Errorf("first row day = %q, want Lunes", dailyMealRepo.rows[0].DayOfWeek)
	}
	if dailyMealRepo.rows[6].DayOfWeek != "Domingo" {
		t.Errorf("last row day = %q, want Domingo", dailyMealRepo.rows[6].DayOfWeek)
	}

	// Monday's meals array partitions into breakfast and dinner.
	monday := dailyMealRepo.rows[0]
	if monday.Breakfast == nil || monday.Dinner == nil {
		t.Errorf("monday slots not filled: breakfast=%v dinner=%v", monday.Breakfast, monday.Dinner)
	}
	// Wednesday uses the old slot-keyed format.
	wednesday := dailyMealRepo.rows[2]
	if wednesday.Breakfast == nil {
		t.Errorf("wednesday breakfast not resolved from slot-keyed day")
	}
	// Tuesday has no menu entry and stays empty.
	tuesday := dailyMealRepo.rows[1]
	if tuesday.Breakfast != nil || tuesday.Dinner != nil {
		t.Errorf("tuesday should have empty slots")
	}
}

func TestAssignPlanPausesPreviousAssignment(t *testing.T) {
	svc, userRepo, assignmentRepo, _, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Luis", Email: "luis@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan A", Calories: 1800, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	first, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, start, "")
	if err != nil {
		t.Fatalf("first AssignPlan: %v", err)
	}
	second, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, start.AddDate(0, 0, 7), "")
	if err != nil {
		t.Fatalf("second AssignPlan: %v", err)
	}

	prev, err := assignmentRepo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("load first assignment: %v", err)
	}
	if prev.Status != domain.AssignmentPaused {
		t.Errorf("previous assignment status = %q, want paused", prev.Status)
	}
	active, err := svc.GetActiveAssignment(ctx, patientID)
	if err != nil {
		t.Fatalf("GetActiveAssignment: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active assignment is not the newest one")
	}
}

func TestAssignPlanRejectsNonPatient(t *testing.T) {
	svc, userRepo, _, _, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	adminID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Marta", Email: "marta@example.com",
		Role: domain.RoleAdmin, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan", Calories: 1500, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	_, err := svc.AssignPlan(ctx, adminID, planID, tpl.ID, time.Now(), "")
	if !errors.Is(err, ErrNotAPatient) {
		t.Fatalf("expected ErrNotAPatient, got %v", err)
	}
}

func TestChangeWeeklyMenuRegeneratesFromCutoff(t *testing.T) {
	svc, userRepo, _, dailyMealRepo, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Eva", Email: "eva@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan", Calories: 1600, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if _, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, start, ""); err != nil {
		t.Fatalf("AssignPlan: %v", err)
	}

	newTpl := &domain.MenuTemplate{Name: "Menú vegetariano", IsActive: true, Days: map[string]any{}}
	newTplID, _ := templateRepo.Create(ctx, newTpl)

	cutoff := start.AddDate(0, 0, 3)
	assignment, err := svc.ChangeWeeklyMenu(ctx, patientID, newTplID, &cutoff)
	if err != nil {
		t.Fatalf("ChangeWeeklyMenu: %v", err)
	}
	if assignment.MenuTemplateID != newTplID {
		t.Errorf("assignment not switched to the new menu")
	}

	// Three original days survive, 28 regenerated from the cutoff.
	if len(dailyMealRepo.rows) != 3+28 {
		t.Fatalf("expected 31 daily rows after change, got %d", len(dailyMealRepo.rows))
	}
	for _, row := range dailyMealRepo.rows {
		if row.Date.Before(cutoff) && row.GeneratedFromMenu != tpl.ID {
			t.Errorf("pre-cutoff row regenerated unexpectedly")
		}
		if !row.Date.Before(cutoff) && row.GeneratedFromMenu != newTplID {
			t.Errorf("post-cutoff row not generated from new menu")
		}
	}
}

func TestChangeWeeklyMenuWithoutActivePlan(t *testing.T) {
	svc, userRepo, _, _, templateRepo, _ := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Sin", Email: "sinplan@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	tpl := seedMenuTemplate(t, templateRepo)

	_, err := svc.ChangeWeeklyMenu(ctx, patientID, tpl.ID, nil)
	if !errors.Is(err, ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan, got %v", err)
	}
}

func TestDeletePlanWithActiveAssignments(t *testing.T) {
	svc, userRepo, _, _, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Iris", Email: "iris@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan", Calories: 1500, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	if _, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, time.Now().UTC(), ""); err != nil {
		t.Fatalf("AssignPlan: %v", err)
	}

	if err := svc.DeletePlan(ctx, planID); !errors.Is(err, ErrPlanInUse) {
		t.Fatalf("expected ErrPlanInUse, got %v", err)
	}
	if err := svc.DeleteTemplate(ctx, tpl.ID); !errors.Is(err, ErrMenuInUse) {
		t.Fatalf("expected ErrMenuInUse, got %v", err)
	}
}

func TestUpdateAssignmentStatusCompletedSetsEndDate(t *testing.T) {
	svc, userRepo, assignmentRepo, _, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Noa", Email: "noa@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan", Calories: 1500, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	assignment, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, time.Now().UTC(), "")
	if err != nil {
		t.Fatalf("AssignPlan: %v", err)
	}

	if err := svc.UpdateAssignmentStatus(ctx, assignment.ID, domain.AssignmentCompleted); err != nil {
		t.Fatalf("UpdateAssignmentStatus: %v", err)
	}
	updated, _ := assignmentRepo.GetByID(ctx, assignment.ID)
	if updated.Status != domain.AssignmentCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
	if updated.EndDate == nil {
		t.Errorf("completed assignment should carry an end date")
	}
}

func TestUpdateAssignmentStatusReactivatePausesCurrent(t *testing.T) {
	svc, userRepo, assignmentRepo, _, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Iris", Email: "iris@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan", Calories: 1500, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	first, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, time.Now().UTC(), "")
	if err != nil {
		t.Fatalf("first AssignPlan: %v", err)
	}
	if err := svc.UpdateAssignmentStatus(ctx, first.ID, domain.AssignmentPaused); err != nil {
		t.Fatalf("pause first: %v", err)
	}
	second, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, time.Now().UTC(), "")
	if err != nil {
		t.Fatalf("second AssignPlan: %v", err)
	}

	// Reactivating the first must yield exactly one active assignment.
	if err := svc.UpdateAssignmentStatus(ctx, first.ID, domain.AssignmentActive); err != nil {
		t.Fatalf("reactivate first: %v", err)
	}
	reactivated, _ := assignmentRepo.GetByID(ctx, first.ID)
	if reactivated.Status != domain.AssignmentActive {
		t.Errorf("first status = %q, want active", reactivated.Status)
	}
	displaced, _ := assignmentRepo.GetByID(ctx, second.ID)
	if displaced.Status != domain.AssignmentPaused {
		t.Errorf("second status = %q, want paused", displaced.Status)
	}
}

func TestDeleteAssignmentRemovesDailyMeals(t *testing.T) {
	svc, userRepo, assignmentRepo, dailyMealRepo, templateRepo, planRepo := newPlanFixture(t)
	ctx := context.Background()

	patientID, _ := userRepo.Create(ctx, &domain.User{
		FirstName: "Sol", Email: "sol@example.com",
		Role: domain.RolePatient, Status: domain.StatusActive,
	})
	planID, _ := planRepo.Create(ctx, &domain.MealPlan{Name: "Plan", Calories: 1500, IsActive: true})
	tpl := seedMenuTemplate(t, templateRepo)

	assignment, err := svc.AssignPlan(ctx, patientID, planID, tpl.ID, time.Now().UTC(), "")
	if err != nil {
		t.Fatalf("AssignPlan: %v", err)
	}
	if len(dailyMealRepo.rows) != 7 {
		t.Fatalf("expected 7 daily rows before delete, got %d", len(dailyMealRepo.rows))
	}

	if err := svc.DeleteAssignment(ctx, assignment.ID); err != nil {
		t.Fatalf("DeleteAssignment: %v", err)
	}
	if len(dailyMealRepo.rows) != 0 {
		t.Errorf("daily rows should be removed with the assignment, %d left", len(dailyMealRepo.rows))
	}
	if _, err := assignmentRepo.GetByID(ctx, assignment.ID); err == nil {
		t.Errorf("assignment should be gone")
	}

	if err := svc.DeleteAssignment(ctx, assignment.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound on second delete, got %v", err)
	}
}
