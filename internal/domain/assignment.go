package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus tracks the lifecycle of a plan assignment. A patient
// has at most one active assignment at a time; assigning a new plan
// pauses any previous active one.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentPaused    AssignmentStatus = "paused"
	AssignmentCompleted AssignmentStatus = "completed"
)

// PlanAssignment links a patient to a meal plan and the menu their
// daily meals were generated from.
type PlanAssignment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID      primitive.ObjectID `bson:"patientId" json:"patientId"`
	MealPlanID     primitive.ObjectID `bson:"mealPlanId" json:"mealPlanId"`
	MenuTemplateID primitive.ObjectID `bson:"menuTemplateId,omitempty" json:"menuTemplateId,omitempty"`
	Status         AssignmentStatus   `bson:"status" json:"status"`
	AssignedDate   time.Time          `bson:"assignedDate" json:"assignedDate"`
	StartDate      time.Time          `bson:"startDate" json:"startDate"`
	EndDate        *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CurrentWeek    int                `bson:"currentWeek" json:"currentWeek"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the assignment currently drives the
// patient's daily meals.
func (a *PlanAssignment) IsActive() bool {
	return a.Status == AssignmentActive
}

// DailyMealAssignment is one expanded day of an assignment: the six
// meal slots resolved from the menu for a concrete calendar date.
// Slot values keep the loose document shape of the source menu (see
// NormalizeDay); DayOfWeek carries the Spanish display name.
type DailyMealAssignment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID         primitive.ObjectID `bson:"patientId" json:"patientId"`
	AssignmentID      primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	Date              time.Time          `bson:"date" json:"date"`
	DayOfWeek         string             `bson:"dayOfWeek" json:"dayOfWeek"`
	Breakfast         any                `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	MorningSnack      any                `bson:"morningSnack,omitempty" json:"morningSnack,omitempty"`
	Lunch             any                `bson:"lunch,omitempty" json:"lunch,omitempty"`
	AfternoonSnack    any                `bson:"afternoonSnack,omitempty" json:"afternoonSnack,omitempty"`
	Dinner            any                `bson:"dinner,omitempty" json:"dinner,omitempty"`
	EveningSnack      any                `bson:"eveningSnack,omitempty" json:"eveningSnack,omitempty"`
	GeneratedFromMenu primitive.ObjectID `bson:"generatedFromMenuId,omitempty" json:"generatedFromMenuId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// Slot returns the stored value for a canonical slot id.
func (d *DailyMealAssignment) Slot(slot string) any {
	switch slot {
	case SlotBreakfast:
		return d.Breakfast
	case SlotMorningSnack:
		return d.MorningSnack
	case SlotLunch:
		return d.Lunch
	case SlotAfternoonSnack:
		return d.AfternoonSnack
	case SlotDinner:
		return d.Dinner
	case SlotEveningSnack:
		return d.EveningSnack
	default:
		return nil
	}
}

// SetSlot stores a value under a canonical slot id. Unknown ids are
// ignored.
func (d *DailyMealAssignment) SetSlot(slot string, value any) {
	switch slot {
	case SlotBreakfast:
		d.Breakfast = value
	case SlotMorningSnack:
		d.MorningSnack = value
	case SlotLunch:
		d.Lunch = value
	case SlotAfternoonSnack:
		d.AfternoonSnack = value
	case SlotDinner:
		d.Dinner = value
	case SlotEveningSnack:
		d.EveningSnack = value
	}
}
