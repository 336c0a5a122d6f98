package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlan is a named nutrition template a nutritionist assigns to patients.
type MealPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Calories      int                `bson:"calories" json:"calories"` // daily target
	Duration      string             `bson:"duration,omitempty" json:"duration,omitempty"` // e.g. "8 semanas"
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	ProteinTarget int                `bson:"proteinTarget,omitempty" json:"proteinTarget,omitempty"`
	CarbsTarget   int                `bson:"carbsTarget,omitempty" json:"carbsTarget,omitempty"`
	FatTarget     int                `bson:"fatTarget,omitempty" json:"fatTarget,omitempty"`
	MealsPerDay   int                `bson:"mealsPerDay" json:"mealsPerDay"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WeeklyMenu holds one week of a plan's menu, one document per weekday.
// Day values are stored as loosely typed documents because historical
// data was written in two formats: a structured map keyed by meal slot,
// or that same map serialized as a JSON string. NormalizeDay decodes
// either form; never read the raw values directly.
type WeeklyMenu struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MealPlanID primitive.ObjectID `bson:"mealPlanId" json:"mealPlanId"`
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"`
	Days       map[string]any     `bson:"days" json:"days"` // keyed "monday".."sunday"
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day returns the raw day value for a weekday key ("monday".."sunday").
func (m *WeeklyMenu) Day(key string) any {
	if m == nil || m.Days == nil {
		return nil
	}
	return m.Days[key]
}

// MenuTemplate is a standalone weekly menu from the shared menu library.
// Unlike WeeklyMenu it is not owned by a plan; assignments reference it
// as the source the daily meals were generated from. Day values carry a
// {"meals": [...]} document (same JSON-or-string caveat as WeeklyMenu).
type MenuTemplate struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	Days          map[string]any     `bson:"days" json:"days"` // keyed "monday".."sunday"
	TotalCalories int                `bson:"totalCalories,omitempty" json:"totalCalories,omitempty"`
	AvgProtein    int                `bson:"avgProtein,omitempty" json:"avgProtein,omitempty"`
	AvgCarbs      int                `bson:"avgCarbs,omitempty" json:"avgCarbs,omitempty"`
	AvgFat        int                `bson:"avgFat,omitempty" json:"avgFat,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day returns the raw day value for a weekday key ("monday".."sunday").
func (t *MenuTemplate) Day(key string) any {
	if t == nil || t.Days == nil {
		return nil
	}
	return t.Days[key]
}
