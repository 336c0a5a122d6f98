package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealTracking records a patient's completion state for one meal slot
// on one date. Completed is derived: true only while every food item
// under the tracking row is checked.
type MealTracking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID   primitive.ObjectID `bson:"patientId" json:"patientId"`
	Date        time.Time          `bson:"date" json:"date"`
	MealType    string             `bson:"mealType" json:"mealType"` // canonical slot id
	MealName    string             `bson:"mealName" json:"mealName"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MealFoodItem is one checkable food inside a tracked meal. OrderIndex
// preserves insertion order; new items append at max(OrderIndex)+1.
type MealFoodItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingID primitive.ObjectID `bson:"trackingId" json:"trackingId"`
	Name       string             `bson:"name" json:"name"`
	Quantity   string             `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Calories   float64            `bson:"calories" json:"calories"`
	Protein    float64            `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs      float64            `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat        float64            `bson:"fat,omitempty" json:"fat,omitempty"`
	Checked    bool               `bson:"checked" json:"checked"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// DefaultFood is a fallback entry used when a meal slot has no recipe
// to derive food items from.
type DefaultFood struct {
	Name     string
	Quantity string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// DefaultFoodsForSlot returns the seed food list for a slot when the
// assigned menu gives nothing to work with. The lists match what the
// clinic historically loaded for new patients.
func DefaultFoodsForSlot(slot string) []DefaultFood {
	switch slot {
	case SlotBreakfast:
		return []DefaultFood{
			{Name: "Avena con leche", Quantity: "1 taza", Calories: 200, Protein: 8, Carbs: 35, Fat: 4},
			{Name: "Banana", Quantity: "1 unidad", Calories: 105, Protein: 1, Carbs: 27},
		}
	case SlotMorningSnack:
		return []DefaultFood{
			{Name: "Manzana", Quantity: "1 unidad", Calories: 95, Carbs: 25},
		}
	case SlotLunch:
		return []DefaultFood{
			{Name: "Pechuga de pollo", Quantity: "150g", Calories: 250, Protein: 45, Fat: 7},
			{Name: "Arroz integral", Quantity: "1/2 taza", Calories: 110, Protein: 2, Carbs: 23, Fat: 1},
		}
	case SlotAfternoonSnack:
		return []DefaultFood{
			{Name: "Yogurt griego", Quantity: "150g", Calories: 120, Protein: 15, Carbs: 8, Fat: 2},
		}
	case SlotDinner:
		return []DefaultFood{
			{Name: "Pescado a la plancha", Quantity: "150g", Calories: 220, Protein: 35, Fat: 8},
			{Name: "Ensalada verde", Quantity: "1 plato", Calories: 50, Protein: 2, Carbs: 10},
		}
	default:
		return []DefaultFood{
			{Name: "Comida equilibrada", Quantity: "1 porción", Calories: 300, Protein: 20, Carbs: 30, Fat: 10},
		}
	}
}

// WaterTracking accumulates a patient's water intake for one date.
type WaterTracking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	Date      time.Time          `bson:"date" json:"date"`
	Glasses   int                `bson:"glasses" json:"glasses"`
	GoalML    int                `bson:"goalMl" json:"goalMl"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CustomFood is a patient-defined entry in the food search catalog.
type CustomFood struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  string             `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Calories  float64            `bson:"calories" json:"calories"`
	Protein   float64            `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs     float64            `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat       float64            `bson:"fat,omitempty" json:"fat,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
