package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressMetric is one day's measurements for a patient. At most one
// metric exists per (patient, date); re-submitting a date overwrites
// the stored fields.
type ProgressMetric struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID   primitive.ObjectID `bson:"patientId" json:"patientId"`
	Date        time.Time          `bson:"date" json:"date"`
	Weight      *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	BodyFat     *float64           `bson:"bodyFat,omitempty" json:"bodyFat,omitempty"`
	MuscleMass  *float64           `bson:"muscleMass,omitempty" json:"muscleMass,omitempty"`
	WaistCm     *float64           `bson:"waistCm,omitempty" json:"waistCm,omitempty"`
	HipCm       *float64           `bson:"hipCm,omitempty" json:"hipCm,omitempty"`
	ChestCm     *float64           `bson:"chestCm,omitempty" json:"chestCm,omitempty"`
	EnergyLevel *int               `bson:"energyLevel,omitempty" json:"energyLevel,omitempty"` // 1..10
	SleepHours  *float64           `bson:"sleepHours,omitempty" json:"sleepHours,omitempty"`
	Mood        string             `bson:"mood,omitempty" json:"mood,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Achievement is a milestone unlocked by a patient.
type Achievement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID   primitive.ObjectID `bson:"patientId" json:"patientId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	UnlockedAt  time.Time          `bson:"unlockedAt" json:"unlockedAt"`
}

// NutritionistNote is a clinician's note on a patient's record.
type NutritionistNote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	Content   string             `bson:"content" json:"content"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Trend describes the short-term direction of a weight series.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// trendThreshold is the mean per-sample change (kg) below which the
// series counts as stable.
const trendThreshold = 0.3

// CalculateTrend classifies the last three weight samples. Fewer than
// two samples is stable by definition. Samples must be ordered by date
// ascending; only the trailing three are considered.
func CalculateTrend(weights []float64) Trend {
	if len(weights) < 2 {
		return TrendStable
	}
	if len(weights) > 3 {
		weights = weights[len(weights)-3:]
	}
	var sum float64
	for i := 1; i < len(weights); i++ {
		sum += weights[i] - weights[i-1]
	}
	avg := sum / float64(len(weights)-1)
	switch {
	case avg > trendThreshold:
		return TrendUp
	case avg < -trendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// WeeklyAdherence is the percentage of expected meals completed since
// Monday of the current week, truncated to a whole percent. No
// tracking rows at all yields zero.
func WeeklyAdherence(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

// GoalProgress measures advance from the initial weight toward the
// goal weight, clamped to 0..100. Used on dashboards where progress is
// relative to where the patient started.
func GoalProgress(initial, current, goal float64) float64 {
	var pct float64
	if goal < initial {
		denom := initial - goal
		if denom <= 0 {
			return 0
		}
		pct = (initial - current) / denom * 100
	} else {
		denom := goal - initial
		if denom <= 0 {
			return 0
		}
		pct = (current - initial) / denom * 100
	}
	return clampPct(pct)
}

// ProfileProgress measures standing against the goal from the current
// weight alone, clamped to a whole percent 0..100. Kept alongside
// GoalProgress because patient profiles have always reported this
// variant and the two intentionally disagree.
func ProfileProgress(current, goal float64) int {
	if current <= 0 || goal <= 0 {
		return 0
	}
	var pct float64
	if goal < current {
		pct = (current - goal) / current * 100
	} else {
		pct = current / goal * 100
	}
	p := int(clampPct(pct))
	return p
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
