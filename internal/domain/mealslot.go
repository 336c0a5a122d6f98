package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical meal slot identifiers. Stored data and API payloads use a
// mix of English and Spanish keys accumulated over time; these are the
// normalized ids every reader resolves through SlotAliases.
const (
	SlotBreakfast      = "breakfast"
	SlotMorningSnack   = "morning_snack"
	SlotLunch          = "lunch"
	SlotAfternoonSnack = "afternoon_snack"
	SlotDinner         = "dinner"
	SlotEveningSnack   = "evening_snack"
)

// MealSlots lists the canonical slots in chronological order.
var MealSlots = []string{
	SlotBreakfast,
	SlotMorningSnack,
	SlotLunch,
	SlotAfternoonSnack,
	SlotDinner,
}

// SlotAliases maps each canonical slot to the keys it may appear under
// in a day document, canonical key first. Resolution tries aliases in
// order and takes the first non-empty match.
var SlotAliases = map[string][]string{
	SlotBreakfast:      {"breakfast", "desayuno"},
	SlotMorningSnack:   {"morning_snack", "snack_am", "media_manana", "merienda_manana"},
	SlotLunch:          {"lunch", "almuerzo"},
	SlotAfternoonSnack: {"afternoon_snack", "snack_pm", "media_tarde", "merienda_tarde"},
	SlotDinner:         {"dinner", "cena"},
}

// SlotLabels holds the Spanish display names used in notifications and
// patient-facing summaries.
var SlotLabels = map[string]string{
	SlotBreakfast:      "Desayuno",
	SlotMorningSnack:   "Snack AM",
	SlotLunch:          "Comida",
	SlotAfternoonSnack: "Snack PM",
	SlotDinner:         "Cena",
	SlotEveningSnack:   "Snack Noche",
}

// WeekDay pairs the storage key of a weekday with its Spanish display
// name as written into daily assignments.
type WeekDay struct {
	Key  string
	Name string
}

// WeekDays indexes weekdays by offset from Monday (0..6), matching
// time.Weekday arithmetic used during plan expansion.
var WeekDays = [7]WeekDay{
	{"monday", "Lunes"},
	{"tuesday", "Martes"},
	{"wednesday", "Miércoles"},
	{"thursday", "Jueves"},
	{"friday", "Viernes"},
	{"saturday", "Sábado"},
	{"sunday", "Domingo"},
}

// WeekDayFor returns the weekday descriptor for a calendar date.
func WeekDayFor(date time.Time) WeekDay {
	// time.Weekday counts Sunday=0; our table counts Monday=0.
	idx := (int(date.Weekday()) + 6) % 7
	return WeekDays[idx]
}

// NormalizeDay coerces a stored day value into a map. Legacy rows hold
// the day either as a structured document or as that document encoded
// into a JSON string, and the BSON decoder yields primitive.M or
// primitive.D depending on the path taken; anything unreadable
// collapses to an empty map so callers never branch on storage format.
func NormalizeDay(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case primitive.M:
		return map[string]any(v)
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = e.Value
		}
		return out
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil || out == nil {
			return map[string]any{}
		}
		return out
	default:
		return map[string]any{}
	}
}

// asSlice unwraps both native and BSON-decoded arrays.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return s, true
	}
	return nil, false
}

// ResolveSlot extracts the meal descriptor for a canonical slot from a
// normalized day document, trying each alias key in order. The second
// return reports whether any alias held a value.
func ResolveSlot(day map[string]any, slot string) (map[string]any, bool) {
	for _, key := range SlotAliases[slot] {
		raw, ok := day[key]
		if !ok || raw == nil {
			continue
		}
		if m := NormalizeDay(raw); len(m) > 0 {
			return m, true
		}
		// A bare non-JSON string is an old-format recipe name.
		if s, ok := raw.(string); ok && s != "" {
			return map[string]any{"name": s}, true
		}
	}
	return nil, false
}

// PartitionSlot maps a meal's type tag (as written in menu templates)
// to the canonical slot it lands in when a weekly menu is expanded into
// daily assignments. Matching is substring based and order matters:
// "almuerzo" is treated as the morning snack, mirroring how existing
// menus were authored.
func PartitionSlot(mealType string) string {
	t := strings.ToLower(mealType)
	switch {
	case strings.Contains(t, "desayuno"):
		return SlotBreakfast
	case strings.Contains(t, "almuerzo"), strings.Contains(t, "snack_am"):
		return SlotMorningSnack
	case strings.Contains(t, "comida"):
		return SlotLunch
	case strings.Contains(t, "merienda"), strings.Contains(t, "snack_pm"):
		return SlotAfternoonSnack
	case strings.Contains(t, "cena"):
		return SlotDinner
	case strings.Contains(t, "snack"), strings.Contains(t, "snack_noche"):
		return SlotEveningSnack
	default:
		return ""
	}
}

// DaySlots flattens a normalized day document into canonical slot ids.
// New-format days carry a "meals" array tagged by type; those are
// partitioned through PartitionSlot with first match winning. Old-format
// days are keyed by slot name directly and resolve through the alias
// tables.
func DaySlots(day map[string]any) map[string]any {
	slots := map[string]any{}
	if rawMeals, ok := asSlice(day["meals"]); ok {
		for _, rm := range rawMeals {
			meal := NormalizeDay(rm)
			if len(meal) == 0 {
				continue
			}
			t, _ := meal["type"].(string)
			if t == "" {
				t, _ = meal["tipo"].(string)
			}
			slot := PartitionSlot(t)
			if slot == "" || slots[slot] != nil {
				continue
			}
			slots[slot] = meal
		}
		return slots
	}
	for _, slot := range MealSlots {
		if m, ok := ResolveSlot(day, slot); ok {
			slots[slot] = m
		}
	}
	return slots
}

// MealDescriptor is the normalized view of one meal inside a day
// document, with the bilingual macro keys already resolved.
type MealDescriptor struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DescribeMeal reads a raw meal document into a MealDescriptor,
// accepting both Spanish and English field names. Spanish keys win
// because the bulk of stored menus use them.
func DescribeMeal(meal map[string]any) MealDescriptor {
	return MealDescriptor{
		Name:     firstString(meal, "receta", "name"),
		Calories: firstNumber(meal, "calorias", "calories"),
		Protein:  firstNumber(meal, "proteina", "protein"),
		Carbs:    firstNumber(meal, "carbohidratos", "carbs"),
		Fat:      firstNumber(meal, "grasas", "fat"),
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNumber(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f
			}
		default:
			if f, err := strconv.ParseFloat(fmt.Sprintf("%v", n), 64); err == nil {
				return f
			}
		}
	}
	return 0
}
