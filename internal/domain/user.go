package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RolePatient    Role = "patient"
	RoleAdmin      Role = "admin" // nutritionist
	RoleSuperadmin Role = "superadmin"
)

// UserStatus tracks account state (invited nutritionists start pending).
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusPending  UserStatus = "pending"
	StatusInactive UserStatus = "inactive"
)

// User represents any account in the system. Patients carry the full
// clinical profile; admins and superadmins only use the identity fields.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Status       UserStatus         `bson:"status" json:"status"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	BirthDate    *time.Time         `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	Gender       string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	PhotoKey     string             `bson:"photoKey,omitempty" json:"-"` // S3 object key of the profile photo

	// --- Clinical profile (patient-specific) ---
	Height            *float64 `bson:"height,omitempty" json:"height,omitempty"`               // cm
	CurrentWeight     *float64 `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"` // kg
	GoalWeight        *float64 `bson:"goalWeight,omitempty" json:"goalWeight,omitempty"`       // kg
	ActivityLevel     string   `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
	Allergies         []string `bson:"allergies,omitempty" json:"allergies,omitempty"`
	FoodPreferences   []string `bson:"foodPreferences,omitempty" json:"foodPreferences,omitempty"`
	HealthGoals       string   `bson:"healthGoals,omitempty" json:"healthGoals,omitempty"`
	MedicalConditions string   `bson:"medicalConditions,omitempty" json:"medicalConditions,omitempty"`
	DislikedFoods     string   `bson:"dislikedFoods,omitempty" json:"dislikedFoods,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins the name parts the way the UI displays them.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

// ProfileComplete reports whether the patient filled the minimum
// clinical profile (height, weight, activity level).
func (u *User) ProfileComplete() bool {
	return u.Height != nil && u.CurrentWeight != nil && u.ActivityLevel != ""
}
