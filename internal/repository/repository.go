package repository

import (
	"context"
	"nutrivida/clinic-app/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner executes fn inside a single transaction. Every repository
// call made with the ctx passed to fn joins that transaction; an error
// from fn rolls everything back.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	UpdateCurrentWeight(ctx context.Context, id primitive.ObjectID, weight float64) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.UserStatus) error
	SetPhotoKey(ctx context.Context, id primitive.ObjectID, key string) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// RecipeRepository defines the interface for interacting with the recipe catalog.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error)
	GetAll(ctx context.Context, category string) ([]domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddFavorite(ctx context.Context, fav *domain.FavoriteRecipe) error
	RemoveFavorite(ctx context.Context, patientID, recipeID primitive.ObjectID) error
	GetFavorites(ctx context.Context, patientID primitive.ObjectID) ([]domain.FavoriteRecipe, error)
}

// MealPlanRepository defines the interface for interacting with meal plan data.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	GetAll(ctx context.Context) ([]domain.MealPlan, error)
	Update(ctx context.Context, plan *domain.MealPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WeeklyMenuRepository defines the interface for plan-owned weekly menus.
type WeeklyMenuRepository interface {
	Create(ctx context.Context, menu *domain.WeeklyMenu) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyMenu, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.WeeklyMenu, error)
	GetByPlanAndWeek(ctx context.Context, planID primitive.ObjectID, week int) (*domain.WeeklyMenu, error)
	Update(ctx context.Context, menu *domain.WeeklyMenu) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// MenuTemplateRepository defines the interface for the shared menu library.
type MenuTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.MenuTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MenuTemplate, error)
	GetAll(ctx context.Context, category string) ([]domain.MenuTemplate, error)
	Update(ctx context.Context, tpl *domain.MenuTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Categories(ctx context.Context) ([]string, error)
}

// AssignmentRepository defines the interface for plan assignment data.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.PlanAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanAssignment, error)
	GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.PlanAssignment, error)
	GetActiveByPatientID(ctx context.Context, patientID primitive.ObjectID) (*domain.PlanAssignment, error)
	PauseActiveByPatientID(ctx context.Context, patientID primitive.ObjectID) (int64, error)
	CountActiveByPlanID(ctx context.Context, planID primitive.ObjectID) (int64, error)
	CountActiveByMenuID(ctx context.Context, menuID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, assignment *domain.PlanAssignment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DailyMealRepository defines the interface for expanded daily meal rows.
type DailyMealRepository interface {
	CreateMany(ctx context.Context, days []domain.DailyMealAssignment) error
	GetByPatientAndDate(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.DailyMealAssignment, error)
	GetByPatientRange(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) ([]domain.DailyMealAssignment, error)
	DeleteByPatientFromDate(ctx context.Context, patientID primitive.ObjectID, from time.Time) (int64, error)
	DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) error
}

// TrackingRepository defines the interface for meal completion state.
type TrackingRepository interface {
	CreateTracking(ctx context.Context, t *domain.MealTracking) (primitive.ObjectID, error)
	GetTracking(ctx context.Context, patientID primitive.ObjectID, date time.Time, mealType string) (*domain.MealTracking, error)
	GetTrackingByID(ctx context.Context, id primitive.ObjectID) (*domain.MealTracking, error)
	GetTrackingByDate(ctx context.Context, patientID primitive.ObjectID, date time.Time) ([]domain.MealTracking, error)
	GetTrackingByRange(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) ([]domain.MealTracking, error)
	UpdateTracking(ctx context.Context, t *domain.MealTracking) error

	CreateFoodItem(ctx context.Context, item *domain.MealFoodItem) (primitive.ObjectID, error)
	GetFoodItem(ctx context.Context, id primitive.ObjectID) (*domain.MealFoodItem, error)
	GetFoodItems(ctx context.Context, trackingID primitive.ObjectID) ([]domain.MealFoodItem, error)
	UpdateFoodItem(ctx context.Context, item *domain.MealFoodItem) error
	DeleteFoodItem(ctx context.Context, id primitive.ObjectID) error
}

// WaterRepository defines the interface for daily water intake rows.
type WaterRepository interface {
	Get(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.WaterTracking, error)
	Upsert(ctx context.Context, w *domain.WaterTracking) error
}

// CustomFoodRepository defines the interface for patient food entries.
type CustomFoodRepository interface {
	Create(ctx context.Context, food *domain.CustomFood) (primitive.ObjectID, error)
	Search(ctx context.Context, patientID primitive.ObjectID, query string) ([]domain.CustomFood, error)
}

// ProgressRepository defines the interface for progress metrics,
// achievements and nutritionist notes.
type ProgressRepository interface {
	UpsertMetric(ctx context.Context, metric *domain.ProgressMetric) (primitive.ObjectID, error)
	GetMetric(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.ProgressMetric, error)
	GetMetrics(ctx context.Context, patientID primitive.ObjectID, limit int) ([]domain.ProgressMetric, error)
	GetEarliestMetric(ctx context.Context, patientID primitive.ObjectID) (*domain.ProgressMetric, error)
	DeleteMetric(ctx context.Context, patientID, id primitive.ObjectID) error

	CreateAchievement(ctx context.Context, a *domain.Achievement) (primitive.ObjectID, error)
	GetAchievements(ctx context.Context, patientID primitive.ObjectID) ([]domain.Achievement, error)
	DeleteAchievement(ctx context.Context, id primitive.ObjectID) error

	CreateNote(ctx context.Context, note *domain.NutritionistNote) (primitive.ObjectID, error)
	GetNotes(ctx context.Context, patientID primitive.ObjectID) ([]domain.NutritionistNote, error)
	DeleteNote(ctx context.Context, id primitive.ObjectID) error
}

// AppointmentRepository defines the interface for consultation bookings.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error)
	GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.Appointment, error)
	GetByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	GetAll(ctx context.Context) ([]domain.Appointment, error)
	FindBlocking(ctx context.Context, date, timeSlot string) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NotificationRepository defines the interface for the notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// MessageRepository defines the interface for conversation threads.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) (primitive.ObjectID, error)
	GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]domain.Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID primitive.ObjectID) error
	CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error)
	GetPartners(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}
