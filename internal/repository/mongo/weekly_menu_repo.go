package mongo

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const weeklyMenuCollectionName = "weekly_menus"

// mongoWeeklyMenuRepository implements repository.WeeklyMenuRepository using MongoDB.
type mongoWeeklyMenuRepository struct {
	collection *mongo.Collection
}

// NewMongoWeeklyMenuRepository creates a new instance of mongoWeeklyMenuRepository.
func NewMongoWeeklyMenuRepository(db *mongo.Database) repository.WeeklyMenuRepository {
	return &mongoWeeklyMenuRepository{
		collection: db.Collection(weeklyMenuCollectionName),
	}
}

// Create inserts a new weekly menu.
func (r *mongoWeeklyMenuRepository) Create(ctx context.Context, menu *domain.WeeklyMenu) (primitive.ObjectID, error) {
	menu.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	menu.CreatedAt = now
	menu.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, menu)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a weekly menu by its ObjectID.
func (r *mongoWeeklyMenuRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyMenu, error) {
	var menu domain.WeeklyMenu
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&menu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &menu, nil
}

// GetByPlanID retrieves all weekly menus of a plan ordered by week number.
func (r *mongoWeeklyMenuRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.WeeklyMenu, error) {
	opts := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"mealPlanId": planID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var menus []domain.WeeklyMenu
	if err = cursor.All(ctx, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// GetByPlanAndWeek retrieves one week of a plan's menu.
func (r *mongoWeeklyMenuRepository) GetByPlanAndWeek(ctx context.Context, planID primitive.ObjectID, week int) (*domain.WeeklyMenu, error) {
	var menu domain.WeeklyMenu
	filter := bson.M{"mealPlanId": planID, "weekNumber": week}

	err := r.collection.FindOne(ctx, filter).Decode(&menu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &menu, nil
}

// Update replaces a weekly menu document.
func (r *mongoWeeklyMenuRepository) Update(ctx context.Context, menu *domain.WeeklyMenu) error {
	menu.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": menu.ID}, menu)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a weekly menu document.
func (r *mongoWeeklyMenuRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlanID removes every weekly menu belonging to a plan.
func (r *mongoWeeklyMenuRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"mealPlanId": planID})
	return err
}

// EnsureWeeklyMenuIndexes creates indexes for the weekly_menus collection.
func EnsureWeeklyMenuIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mealPlanId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
