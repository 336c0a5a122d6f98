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

const (
	trackingCollectionName = "meal_tracking"
	foodItemCollectionName = "meal_food_items"
)

// mongoTrackingRepository implements repository.TrackingRepository using
// MongoDB, spanning the tracking and food item collections.
type mongoTrackingRepository struct {
	tracking *mongo.Collection
	foods    *mongo.Collection
}

// NewMongoTrackingRepository creates a new instance of mongoTrackingRepository.
func NewMongoTrackingRepository(db *mongo.Database) repository.TrackingRepository {
	return &mongoTrackingRepository{
		tracking: db.Collection(trackingCollectionName),
		foods:    db.Collection(foodItemCollectionName),
	}
}

func dayRange(date time.Time) bson.M {
	start := date.UTC().Truncate(24 * time.Hour)
	return bson.M{"$gte": start, "$lt": start.Add(24 * time.Hour)}
}

// CreateTracking inserts a meal tracking row.
func (r *mongoTrackingRepository) CreateTracking(ctx context.Context, t *domain.MealTracking) (primitive.ObjectID, error) {
	t.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	result, err := r.tracking.InsertOne(ctx, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetTracking retrieves the tracking row for one (patient, date, meal type).
func (r *mongoTrackingRepository) GetTracking(ctx context.Context, patientID primitive.ObjectID, date time.Time, mealType string) (*domain.MealTracking, error) {
	filter := bson.M{
		"patientId": patientID,
		"date":      dayRange(date),
		"mealType":  mealType,
	}

	var t domain.MealTracking
	err := r.tracking.FindOne(ctx, filter).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetTrackingByID retrieves a tracking row by its ObjectID.
func (r *mongoTrackingRepository) GetTrackingByID(ctx context.Context, id primitive.ObjectID) (*domain.MealTracking, error) {
	var t domain.MealTracking
	err := r.tracking.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetTrackingByDate retrieves every tracking row of one calendar date.
func (r *mongoTrackingRepository) GetTrackingByDate(ctx context.Context, patientID primitive.ObjectID, date time.Time) ([]domain.MealTracking, error) {
	filter := bson.M{"patientId": patientID, "date": dayRange(date)}

	cursor, err := r.tracking.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []domain.MealTracking
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTrackingByRange retrieves tracking rows within [from, to].
func (r *mongoTrackingRepository) GetTrackingByRange(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) ([]domain.MealTracking, error) {
	filter := bson.M{
		"patientId": patientID,
		"date": bson.M{
			"$gte": from.UTC().Truncate(24 * time.Hour),
			"$lte": to.UTC(),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.tracking.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []domain.MealTracking
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateTracking replaces a tracking document.
func (r *mongoTrackingRepository) UpdateTracking(ctx context.Context, t *domain.MealTracking) error {
	t.UpdatedAt = time.Now().UTC()

	result, err := r.tracking.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateFoodItem inserts a food item under a tracking row.
func (r *mongoTrackingRepository) CreateFoodItem(ctx context.Context, item *domain.MealFoodItem) (primitive.ObjectID, error) {
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now().UTC()

	result, err := r.foods.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetFoodItem retrieves a food item by its ObjectID.
func (r *mongoTrackingRepository) GetFoodItem(ctx context.Context, id primitive.ObjectID) (*domain.MealFoodItem, error) {
	var item domain.MealFoodItem
	err := r.foods.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetFoodItems retrieves the food items of a tracking row in list order.
func (r *mongoTrackingRepository) GetFoodItems(ctx context.Context, trackingID primitive.ObjectID) ([]domain.MealFoodItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})

	cursor, err := r.foods.Find(ctx, bson.M{"trackingId": trackingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.MealFoodItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateFoodItem replaces a food item document.
func (r *mongoTrackingRepository) UpdateFoodItem(ctx context.Context, item *domain.MealFoodItem) error {
	result, err := r.foods.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteFoodItem removes a food item document.
func (r *mongoTrackingRepository) DeleteFoodItem(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.foods.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrackingIndexes creates indexes for the meal_tracking and
// meal_food_items collections.
func EnsureTrackingIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(trackingCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}, {Key: "mealType", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(foodItemCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trackingId", Value: 1}, {Key: "orderIndex", Value: 1}},
		},
	})
	return err
}
