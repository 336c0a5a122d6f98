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

const dailyMealCollectionName = "daily_meal_assignments"

// mongoDailyMealRepository implements repository.DailyMealRepository using MongoDB.
type mongoDailyMealRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyMealRepository creates a new instance of mongoDailyMealRepository.
func NewMongoDailyMealRepository(db *mongo.Database) repository.DailyMealRepository {
	return &mongoDailyMealRepository{
		collection: db.Collection(dailyMealCollectionName),
	}
}

// CreateMany inserts a batch of expanded daily meal rows.
func (r *mongoDailyMealRepository) CreateMany(ctx context.Context, days []domain.DailyMealAssignment) error {
	if len(days) == 0 {
		return nil
	}

	docs := make([]interface{}, len(days))
	now := time.Now().UTC()
	for i := range days {
		if days[i].ID.IsZero() {
			days[i].ID = primitive.NewObjectID()
		}
		days[i].CreatedAt = now
		docs[i] = days[i]
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByPatientAndDate retrieves the daily meals for one calendar date.
// Dates are truncated to day precision so any time of day matches.
func (r *mongoDailyMealRepository) GetByPatientAndDate(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.DailyMealAssignment, error) {
	dayStart := date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"patientId": patientID,
		"date": bson.M{
			"$gte": dayStart,
			"$lt":  dayStart.Add(24 * time.Hour),
		},
	}

	var day domain.DailyMealAssignment
	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetByPatientRange retrieves daily meal rows within [from, to] ordered by date.
func (r *mongoDailyMealRepository) GetByPatientRange(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) ([]domain.DailyMealAssignment, error) {
	filter := bson.M{
		"patientId": patientID,
		"date": bson.M{
			"$gte": from.UTC().Truncate(24 * time.Hour),
			"$lte": to.UTC(),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var days []domain.DailyMealAssignment
	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// DeleteByPatientFromDate removes every daily row dated on or after the
// cutoff and reports how many were deleted. Used when switching menus.
func (r *mongoDailyMealRepository) DeleteByPatientFromDate(ctx context.Context, patientID primitive.ObjectID, from time.Time) (int64, error) {
	filter := bson.M{
		"patientId": patientID,
		"date":      bson.M{"$gte": from.UTC().Truncate(24 * time.Hour)},
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteByAssignmentID removes every daily row of an assignment.
func (r *mongoDailyMealRepository) DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"assignmentId": assignmentID})
	return err
}

// EnsureDailyMealIndexes creates indexes for the daily_meal_assignments collection.
func EnsureDailyMealIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assignmentId", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
