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

const waterCollectionName = "water_tracking"

// mongoWaterRepository implements repository.WaterRepository using MongoDB.
type mongoWaterRepository struct {
	collection *mongo.Collection
}

// NewMongoWaterRepository creates a new instance of mongoWaterRepository.
func NewMongoWaterRepository(db *mongo.Database) repository.WaterRepository {
	return &mongoWaterRepository{
		collection: db.Collection(waterCollectionName),
	}
}

// Get retrieves the water row of one calendar date.
func (r *mongoWaterRepository) Get(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.WaterTracking, error) {
	filter := bson.M{"patientId": patientID, "date": dayRange(date)}

	var w domain.WaterTracking
	err := r.collection.FindOne(ctx, filter).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Upsert writes the glasses count for one (patient, date), creating the
// row on first write of the day.
func (r *mongoWaterRepository) Upsert(ctx context.Context, w *domain.WaterTracking) error {
	day := w.Date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{"patientId": w.PatientID, "date": bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"glasses":   w.Glasses,
			"goalMl":    w.GoalML,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"patientId": w.PatientID,
			"date":      day,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved domain.WaterTracking
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return err
	}
	*w = saved
	return nil
}

// EnsureWaterIndexes creates indexes for the water_tracking collection.
func EnsureWaterIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
