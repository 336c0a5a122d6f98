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

const customFoodCollectionName = "custom_foods"

// mongoCustomFoodRepository implements repository.CustomFoodRepository using MongoDB.
type mongoCustomFoodRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomFoodRepository creates a new instance of mongoCustomFoodRepository.
func NewMongoCustomFoodRepository(db *mongo.Database) repository.CustomFoodRepository {
	return &mongoCustomFoodRepository{
		collection: db.Collection(customFoodCollectionName),
	}
}

// Create inserts a custom food entry.
func (r *mongoCustomFoodRepository) Create(ctx context.Context, food *domain.CustomFood) (primitive.ObjectID, error) {
	food.ID = primitive.NewObjectID()
	food.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, food)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// Search retrieves a patient's custom foods whose names match the query,
// case insensitive. An empty query returns everything.
func (r *mongoCustomFoodRepository) Search(ctx context.Context, patientID primitive.ObjectID, query string) ([]domain.CustomFood, error) {
	filter := bson.M{"patientId": patientID}
	if query != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: query, Options: "i"}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var foods []domain.CustomFood
	if err = cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}
