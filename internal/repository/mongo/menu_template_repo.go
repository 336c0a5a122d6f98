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

const menuTemplateCollectionName = "menu_templates"

// mongoMenuTemplateRepository implements repository.MenuTemplateRepository using MongoDB.
type mongoMenuTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoMenuTemplateRepository creates a new instance of mongoMenuTemplateRepository.
func NewMongoMenuTemplateRepository(db *mongo.Database) repository.MenuTemplateRepository {
	return &mongoMenuTemplateRepository{
		collection: db.Collection(menuTemplateCollectionName),
	}
}

// Create inserts a new menu template.
func (r *mongoMenuTemplateRepository) Create(ctx context.Context, tpl *domain.MenuTemplate) (primitive.ObjectID, error) {
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a menu template by its ObjectID.
func (r *mongoMenuTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MenuTemplate, error) {
	var tpl domain.MenuTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetAll retrieves menu templates, optionally filtered by category.
func (r *mongoMenuTemplateRepository) GetAll(ctx context.Context, category string) ([]domain.MenuTemplate, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.MenuTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update replaces a menu template document.
func (r *mongoMenuTemplateRepository) Update(ctx context.Context, tpl *domain.MenuTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tpl.ID}, tpl)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a menu template document.
func (r *mongoMenuTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Categories returns the distinct non-empty categories in use.
func (r *mongoMenuTemplateRepository) Categories(ctx context.Context) ([]string, error) {
	raw, err := r.collection.Distinct(ctx, "category", bson.M{"category": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}
