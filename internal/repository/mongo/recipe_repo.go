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
	recipeCollectionName   = "recipes"
	favoriteCollectionName = "favorite_recipes"
)

// mongoRecipeRepository implements repository.RecipeRepository using MongoDB.
type mongoRecipeRepository struct {
	recipes   *mongo.Collection
	favorites *mongo.Collection
}

// NewMongoRecipeRepository creates a new instance of mongoRecipeRepository.
func NewMongoRecipeRepository(db *mongo.Database) repository.RecipeRepository {
	return &mongoRecipeRepository{
		recipes:   db.Collection(recipeCollectionName),
		favorites: db.Collection(favoriteCollectionName),
	}
}

// Create inserts a recipe into the catalog.
func (r *mongoRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (primitive.ObjectID, error) {
	recipe.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	result, err := r.recipes.InsertOne(ctx, recipe)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a recipe by its ObjectID.
func (r *mongoRecipeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.recipes.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// GetAll retrieves active recipes, optionally filtered by category.
func (r *mongoRecipeRepository) GetAll(ctx context.Context, category string) ([]domain.Recipe, error) {
	filter := bson.M{"isActive": true}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.recipes.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []domain.Recipe
	if err = cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Update replaces a recipe document.
func (r *mongoRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()

	result, err := r.recipes.ReplaceOne(ctx, bson.M{"_id": recipe.ID}, recipe)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a recipe document.
func (r *mongoRecipeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.recipes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddFavorite marks a recipe as a patient favorite. Re-favoriting is a no-op.
func (r *mongoRecipeRepository) AddFavorite(ctx context.Context, fav *domain.FavoriteRecipe) error {
	fav.ID = primitive.NewObjectID()
	fav.CreatedAt = time.Now().UTC()

	_, err := r.favorites.InsertOne(ctx, fav)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// RemoveFavorite clears a patient's favorite mark on a recipe.
func (r *mongoRecipeRepository) RemoveFavorite(ctx context.Context, patientID, recipeID primitive.ObjectID) error {
	result, err := r.favorites.DeleteOne(ctx, bson.M{"patientId": patientID, "recipeId": recipeID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetFavorites retrieves a patient's favorites, newest first.
func (r *mongoRecipeRepository) GetFavorites(ctx context.Context, patientID primitive.ObjectID) ([]domain.FavoriteRecipe, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.favorites.Find(ctx, bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var favs []domain.FavoriteRecipe
	if err = cursor.All(ctx, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// EnsureRecipeIndexes creates indexes for the recipe collections.
func EnsureRecipeIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(recipeCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(favoriteCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "recipeId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
