package service

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrRecipeNotFound = errors.New("recipe not found")

type RecipeService interface {
	Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error)
	GetAll(ctx context.Context, category string) ([]domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	ToggleFavorite(ctx context.Context, patientID, recipeID primitive.ObjectID) (favorited bool, err error)
	GetFavorites(ctx context.Context, patientID primitive.ObjectID) ([]domain.Recipe, error)
}

// recipeService implements the RecipeService interface.
type recipeService struct {
	recipeRepo repository.RecipeRepository
}

// NewRecipeService creates a new instance of recipeService.
func NewRecipeService(recipeRepo repository.RecipeRepository) RecipeService {
	return &recipeService{recipeRepo: recipeRepo}
}

func (s *recipeService) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	if recipe.Name == "" {
		return nil, errors.New("recipe name cannot be empty")
	}
	recipe.IsActive = true

	id, err := s.recipeRepo.Create(ctx, recipe)
	if err != nil {
		return nil, err
	}
	recipe.ID = id
	return recipe, nil
}

func (s *recipeService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) GetAll(ctx context.Context, category string) ([]domain.Recipe, error) {
	return s.recipeRepo.GetAll(ctx, category)
}

func (s *recipeService) Update(ctx context.Context, recipe *domain.Recipe) error {
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}

func (s *recipeService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// ToggleFavorite marks or unmarks a recipe as a patient favorite and
// reports the resulting state.
func (s *recipeService) ToggleFavorite(ctx context.Context, patientID, recipeID primitive.ObjectID) (bool, error) {
	if _, err := s.GetByID(ctx, recipeID); err != nil {
		return false, err
	}

	err := s.recipeRepo.RemoveFavorite(ctx, patientID, recipeID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	fav := &domain.FavoriteRecipe{PatientID: patientID, RecipeID: recipeID}
	if err := s.recipeRepo.AddFavorite(ctx, fav); err != nil {
		return false, err
	}
	return true, nil
}

// GetFavorites resolves a patient's favorite marks into recipes,
// skipping recipes deleted since they were favorited.
func (s *recipeService) GetFavorites(ctx context.Context, patientID primitive.ObjectID) ([]domain.Recipe, error) {
	favs, err := s.recipeRepo.GetFavorites(ctx, patientID)
	if err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, 0, len(favs))
	for _, f := range favs {
		recipe, err := s.recipeRepo.GetByID(ctx, f.RecipeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, nil
}
