package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// RecipeHandler holds the recipe service dependency.
type RecipeHandler struct {
	recipeService service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

type RecipeRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Calories     float64  `json:"calories" binding:"min=0"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	PrepMinutes  int      `json:"prepMinutes"`
	Servings     int      `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
}

func (r *RecipeRequest) apply(recipe *domain.Recipe) {
	recipe.Name = r.Name
	recipe.Description = r.Description
	recipe.Category = r.Category
	recipe.Calories = r.Calories
	recipe.Protein = r.Protein
	recipe.Carbs = r.Carbs
	recipe.Fat = r.Fat
	recipe.PrepMinutes = r.PrepMinutes
	recipe.Servings = r.Servings
	recipe.Ingredients = r.Ingredients
	recipe.Instructions = r.Instructions
	recipe.Tags = r.Tags
}

// CreateRecipe godoc
// @Summary Create a recipe (Nutritionist only)
// @Tags Recipes
// @Accept json
// @Produce json
// @Param recipe body RecipeRequest true "Recipe details"
// @Success 201 {object} domain.Recipe
// @Failure 400 {object} gin.H "Invalid input"
// @Router /recipes [post]
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	recipe := &domain.Recipe{}
	req.apply(recipe)

	created, err := h.recipeService.Create(c.Request.Context(), recipe)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetRecipes godoc
// @Summary List recipes, optionally filtered by category
// @Tags Recipes
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {array} domain.Recipe
// @Router /recipes [get]
func (h *RecipeHandler) GetRecipes(c *gin.Context) {
	recipes, err := h.recipeService.GetAll(c.Request.Context(), c.Query("category"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve recipes")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe godoc
// @Summary Get a recipe by ID
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} domain.Recipe
// @Failure 404 {object} gin.H "Recipe not found"
// @Router /recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleRecipeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe (Nutritionist only)
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path string true "Recipe ID"
// @Param recipe body RecipeRequest true "Updated details"
// @Success 200 {object} domain.Recipe
// @Failure 404 {object} gin.H "Recipe not found"
// @Router /recipes/{id} [put]
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	recipe, err := h.recipeService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleRecipeError(c, err)
		return
	}
	req.apply(recipe)

	if err := h.recipeService.Update(c.Request.Context(), recipe); err != nil {
		handleRecipeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe (Nutritionist only)
// @Tags Recipes
// @Param id path string true "Recipe ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Recipe not found"
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), id); err != nil {
		handleRecipeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite godoc
// @Summary Toggle a recipe in the patient's favorites
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} gin.H "favorited flag"
// @Failure 404 {object} gin.H "Recipe not found"
// @Router /recipes/{id}/favorite [post]
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	favorited, err := h.recipeService.ToggleFavorite(c.Request.Context(), callerID, id)
	if err != nil {
		handleRecipeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// GetFavorites godoc
// @Summary List the patient's favorite recipes
// @Tags Recipes
// @Produce json
// @Success 200 {array} domain.Recipe
// @Router /recipes/favorites [get]
func (h *RecipeHandler) GetFavorites(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipes, err := h.recipeService.GetFavorites(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve favorites")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func handleRecipeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
