package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipe is an entry in the shared recipe catalog referenced by menus.
type Recipe struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"` // desayuno, comida, cena, snack
	Calories     float64            `bson:"calories" json:"calories"`
	Protein      float64            `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs        float64            `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat          float64            `bson:"fat,omitempty" json:"fat,omitempty"`
	PrepMinutes  int                `bson:"prepMinutes,omitempty" json:"prepMinutes,omitempty"`
	Servings     int                `bson:"servings,omitempty" json:"servings,omitempty"`
	Ingredients  []string           `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Instructions []string           `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	ImageKey     string             `bson:"imageKey,omitempty" json:"-"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FavoriteRecipe marks a recipe as favorited by a patient.
type FavoriteRecipe struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	RecipeID  primitive.ObjectID `bson:"recipeId" json:"recipeId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
