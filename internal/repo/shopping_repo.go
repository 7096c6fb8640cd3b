// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregation query behind the
// consolidated shopping list.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/domain"
)

// ShoppingItem is one consolidated row of a user's shopping list: an
// ingredient identity (name + unit) and the summed amount across every
// recipe in the cart.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int    `json:"total"`
}

// SumCartIngredients aggregates the ingredient lines of every recipe in the
// user's cart, grouped by (name, measurement_unit). The same ingredient
// appearing in several carted recipes folds into one row with the amounts
// summed. An empty cart yields an empty slice.
func SumCartIngredients(ctx context.Context, db *gorm.DB, userID string) ([]ShoppingItem, error) {
	var out []ShoppingItem
	err := db.WithContext(ctx).
		Model(&domain.IngredientLine{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_lines.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = ingredient_lines.ingredient_id").
		Joins("JOIN cart_entries ON cart_entries.recipe_id = ingredient_lines.recipe_id AND cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&out).Error
	return out, err
}
