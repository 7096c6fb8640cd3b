// Package services – RelationService
//
// This file implements the favorite and shopping-cart toggles. Both are
// uniqueness-constrained (user, recipe) pairs: adding an existing pair is a
// conflict, removing a missing pair is not found, and neither case is a
// silent no-op.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// RelationService provides favorite and cart membership operations.
type RelationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewRelationService constructs a RelationService.
func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{DB: db}
}

// AddFavorite marks the recipe as a favorite of userID and returns the
// recipe summary for the response body.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID string) (RecipeSummary, error) {
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return RecipeSummary{}, ErrRecipeNotFound
		}
		return RecipeSummary{}, err
	}
	if _, err := repo.CreateFavorite(ctx, s.DB, userID, recipeID); err != nil {
		if isDuplicate(err) {
			return RecipeSummary{}, ErrAlreadyFavorited
		}
		return RecipeSummary{}, err
	}
	return summarize(r), nil
}

// RemoveFavorite deletes the favorite pair.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if err := repo.DeleteFavorite(ctx, s.DB, userID, recipeID); err != nil {
		if isNotFound(err) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

// AddToCart places the recipe in userID's shopping cart and returns the
// recipe summary for the response body.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID string) (RecipeSummary, error) {
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return RecipeSummary{}, ErrRecipeNotFound
		}
		return RecipeSummary{}, err
	}
	if _, err := repo.CreateCartEntry(ctx, s.DB, userID, recipeID); err != nil {
		if isDuplicate(err) {
			return RecipeSummary{}, ErrAlreadyInCart
		}
		return RecipeSummary{}, err
	}
	return summarize(r), nil
}

// RemoveFromCart deletes the cart pair.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID string) error {
	if err := repo.DeleteCartEntry(ctx, s.DB, userID, recipeID); err != nil {
		if isNotFound(err) {
			return ErrCartEntryNotFound
		}
		return err
	}
	return nil
}
