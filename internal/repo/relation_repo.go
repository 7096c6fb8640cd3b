// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// uniqueness-constrained relationship sets: favorites, cart entries, and
// follows. All rows are hard deleted; re-adding after a remove creates a
// fresh row.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/domain"
)

// CreateFavorite inserts a (user, recipe) favorite row. A duplicate pair
// violates the unique index and surfaces as a raw DB error for the service
// layer to translate into a conflict.
func CreateFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) (*domain.Favorite, error) {
	f := &domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFavorite hard-deletes the (user, recipe) favorite row, returning
// ErrNotFound if no such row exists.
func DeleteFavorite(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FavoriteExists reports whether the user has favorited the recipe.
func FavoriteExists(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// CreateCartEntry inserts a (user, recipe) cart row; duplicate pairs surface
// as unique-index violations.
func CreateCartEntry(ctx context.Context, db *gorm.DB, userID, recipeID string) (*domain.CartEntry, error) {
	e := &domain.CartEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteCartEntry hard-deletes the (user, recipe) cart row, returning
// ErrNotFound if no such row exists.
func DeleteCartEntry(ctx context.Context, db *gorm.DB, userID, recipeID string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.CartEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CartEntryExists reports whether the recipe is in the user's cart.
func CartEntryExists(ctx context.Context, db *gorm.DB, userID, recipeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.CartEntry{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

// CreateFollow inserts a (user, author) follow row. Self-follow is rejected
// by the service before reaching here; duplicate pairs surface as
// unique-index violations.
func CreateFollow(ctx context.Context, db *gorm.DB, userID, authorID string) (*domain.Follow, error) {
	f := &domain.Follow{
		ID:        uuid.NewString(),
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFollow hard-deletes the (user, author) follow row, returning
// ErrNotFound if no such row exists.
func DeleteFollow(ctx context.Context, db *gorm.DB, userID, authorID string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FollowExists reports whether the user follows the author.
func FollowExists(ctx context.Context, db *gorm.DB, userID, authorID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}

// ListFollowsPage returns a page of the user's follows, oldest first, with
// the followed authors preloaded.
func ListFollowsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Follow, error) {
	var out []domain.Follow
	err := db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountFollows returns the number of authors the user follows.
func CountFollows(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}
