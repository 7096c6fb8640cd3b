// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Recipe
// aggregate: the recipe row, its ingredient lines, and its tag links.
//
// The aggregate-mutating functions are designed to be called with a
// transaction-bound handle; the service layer owns the transaction scope so
// that the recipe row, tag links, and ingredient lines commit or roll back
// as one unit.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/domain"
)

// RecipeFilter is the explicit filter specification for recipe listings.
// Each field maps to exactly one documented effect; zero values disable the
// corresponding filter. Viewer-scoped filters (FavoritedBy, InCartOf) carry
// the viewer's user id and stay empty for anonymous callers.
type RecipeFilter struct {
	// TagSlugs keeps recipes carrying at least one of the given tag slugs.
	TagSlugs []string
	// AuthorID keeps recipes owned by the given author.
	AuthorID string
	// FavoritedBy keeps recipes favorited by the given user.
	FavoritedBy string
	// InCartOf keeps recipes in the given user's shopping cart.
	InCartOf string
}

// LineView is an ingredient line joined with its ingredient's display
// identity, the shape recipe read models expose.
type LineView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Amount          int    `json:"amount"`
	MeasurementUnit string `json:"measurement_unit"`
}

// CreateRecipe inserts the recipe row only; tag links and ingredient lines
// are written by ReplaceTagLinks / ReplaceIngredientLines inside the same
// transaction.
func CreateRecipe(ctx context.Context, db *gorm.DB, authorID, name, text, image string, cookingTime int) (*domain.Recipe, error) {
	r := &domain.Recipe{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Name:        name,
		Text:        text,
		Image:       image,
		CookingTime: cookingTime,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecipe fetches a recipe by ID with its author preloaded, or
// ErrNotFound if missing.
func GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	var r domain.Recipe
	err := db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecipeFields applies the given column updates to a recipe row.
// If no rows are affected, it returns ErrNotFound.
func UpdateRecipeFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRecipeCascade removes a recipe and every row referencing it:
// ingredient lines, tag links, favorites, and cart entries. The cascade is
// explicit rather than delegated to FK actions so the whole unit commits or
// rolls back with the caller's transaction.
func DeleteRecipeCascade(ctx context.Context, db *gorm.DB, id string) error {
	h := db.WithContext(ctx)
	if err := h.Where("recipe_id = ?", id).Delete(&domain.IngredientLine{}).Error; err != nil {
		return err
	}
	if err := h.Where("recipe_id = ?", id).Delete(&domain.RecipeTag{}).Error; err != nil {
		return err
	}
	if err := h.Where("recipe_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
		return err
	}
	if err := h.Where("recipe_id = ?", id).Delete(&domain.CartEntry{}).Error; err != nil {
		return err
	}
	res := h.Where("id = ?", id).Delete(&domain.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceIngredientLines deletes every existing line of the recipe and
// inserts the given set (destructive replace, not a merge). Amount bounds
// and duplicate detection happen in the service layer; the unique
// (recipe_id, ingredient_id) index is the last line of defense.
func ReplaceIngredientLines(ctx context.Context, db *gorm.DB, recipeID string, lines []domain.IngredientLine) error {
	h := db.WithContext(ctx)
	if err := h.Where("recipe_id = ?", recipeID).Delete(&domain.IngredientLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = uuid.NewString()
		lines[i].RecipeID = recipeID
		lines[i].Position = i
	}
	return h.Create(&lines).Error
}

// ReplaceTagLinks deletes every existing tag link of the recipe and inserts
// one link per tag id (set semantics).
func ReplaceTagLinks(ctx context.Context, db *gorm.DB, recipeID string, tagIDs []string) error {
	h := db.WithContext(ctx)
	if err := h.Where("recipe_id = ?", recipeID).Delete(&domain.RecipeTag{}).Error; err != nil {
		return err
	}
	links := make([]domain.RecipeTag, 0, len(tagIDs))
	for _, tid := range tagIDs {
		links = append(links, domain.RecipeTag{
			ID:       uuid.NewString(),
			RecipeID: recipeID,
			TagID:    tid,
		})
	}
	return h.Create(&links).Error
}

// ListLineViews returns the recipe's ingredient lines joined with the
// ingredient display identity, in the order the author listed them.
func ListLineViews(ctx context.Context, db *gorm.DB, recipeID string) ([]LineView, error) {
	var out []LineView
	err := db.WithContext(ctx).
		Model(&domain.IngredientLine{}).
		Select("ingredient_lines.id AS id, ingredients.name AS name, ingredient_lines.amount AS amount, ingredients.measurement_unit AS measurement_unit").
		Joins("JOIN ingredients ON ingredients.id = ingredient_lines.ingredient_id").
		Where("ingredient_lines.recipe_id = ?", recipeID).
		Order("ingredient_lines.position asc").
		Scan(&out).Error
	return out, err
}

// ListRecipeTags returns the tags associated with the recipe, ordered by name.
func ListRecipeTags(ctx context.Context, db *gorm.DB, recipeID string) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).
		Model(&domain.Tag{}).
		Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
		Where("recipe_tags.recipe_id = ?", recipeID).
		Order("tags.name asc").
		Find(&out).Error
	return out, err
}

// CountLines returns the number of ingredient lines of a recipe.
func CountLines(ctx context.Context, db *gorm.DB, recipeID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.IngredientLine{}).
		Where("recipe_id = ?", recipeID).
		Count(&n).Error
	return n, err
}

// filteredRecipes composes the filter specification onto a recipes query.
// Tag filtering joins through recipe_tags and deduplicates; viewer-scoped
// filters join against the corresponding relationship table.
func filteredRecipes(db *gorm.DB, f RecipeFilter) *gorm.DB {
	q := db.Model(&domain.Recipe{})
	if len(f.TagSlugs) > 0 {
		q = q.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs).
			Distinct("recipes.*")
	}
	if f.AuthorID != "" {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != "" {
		q = q.Joins("JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?", f.FavoritedBy)
	}
	if f.InCartOf != "" {
		q = q.Joins("JOIN cart_entries ON cart_entries.recipe_id = recipes.id AND cart_entries.user_id = ?", f.InCartOf)
	}
	return q
}

// CountRecipes returns the number of recipes matching the filter.
func CountRecipes(ctx context.Context, db *gorm.DB, f RecipeFilter) (int64, error) {
	var total int64
	err := filteredRecipes(db.WithContext(ctx), f).
		Distinct("recipes.id").
		Count(&total).Error
	return total, err
}

// ListRecipesPage returns a page of recipes matching the filter, newest
// first, with authors preloaded.
func ListRecipesPage(ctx context.Context, db *gorm.DB, f RecipeFilter, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := filteredRecipes(db.WithContext(ctx), f).
		Preload("Author").
		Order("recipes.created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListAuthorRecipes returns the author's newest recipes capped at limit,
// used for the subscription preview. A limit <= 0 returns an empty slice.
func ListAuthorRecipes(ctx context.Context, db *gorm.DB, authorID string, limit int) ([]domain.Recipe, error) {
	if limit <= 0 {
		return []domain.Recipe{}, nil
	}
	var out []domain.Recipe
	err := db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountAuthorRecipes returns the author's total recipe count, independent of
// any preview cap.
func CountAuthorRecipes(ctx context.Context, db *gorm.DB, authorID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&n).Error
	return n, err
}
