// Package services – RecipeService
//
// This file implements the recipe aggregate lifecycle: validated creation
// and partial update, author-only mutation, explicit cascading delete, and
// the filtered listing with viewer-dependent flags. Aggregate writes (the
// recipe row plus its tag links and ingredient lines) run inside a single
// transaction so the unit commits or rolls back as a whole.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/domain"
	"github.com/foodgram/go-recipe-backend/internal/repo"
	"github.com/foodgram/go-recipe-backend/internal/storage"
)

// Cooking time and per-line amounts share the same inclusive bounds.
const (
	minAmount = 1
	maxAmount = 10000
)

// RecipeLineInput is one ingredient reference of a create/update request.
type RecipeLineInput struct {
	IngredientID string `json:"id"`
	Amount       int    `json:"amount"`
}

// RecipeInput carries the fields of a recipe creation request. Image is a
// base64 payload, optionally in data-URI form.
type RecipeInput struct {
	Name        string            `json:"name"`
	Text        string            `json:"text"`
	Image       string            `json:"image"`
	CookingTime int               `json:"cooking_time"`
	TagIDs      []string          `json:"tags"`
	Ingredients []RecipeLineInput `json:"ingredients"`
}

// RecipeUpdate carries the fields of a partial update. Nil pointers and nil
// slices mean "keep the current value"; a non-nil Ingredients or TagIDs
// slice replaces the whole set.
type RecipeUpdate struct {
	Name        *string           `json:"name"`
	Text        *string           `json:"text"`
	Image       *string           `json:"image"`
	CookingTime *int              `json:"cooking_time"`
	TagIDs      []string          `json:"tags"`
	Ingredients []RecipeLineInput `json:"ingredients"`
}

// RecipeListFilter is the handler-facing filter of the recipe listing.
// OnlyFavorited and OnlyInCart are viewer-scoped and ignored for anonymous
// viewers.
type RecipeListFilter struct {
	TagSlugs      []string
	AuthorID      string
	OnlyFavorited bool
	OnlyInCart    bool
}

// RecipeService provides recipe aggregate operations.
type RecipeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Images persists uploaded image blobs.
	Images storage.ImageStore
}

// NewRecipeService constructs a RecipeService.
func NewRecipeService(db *gorm.DB, images storage.ImageStore) *RecipeService {
	return &RecipeService{DB: db, Images: images}
}

// Create validates the input, stores the image blob, and writes the recipe
// aggregate in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID string, in RecipeInput) (RecipeView, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return RecipeView{}, err
	}

	data, ext, err := storage.DecodeBase64Image(in.Image)
	if err != nil {
		ve := &ValidationError{}
		ve.add("image", "must be a valid base64-encoded image")
		return RecipeView{}, ve
	}
	imageRef, err := s.Images.Save(ctx, data, ext)
	if err != nil {
		return RecipeView{}, err
	}

	var created *domain.Recipe
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.CreateRecipe(ctx, tx, authorID, strings.TrimSpace(in.Name), in.Text, imageRef, in.CookingTime)
		if err != nil {
			return err
		}
		if err := repo.ReplaceTagLinks(ctx, tx, r.ID, in.TagIDs); err != nil {
			return err
		}
		lines := make([]domain.IngredientLine, 0, len(in.Ingredients))
		for _, l := range in.Ingredients {
			lines = append(lines, domain.IngredientLine{IngredientID: l.IngredientID, Amount: l.Amount})
		}
		if err := repo.ReplaceIngredientLines(ctx, tx, r.ID, lines); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return RecipeView{}, err
	}
	return s.Get(ctx, created.ID, authorID)
}

// Update applies a partial update to a recipe owned by userID. Supplying
// Ingredients or TagIDs replaces the whole set; omitted fields keep their
// current value.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID string, up RecipeUpdate) (RecipeView, error) {
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return RecipeView{}, ErrRecipeNotFound
		}
		return RecipeView{}, err
	}
	if r.AuthorID != userID {
		return RecipeView{}, ErrNotRecipeAuthor
	}
	if err := s.validateUpdate(ctx, up); err != nil {
		return RecipeView{}, err
	}

	fields := map[string]any{}
	if up.Name != nil {
		fields["name"] = strings.TrimSpace(*up.Name)
	}
	if up.Text != nil {
		fields["text"] = *up.Text
	}
	if up.CookingTime != nil {
		fields["cooking_time"] = *up.CookingTime
	}
	if up.Image != nil {
		data, ext, err := storage.DecodeBase64Image(*up.Image)
		if err != nil {
			ve := &ValidationError{}
			ve.add("image", "must be a valid base64-encoded image")
			return RecipeView{}, ve
		}
		ref, err := s.Images.Save(ctx, data, ext)
		if err != nil {
			return RecipeView{}, err
		}
		fields["image"] = ref
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateRecipeFields(ctx, tx, recipeID, fields); err != nil {
			return err
		}
		if up.TagIDs != nil {
			if err := repo.ReplaceTagLinks(ctx, tx, recipeID, up.TagIDs); err != nil {
				return err
			}
		}
		if up.Ingredients != nil {
			lines := make([]domain.IngredientLine, 0, len(up.Ingredients))
			for _, l := range up.Ingredients {
				lines = append(lines, domain.IngredientLine{IngredientID: l.IngredientID, Amount: l.Amount})
			}
			if err := repo.ReplaceIngredientLines(ctx, tx, recipeID, lines); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RecipeView{}, err
	}
	return s.Get(ctx, recipeID, userID)
}

// Delete removes a recipe owned by userID together with its lines, tag
// links, favorites, and cart entries.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return ErrRecipeNotFound
		}
		return err
	}
	if r.AuthorID != userID {
		return ErrNotRecipeAuthor
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteRecipeCascade(ctx, tx, recipeID)
	})
}

// Get returns the full recipe view as seen by viewerID (empty for
// anonymous).
func (s *RecipeService) Get(ctx context.Context, recipeID, viewerID string) (RecipeView, error) {
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if isNotFound(err) {
			return RecipeView{}, ErrRecipeNotFound
		}
		return RecipeView{}, err
	}
	return s.buildView(ctx, r, viewerID)
}

// Stats returns the recipe count and the newest update timestamp, the
// inputs of the listing's cache validator.
func (s *RecipeService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.RecipesStats(ctx, s.DB)
}

// ListPage returns a page of recipe views, newest first, honoring the
// filter. Viewer-scoped filter flags are dropped for anonymous viewers.
func (s *RecipeService) ListPage(ctx context.Context, viewerID string, f RecipeListFilter, page, pageSize int) ([]RecipeView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rf := repo.RecipeFilter{TagSlugs: f.TagSlugs, AuthorID: f.AuthorID}
	if viewerID != "" {
		if f.OnlyFavorited {
			rf.FavoritedBy = viewerID
		}
		if f.OnlyInCart {
			rf.InCartOf = viewerID
		}
	}

	total, err := repo.CountRecipes(ctx, s.DB, rf)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []RecipeView{}, 0, nil
	}

	rows, err := repo.ListRecipesPage(ctx, s.DB, rf, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RecipeView, 0, len(rows))
	for i := range rows {
		v, err := s.buildView(ctx, &rows[i], viewerID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

// buildView assembles the read model of one recipe row.
func (s *RecipeService) buildView(ctx context.Context, r *domain.Recipe, viewerID string) (RecipeView, error) {
	tags, err := repo.ListRecipeTags(ctx, s.DB, r.ID)
	if err != nil {
		return RecipeView{}, err
	}
	lines, err := repo.ListLineViews(ctx, s.DB, r.ID)
	if err != nil {
		return RecipeView{}, err
	}

	var favorited, inCart, subscribed bool
	if viewerID != "" {
		if favorited, err = repo.FavoriteExists(ctx, s.DB, viewerID, r.ID); err != nil {
			return RecipeView{}, err
		}
		if inCart, err = repo.CartEntryExists(ctx, s.DB, viewerID, r.ID); err != nil {
			return RecipeView{}, err
		}
		if viewerID != r.AuthorID {
			if subscribed, err = repo.FollowExists(ctx, s.DB, viewerID, r.AuthorID); err != nil {
				return RecipeView{}, err
			}
		}
	}

	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           profileOf(&r.Author, subscribed),
		Ingredients:      lines,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}, nil
}

// validateInput checks every creation field and aggregates failures,
// including unknown tag and ingredient references.
func (s *RecipeService) validateInput(ctx context.Context, in RecipeInput) error {
	ve := &ValidationError{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		ve.add("name", "must not be empty")
	case utf8.RuneCountInString(name) > 200:
		ve.add("name", "must be at most 200 characters")
	}
	if strings.TrimSpace(in.Text) == "" {
		ve.add("text", "must not be empty")
	}
	if in.CookingTime < minAmount || in.CookingTime > maxAmount {
		ve.add("cooking_time", fmt.Sprintf("must be between %d and %d", minAmount, maxAmount))
	}
	if strings.TrimSpace(in.Image) == "" {
		ve.add("image", "must not be empty")
	}

	if err := s.validateTagIDs(ctx, ve, in.TagIDs); err != nil {
		return err
	}
	if err := s.validateLines(ctx, ve, in.Ingredients); err != nil {
		return err
	}

	return ve.orNil()
}

// validateUpdate checks only the fields present in a partial update.
func (s *RecipeService) validateUpdate(ctx context.Context, up RecipeUpdate) error {
	ve := &ValidationError{}

	if up.Name != nil {
		name := strings.TrimSpace(*up.Name)
		switch {
		case name == "":
			ve.add("name", "must not be empty")
		case utf8.RuneCountInString(name) > 200:
			ve.add("name", "must be at most 200 characters")
		}
	}
	if up.Text != nil && strings.TrimSpace(*up.Text) == "" {
		ve.add("text", "must not be empty")
	}
	if up.CookingTime != nil && (*up.CookingTime < minAmount || *up.CookingTime > maxAmount) {
		ve.add("cooking_time", fmt.Sprintf("must be between %d and %d", minAmount, maxAmount))
	}
	if up.TagIDs != nil {
		if err := s.validateTagIDs(ctx, ve, up.TagIDs); err != nil {
			return err
		}
	}
	if up.Ingredients != nil {
		if err := s.validateLines(ctx, ve, up.Ingredients); err != nil {
			return err
		}
	}

	return ve.orNil()
}

// validateTagIDs requires a non-empty, duplicate-free set of existing tag
// ids. A store failure is returned as-is, not folded into the field errors.
func (s *RecipeService) validateTagIDs(ctx context.Context, ve *ValidationError, ids []string) error {
	if len(ids) == 0 {
		ve.add("tags", "must contain at least one tag")
		return nil
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			ve.add("tags", "must not contain the same tag twice")
			return nil
		}
		seen[id] = true
	}
	found, err := repo.GetTagsByIDs(ctx, s.DB, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		ve.add("tags", "contains an unknown tag")
	}
	return nil
}

// validateLines requires a non-empty, duplicate-free set of existing
// ingredients with in-bounds amounts. A store failure is returned as-is, not
// folded into the field errors.
func (s *RecipeService) validateLines(ctx context.Context, ve *ValidationError, lines []RecipeLineInput) error {
	if len(lines) == 0 {
		ve.add("ingredients", "must contain at least one ingredient")
		return nil
	}
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if seen[l.IngredientID] {
			ve.add("ingredients", "must not contain the same ingredient twice")
			return nil
		}
		seen[l.IngredientID] = true
		ids = append(ids, l.IngredientID)
		if l.Amount < minAmount || l.Amount > maxAmount {
			ve.add("ingredients", fmt.Sprintf("amount must be between %d and %d", minAmount, maxAmount))
			return nil
		}
	}
	found, err := repo.GetIngredientsByIDs(ctx, s.DB, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		ve.add("ingredients", "contains an unknown ingredient")
	}
	return nil
}
