// Package services – CatalogService
//
// This file implements the read-mostly reference catalogs: tags and
// ingredients. Catalog rows are loaded from JSON seed files at startup;
// CreateTag exists for administrative seeding and validates the #RRGGBB
// color format before touching the database.
package services

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/domain"
	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// colorRE is the accepted tag color format: "#" followed by six hex digits.
var colorRE = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// slugRE is the accepted tag slug alphabet.
var slugRE = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CatalogService provides tag and ingredient catalog operations.
type CatalogService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// ListTags returns all tags ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return repo.ListTags(ctx, s.DB)
}

// GetTag returns a single tag by id.
func (s *CatalogService) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	t, err := repo.GetTag(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return t, nil
}

// CreateTag validates and inserts a tag.
func (s *CatalogService) CreateTag(ctx context.Context, name, color, slug string) (*domain.Tag, error) {
	ve := &ValidationError{}
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" {
		ve.add("name", "must not be empty")
	}
	if !colorRE.MatchString(color) {
		ve.add("color", "must be #RRGGBB")
	}
	if slug == "" || !slugRE.MatchString(slug) {
		ve.add("slug", "must contain only letters, digits, hyphens and underscores")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	t, err := repo.CreateTag(ctx, s.DB, name, color, slug)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return t, nil
}

// ListIngredients returns ingredients ordered by name, optionally filtered
// by a case-insensitive name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]domain.Ingredient, error) {
	return repo.ListIngredients(ctx, s.DB, strings.TrimSpace(namePrefix))
}

// GetIngredient returns a single ingredient by id.
func (s *CatalogService) GetIngredient(ctx context.Context, id string) (*domain.Ingredient, error) {
	ing, err := repo.GetIngredient(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ing, nil
}

// Seed loads the ingredient and tag catalogs from JSON files. Either path
// may be empty to skip that catalog. Seeding is idempotent.
func (s *CatalogService) Seed(ctx context.Context, ingredientsPath, tagsPath string) (ingredients, tags int64, err error) {
	if ingredientsPath != "" {
		ingredients, err = repo.SeedIngredients(ctx, s.DB, ingredientsPath)
		if err != nil {
			return 0, 0, err
		}
	}
	if tagsPath != "" {
		tags, err = repo.SeedTags(ctx, s.DB, tagsPath)
		if err != nil {
			return ingredients, 0, err
		}
	}
	return ingredients, tags, nil
}
