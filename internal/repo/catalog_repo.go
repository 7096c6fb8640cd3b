// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the flat
// reference catalogs: ingredients and tags.
//
// Error semantics match the rest of the package: gorm.ErrRecordNotFound for
// missing rows, raw DB errors otherwise.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/domain"
)

// CreateIngredient inserts an ingredient row. Name uniqueness is enforced by
// the database schema.
func CreateIngredient(ctx context.Context, db *gorm.DB, name, unit string) (*domain.Ingredient, error) {
	ing := &domain.Ingredient{
		ID:              uuid.NewString(),
		Name:            name,
		MeasurementUnit: unit,
	}
	if err := db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, err
	}
	return ing, nil
}

// GetIngredient fetches a single ingredient by ID, or ErrNotFound.
func GetIngredient(ctx context.Context, db *gorm.DB, id string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := db.WithContext(ctx).Where("id = ?", id).First(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// ListIngredients returns ingredients ordered by name. When prefix is
// non-empty, only ingredients whose name starts with it (case-insensitive)
// are returned.
func ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error) {
	q := db.WithContext(ctx).Model(&domain.Ingredient{})
	if prefix != "" {
		q = q.Where("name LIKE ? COLLATE NOCASE", prefix+"%")
	}
	var out []domain.Ingredient
	err := q.Order("name asc").Find(&out).Error
	return out, err
}

// GetIngredientsByIDs fetches the ingredients matching ids. Callers compare
// the result length against len(ids) to detect unknown references.
func GetIngredientsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// CountIngredients returns the total number of catalog ingredients.
func CountIngredients(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Ingredient{}).Count(&total).Error
	return total, err
}

// CreateTag inserts a tag row. Slug uniqueness is enforced by the schema;
// color format is validated by the catalog service before reaching here.
func CreateTag(ctx context.Context, db *gorm.DB, name, color, slug string) (*domain.Tag, error) {
	t := &domain.Tag{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
		Slug:  slug,
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTag fetches a single tag by ID, or ErrNotFound.
func GetTag(ctx context.Context, db *gorm.DB, id string) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns all tags ordered by name.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// GetTagsByIDs fetches the tags matching ids. Callers compare the result
// length against len(ids) to detect unknown references.
func GetTagsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// CountTags returns the total number of catalog tags.
func CountTags(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Tag{}).Count(&total).Error
	return total, err
}
