// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file loads the reference catalogs (ingredients and
// tags) from JSON files at startup. Seeding is idempotent: rows already
// present are left untouched and only missing entries are inserted.
package repo

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/go-recipe-backend/internal/domain"
)

// ingredientSeed mirrors one entry of the ingredients JSON file.
type ingredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// tagSeed mirrors one entry of the tags JSON file.
type tagSeed struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// SeedIngredients loads ingredient rows from the JSON file at path and
// inserts any that are missing. Existing rows (matched on the unique name)
// are left as-is.
func SeedIngredients(ctx context.Context, db *gorm.DB, path string) (int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var seeds []ingredientSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, err
	}
	if len(seeds) == 0 {
		return 0, nil
	}

	rows := make([]domain.Ingredient, 0, len(seeds))
	for _, s := range seeds {
		rows = append(rows, domain.Ingredient{
			ID:              uuid.NewString(),
			Name:            s.Name,
			MeasurementUnit: s.MeasurementUnit,
		})
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

// SeedTags loads tag rows from the JSON file at path and inserts any that
// are missing, matched on the unique slug.
func SeedTags(ctx context.Context, db *gorm.DB, path string) (int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var seeds []tagSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, err
	}
	if len(seeds) == 0 {
		return 0, nil
	}

	rows := make([]domain.Tag, 0, len(seeds))
	for _, s := range seeds {
		rows = append(rows, domain.Tag{
			ID:    uuid.NewString(),
			Name:  s.Name,
			Color: s.Color,
			Slug:  s.Slug,
		})
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}
