// Package services – ShoppingListService
//
// This file renders the consolidated shopping list: the ingredient lines of
// every recipe in the user's cart, folded by (name, unit) with amounts
// summed, sorted with a locale-aware collator, and formatted as a plain-text
// attachment.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// ShoppingListService computes and renders the consolidated shopping list.
type ShoppingListService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Locale drives the ingredient name sort order in the rendered list.
	Locale language.Tag
}

// NewShoppingListService constructs a ShoppingListService with an undefined
// locale (language-neutral collation).
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{DB: db, Locale: language.Und}
}

// Items returns the consolidated rows of userID's shopping list, sorted by
// ingredient name, ties broken by unit. An empty cart yields an empty slice,
// not an error.
func (s *ShoppingListService) Items(ctx context.Context, userID string) ([]repo.ShoppingItem, error) {
	items, err := repo.SumCartIngredients(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	c := collate.New(s.Locale)
	sort.Slice(items, func(i, j int) bool {
		if r := c.CompareString(items[i].Name, items[j].Name); r != 0 {
			return r < 0
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

// Render formats the consolidated list as the plain-text document served as
// a download. The empty-cart document is just the header.
func (s *ShoppingListService) Render(ctx context.Context, userID string) (string, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, it := range items {
		fmt.Fprintf(&b, " - %s: %d %s.\n", it.Name, it.Total, it.MeasurementUnit)
	}
	return b.String(), nil
}

