package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogCreateTag_ValidationAndConflict(t *testing.T) {
	svc := NewCatalogService(newServiceDB(t))
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "Breakfast", "#FF8800", "breakfast")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if tag.ID == "" || tag.Slug != "breakfast" {
		t.Fatalf("unexpected tag: %+v", tag)
	}

	var ve *ValidationError
	cases := map[string][3]string{
		"empty name": {"", "#FF8800", "slug"},
		"bad color":  {"Name", "FF8800", "slug"},
		"short hex":  {"Name", "#FFF", "slug"},
		"empty slug": {"Name", "#FF8800", ""},
		"bad slug":   {"Name", "#FF8800", "bad slug!"},
	}
	for name, c := range cases {
		if _, err := svc.CreateTag(ctx, c[0], c[1], c[2]); !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}

	if _, err := svc.CreateTag(ctx, "Other", "#000000", "breakfast"); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestCatalogGetters_NotFoundSentinels(t *testing.T) {
	svc := NewCatalogService(newServiceDB(t))
	ctx := context.Background()

	if _, err := svc.GetTag(ctx, "missing"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
	if _, err := svc.GetIngredient(ctx, "missing"); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got %v", err)
	}
}

func TestCatalogSeed_LoadsBothFiles(t *testing.T) {
	svc := NewCatalogService(newServiceDB(t))
	ctx := context.Background()
	dir := t.TempDir()

	ingredients := filepath.Join(dir, "ingredients.json")
	if err := os.WriteFile(ingredients, []byte(`[{"name":"flour","measurement_unit":"g"}]`), 0o600); err != nil {
		t.Fatalf("write ingredients: %v", err)
	}
	tags := filepath.Join(dir, "tags.json")
	if err := os.WriteFile(tags, []byte(`[{"name":"Breakfast","color":"#FF8800","slug":"breakfast"}]`), 0o600); err != nil {
		t.Fatalf("write tags: %v", err)
	}

	nIng, nTags, err := svc.Seed(ctx, ingredients, tags)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if nIng != 1 || nTags != 1 {
		t.Fatalf("expected 1 ingredient and 1 tag seeded, got %d, %d", nIng, nTags)
	}

	list, err := svc.ListIngredients(ctx, "fl")
	if err != nil || len(list) != 1 || list[0].Name != "flour" {
		t.Fatalf("prefix search after seed: %+v, %v", list, err)
	}

	// Empty paths skip seeding.
	if _, _, err := svc.Seed(ctx, "", ""); err != nil {
		t.Fatalf("empty Seed: %v", err)
	}
}
