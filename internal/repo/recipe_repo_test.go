package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/go-recipe-backend/internal/domain"
)

func newRecipeRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("recipe_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedRecipeAuthor(t *testing.T, db *gorm.DB, id string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:       id,
		Username: "user_" + id,
		Email:    id + "@example.com",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed author %s: %v", id, err)
	}
	return u
}

func TestCreateRecipe_And_GetWithAuthor(t *testing.T) {
	db := newRecipeRepoDB(t)
	seedRecipeAuthor(t, db, "u1")

	r, err := CreateRecipe(context.Background(), db, "u1", "Pancakes", "Mix and fry.", "media/p.png", 20)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if r.ID == "" || r.AuthorID != "u1" || r.CookingTime != 20 {
		t.Fatalf("unexpected Recipe fields: %+v", r)
	}

	got, err := GetRecipe(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Name != "Pancakes" || got.Author.Username != "user_u1" {
		t.Fatalf("expected author preloaded, got %+v", got)
	}

	if _, err := GetRecipe(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRecipeFields_SuccessNoopAndNotFound(t *testing.T) {
	db := newRecipeRepoDB(t)
	seedRecipeAuthor(t, db, "u1")
	r, err := CreateRecipe(context.Background(), db, "u1", "Old", "txt", "img", 5)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Empty field map is a no-op, not an error.
	if err := UpdateRecipeFields(context.Background(), db, r.ID, nil); err != nil {
		t.Fatalf("empty update: %v", err)
	}

	if err := UpdateRecipeFields(context.Background(), db, r.ID, map[string]any{"name": "New", "cooking_time": 7}); err != nil {
		t.Fatalf("UpdateRecipeFields: %v", err)
	}
	got, err := GetRecipe(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "New" || got.CookingTime != 7 {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := UpdateRecipeFields(context.Background(), db, "missing", map[string]any{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceIngredientLines_DestructiveReplace(t *testing.T) {
	db := newRecipeRepoDB(t)
	seedRecipeAuthor(t, db, "u1")
	r, _ := CreateRecipe(context.Background(), db, "u1", "R", "t", "i", 5)
	flour, _ := CreateIngredient(context.Background(), db, "flour", "g")
	sugar, _ := CreateIngredient(context.Background(), db, "sugar", "g")
	milk, _ := CreateIngredient(context.Background(), db, "milk", "ml")

	first := []domain.IngredientLine{
		{IngredientID: flour.ID, Amount: 200},
		{IngredientID: sugar.ID, Amount: 50},
	}
	if err := ReplaceIngredientLines(context.Background(), db, r.ID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	// Second replace carries only milk: flour and sugar lines must be gone.
	second := []domain.IngredientLine{{IngredientID: milk.ID, Amount: 300}}
	if err := ReplaceIngredientLines(context.Background(), db, r.ID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	views, err := ListLineViews(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("ListLineViews: %v", err)
	}
	if len(views) != 1 || views[0].Name != "milk" || views[0].Amount != 300 || views[0].MeasurementUnit != "ml" {
		t.Fatalf("unexpected line views after replace: %+v", views)
	}

	n, err := CountLines(context.Background(), db, r.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountLines: got %d, %v", n, err)
	}
}

func TestListLineViews_PreservesRequestOrder(t *testing.T) {
	db := newRecipeRepoDB(t)
	seedRecipeAuthor(t, db, "u1")
	r, _ := CreateRecipe(context.Background(), db, "u1", "R", "t", "i", 5)
	flour, _ := CreateIngredient(context.Background(), db, "flour", "g")
	milk, _ := CreateIngredient(context.Background(), db, "milk", "ml")

	// milk first, against alphabetical order
	lines := []domain.IngredientLine{
		{IngredientID: milk.ID, Amount: 300},
		{IngredientID: flour.ID, Amount: 200},
	}
	if err := ReplaceIngredientLines(context.Background(), db, r.ID, lines); err != nil {
		t.Fatalf("replace: %v", err)
	}

	views, err := ListLineViews(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("ListLineViews: %v", err)
	}
	if len(views) != 2 || views[0].Name != "milk" || views[1].Name != "flour" {
		t.Fatalf("expected lines in request order, got %+v", views)
	}
}

func TestReplaceIngredientLines_DuplicateIngredientRejected(t *testing.T) {
	db := newRecipeRepoDB(t)
	seedRecipeAuthor(t, db, "u1")
	r, _ := CreateRecipe(context.Background(), db, "u1", "R", "t", "i", 5)
	flour, _ := CreateIngredient(context.Background(), db, "flour", "g")

	dup := []domain.IngredientLine{
		{IngredientID: flour.ID, Amount: 100},
		{IngredientID: flour.ID, Amount: 200},
	}
	if err := ReplaceIngredientLines(context.Background(), db, r.ID, dup); err == nil {
		t.Fatalf("expected unique violation on duplicate ingredient in one recipe")
	}
}

func TestReplaceTagLinks_SetSemantics(t *testing.T) {
	db := newRecipeRepoDB(t)
	seedRecipeAuthor(t, db, "u1")
	r, _ := CreateRecipe(context.Background(), db, "u1", "R", "t", "i", 5)
	breakfast, _ := CreateTag(context.Background(), db, "Breakfast", "#FF8800", "breakfast")
	dinner, _ := CreateTag(context.Background(), db, "Dinner", "#0000FF", "dinner")

	if err := ReplaceTagLinks(context.Background(), db, r.ID, []string{breakfast.ID, dinner.ID}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := ReplaceTagLinks(context.Background(), db, r.ID, []string{dinner.ID}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	tags, err := ListRecipeTags(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("ListRecipeTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Slug != "dinner" {
		t.Fatalf("unexpected tags after replace: %+v", tags)
	}
}

func TestListRecipesPage_FiltersAndOrder(t *testing.T) {
	db := newRecipeRepoDB(t)
	ctx := context.Background()
	seedRecipeAuthor(t, db, "u1")
	seedRecipeAuthor(t, db, "u2")
	breakfast, _ := CreateTag(ctx, db, "Breakfast", "#FF8800", "breakfast")
	dinner, _ := CreateTag(ctx, db, "Dinner", "#0000FF", "dinner")

	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	mk := func(id, author string, at time.Time) {
		r := domain.Recipe{ID: id, AuthorID: author, Name: id, Text: "t", Image: "i", CookingTime: 5, CreatedAt: at}
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	mk("r1", "u1", base)
	mk("r2", "u1", base.Add(time.Second))
	mk("r3", "u2", base.Add(2*time.Second))

	if err := ReplaceTagLinks(ctx, db, "r1", []string{breakfast.ID, dinner.ID}); err != nil {
		t.Fatalf("tag r1: %v", err)
	}
	if err := ReplaceTagLinks(ctx, db, "r3", []string{dinner.ID}); err != nil {
		t.Fatalf("tag r3: %v", err)
	}
	if _, err := CreateFavorite(ctx, db, "u2", "r1"); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if _, err := CreateCartEntry(ctx, db, "u2", "r2"); err != nil {
		t.Fatalf("cart: %v", err)
	}

	// No filter: newest first, all three.
	all, err := ListRecipesPage(ctx, db, RecipeFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].ID != "r3" || all[2].ID != "r1" {
		t.Fatalf("unexpected unfiltered order: %+v", all)
	}

	// Author filter.
	byAuthor, err := ListRecipesPage(ctx, db, RecipeFilter{AuthorID: "u1"}, 0, 10)
	if err != nil || len(byAuthor) != 2 {
		t.Fatalf("author filter: %+v, %v", byAuthor, err)
	}

	// Tag filter matches any of the given slugs; r1 carries both tags but
	// appears once.
	byTags, err := ListRecipesPage(ctx, db, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, 0, 10)
	if err != nil {
		t.Fatalf("tag filter: %v", err)
	}
	if len(byTags) != 2 {
		t.Fatalf("expected r1 and r3 once each, got %+v", byTags)
	}
	total, err := CountRecipes(ctx, db, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}})
	if err != nil || total != 2 {
		t.Fatalf("CountRecipes tag filter: got %d, %v", total, err)
	}

	// Viewer-scoped filters.
	fav, err := ListRecipesPage(ctx, db, RecipeFilter{FavoritedBy: "u2"}, 0, 10)
	if err != nil || len(fav) != 1 || fav[0].ID != "r1" {
		t.Fatalf("favorited filter: %+v, %v", fav, err)
	}
	cart, err := ListRecipesPage(ctx, db, RecipeFilter{InCartOf: "u2"}, 0, 10)
	if err != nil || len(cart) != 1 || cart[0].ID != "r2" {
		t.Fatalf("cart filter: %+v, %v", cart, err)
	}

	// Combined filters intersect.
	both, err := ListRecipesPage(ctx, db, RecipeFilter{AuthorID: "u1", FavoritedBy: "u2"}, 0, 10)
	if err != nil || len(both) != 1 || both[0].ID != "r1" {
		t.Fatalf("combined filter: %+v, %v", both, err)
	}
}

func TestDeleteRecipeCascade_RemovesDependents(t *testing.T) {
	db := newRecipeRepoDB(t)
	ctx := context.Background()
	seedRecipeAuthor(t, db, "u1")
	seedRecipeAuthor(t, db, "u2")
	r, _ := CreateRecipe(ctx, db, "u1", "R", "t", "i", 5)
	flour, _ := CreateIngredient(ctx, db, "flour", "g")
	tag, _ := CreateTag(ctx, db, "Dinner", "#0000FF", "dinner")

	if err := ReplaceIngredientLines(ctx, db, r.ID, []domain.IngredientLine{{IngredientID: flour.ID, Amount: 10}}); err != nil {
		t.Fatalf("lines: %v", err)
	}
	if err := ReplaceTagLinks(ctx, db, r.ID, []string{tag.ID}); err != nil {
		t.Fatalf("tags: %v", err)
	}
	if _, err := CreateFavorite(ctx, db, "u2", r.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if _, err := CreateCartEntry(ctx, db, "u2", r.ID); err != nil {
		t.Fatalf("cart: %v", err)
	}

	if err := DeleteRecipeCascade(ctx, db, r.ID); err != nil {
		t.Fatalf("DeleteRecipeCascade: %v", err)
	}

	if _, err := GetRecipe(ctx, db, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected recipe gone, got %v", err)
	}
	for table, model := range map[string]any{
		"ingredient_lines": &domain.IngredientLine{},
		"recipe_tags":      &domain.RecipeTag{},
		"favorites":        &domain.Favorite{},
		"cart_entries":     &domain.CartEntry{},
	} {
		var n int64
		if err := db.Model(model).Where("recipe_id = ?", r.ID).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Fatalf("expected no %s rows left, got %d", table, n)
		}
	}

	if err := DeleteRecipeCascade(ctx, db, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListAuthorRecipes_PreviewCapAndCount(t *testing.T) {
	db := newRecipeRepoDB(t)
	ctx := context.Background()
	seedRecipeAuthor(t, db, "u1")

	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		r := domain.Recipe{
			ID: fmt.Sprintf("r%d", i), AuthorID: "u1", Name: "n", Text: "t",
			Image: "i", CookingTime: 5, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	preview, err := ListAuthorRecipes(ctx, db, "u1", 3)
	if err != nil {
		t.Fatalf("ListAuthorRecipes: %v", err)
	}
	if len(preview) != 3 || preview[0].ID != "r5" || preview[2].ID != "r3" {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	empty, err := ListAuthorRecipes(ctx, db, "u1", 0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty preview for limit 0, got %+v, %v", empty, err)
	}

	total, err := CountAuthorRecipes(ctx, db, "u1")
	if err != nil || total != 5 {
		t.Fatalf("CountAuthorRecipes: got %d, %v", total, err)
	}
}
