package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(User{}).TableName():           "users",
		(Ingredient{}).TableName():     "ingredients",
		(Tag{}).TableName():            "tags",
		(Recipe{}).TableName():         "recipes",
		(IngredientLine{}).TableName(): "ingredient_lines",
		(RecipeTag{}).TableName():      "recipe_tags",
		(Favorite{}).TableName():       "favorites",
		(CartEntry{}).TableName():      "cart_entries",
		(Follow{}).TableName():         "follows",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Tables_And_UniqueIndexes(t *testing.T) {
	db := newDomainDB(t)

	all := []any{
		&User{}, &Ingredient{}, &Tag{},
		&Recipe{}, &IngredientLine{}, &RecipeTag{},
		&Favorite{}, &CartEntry{}, &Follow{},
	}
	if err := db.AutoMigrate(all...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range all {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	type idx struct {
		model any
		name  string
	}
	for _, i := range []idx{
		{&User{}, "ux_users_username"},
		{&User{}, "ux_users_email"},
		{&Ingredient{}, "ux_ingredients_name"},
		{&Tag{}, "ux_tags_slug"},
		{&Recipe{}, "idx_recipes_author"},
		{&IngredientLine{}, "ux_line_recipe_ingredient"},
		{&RecipeTag{}, "ux_recipe_tag"},
		{&Favorite{}, "ux_favorite_user_recipe"},
		{&CartEntry{}, "ux_cart_user_recipe"},
		{&Follow{}, "ux_follow_user_author"},
	} {
		if !m.HasIndex(i.model, i.name) {
			t.Fatalf("expected index %s on %T", i.name, i.model)
		}
	}
}

func TestUniquePairs_AreEnforced(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&User{}, &Ingredient{}, &Tag{}, &Recipe{}, &IngredientLine{}, &RecipeTag{}, &Favorite{}, &CartEntry{}, &Follow{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	u := User{ID: uuid.NewString(), Username: "pairs", Email: "pairs@example.com", FirstName: "P", LastName: "Q", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	r := Recipe{ID: uuid.NewString(), AuthorID: u.ID, Name: "R", Text: "T", Image: "i.png", CookingTime: 5, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	fav := Favorite{ID: uuid.NewString(), UserID: u.ID, RecipeID: r.ID}
	if err := db.Create(&fav).Error; err != nil {
		t.Fatalf("first favorite: %v", err)
	}
	dup := Favorite{ID: uuid.NewString(), UserID: u.ID, RecipeID: r.ID}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("duplicate favorite pair must fail")
	}
}

func TestCookingTime_CheckConstraint(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&User{}, &Recipe{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	u := User{ID: uuid.NewString(), Username: "check", Email: "check@example.com", FirstName: "C", LastName: "K", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	bad := Recipe{ID: uuid.NewString(), AuthorID: u.ID, Name: "Zero", Text: "T", Image: "i.png", CookingTime: 0}
	if err := db.Create(&bad).Error; err == nil {
		t.Fatal("cooking_time=0 must violate the check constraint")
	}
}
