// Package domain defines the persistence models for users, the ingredient
// and tag catalogs, recipes with their ingredient lines, and the
// uniqueness-constrained relationship sets (favorites, shopping cart,
// follows). These types are mapped with GORM and form the core data layer
// of the recipe application.
package domain

import (
	"time"
)

// User is the long-lived root entity owning recipes and relationships.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: unique handle, pattern-restricted (see services).
//   - Email: unique contact address.
//   - PasswordHash: bcrypt hash, never serialized.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	Email        string    `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150);not null"`
	LastName     string    `json:"last_name"  gorm:"type:varchar(150);not null"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Ingredient is flat reference data: a name plus the unit it is measured in.
// Rows are loaded once at startup and rarely mutated.
type Ingredient struct {
	ID              string `json:"id"               gorm:"type:char(36);primaryKey"`
	Name            string `json:"name"             gorm:"type:varchar(200);not null;uniqueIndex:ux_ingredients_name"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(200);not null"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string { return "ingredients" }

// Tag is flat reference data used to categorize recipes. Color is a hex
// string validated as #RRGGBB before rows are created.
type Tag struct {
	ID    string `json:"id"    gorm:"type:char(36);primaryKey"`
	Name  string `json:"name"  gorm:"type:varchar(200);not null"`
	Color string `json:"color" gorm:"type:varchar(7);not null"`
	Slug  string `json:"slug"  gorm:"type:varchar(200);not null;uniqueIndex:ux_tags_slug"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// Recipe is the aggregate root: a recipe row plus its dependent
// IngredientLine and RecipeTag rows, treated as one consistency unit.
// Creation and update of the aggregate run inside a single transaction.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - AuthorID: owning user; only the author may update or delete.
//   - Image: stored path/URL of the uploaded image blob.
//   - CookingTime: minutes, bounded [1, 10000].
//   - CreatedAt: immutable; lists order by it descending.
type Recipe struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	AuthorID    string    `json:"author_id"    gorm:"type:char(36);not null;index:idx_recipes_author"`
	Name        string    `json:"name"         gorm:"type:varchar(200);not null"`
	Text        string    `json:"text"         gorm:"type:text;not null"`
	Image       string    `json:"image"        gorm:"type:varchar(255);not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null;check:cooking_time BETWEEN 1 AND 10000"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_recipes_created"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Author is the owning user.
	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// IngredientLine joins a recipe to an ingredient with an amount. A recipe
// cannot list the same ingredient twice: (recipe_id, ingredient_id) is
// unique. Lines are owned by the recipe and are deleted with it, and an
// update that supplies lines replaces the whole set.
type IngredientLine struct {
	ID           string `json:"id"            gorm:"type:char(36);primaryKey"`
	RecipeID     string `json:"recipe_id"     gorm:"type:char(36);not null;uniqueIndex:ux_line_recipe_ingredient"`
	IngredientID string `json:"ingredient_id" gorm:"type:char(36);not null;uniqueIndex:ux_line_recipe_ingredient"`
	Amount       int    `json:"amount"        gorm:"not null;check:amount BETWEEN 1 AND 10000"`
	// Position keeps the lines in the order the author listed them.
	Position int `json:"-" gorm:"not null;default:0"`

	Recipe     Recipe     `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for IngredientLine.
func (IngredientLine) TableName() string { return "ingredient_lines" }

// RecipeTag associates a recipe with a tag (set semantics: updates replace
// the whole association set).
type RecipeTag struct {
	ID       string `json:"id"        gorm:"type:char(36);primaryKey"`
	RecipeID string `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_recipe_tag"`
	TagID    string `json:"tag_id"    gorm:"type:char(36);not null;uniqueIndex:ux_recipe_tag"`

	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag    Tag    `json:"-" gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RecipeTag.
func (RecipeTag) TableName() string { return "recipe_tags" }

// Favorite marks a recipe as a favorite of a user. The (user_id, recipe_id)
// pair is unique; a second add is a conflict, not a no-op. Rows are hard
// deleted so that remove-then-add works and a double remove is a distinct
// not-found condition.
type Favorite struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_favorite_user_recipe"`
	RecipeID  string    `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_favorite_user_recipe"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// CartEntry places a recipe in a user's shopping cart. Same uniqueness and
// deletion semantics as Favorite.
type CartEntry struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_cart_user_recipe"`
	RecipeID  string    `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_cart_user_recipe"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CartEntry.
func (CartEntry) TableName() string { return "cart_entries" }

// Follow subscribes a user to an author. (user_id, author_id) is unique and
// self-follow is rejected before the row is ever written.
type Follow struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex:ux_follow_user_author"`
	AuthorID  string    `json:"author_id" gorm:"type:char(36);not null;uniqueIndex:ux_follow_user_author"`
	CreatedAt time.Time `json:"created_at"`

	User   User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string { return "follows" }
