// Package services – read models
//
// This file defines the view shapes the services return to handlers: profile
// and recipe read models carrying viewer-dependent flags (is_subscribed,
// is_favorited, is_in_shopping_cart). Flags are always false for anonymous
// viewers.
package services

import (
	"github.com/foodgram/go-recipe-backend/internal/domain"
	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// ProfileView is a user profile as seen by a specific viewer.
type ProfileView struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeView is the full recipe read model: the row, its catalog
// associations, the author profile, and the viewer-dependent flags.
type RecipeView struct {
	ID               string          `json:"id"`
	Tags             []domain.Tag    `json:"tags"`
	Author           ProfileView     `json:"author"`
	Ingredients      []repo.LineView `json:"ingredients"`
	IsFavorited      bool            `json:"is_favorited"`
	IsInShoppingCart bool            `json:"is_in_shopping_cart"`
	Name             string          `json:"name"`
	Image            string          `json:"image"`
	Text             string          `json:"text"`
	CookingTime      int             `json:"cooking_time"`
}

// RecipeSummary is the compact recipe shape used by relationship responses
// and subscription previews.
type RecipeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// FollowView is one entry of the subscription listing: the followed author's
// profile plus a capped preview of their newest recipes and the uncapped
// total.
type FollowView struct {
	ProfileView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// summarize converts a recipe row to its compact shape.
func summarize(r *domain.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// profileOf converts a user row to a profile view with the given
// subscription flag.
func profileOf(u *domain.User, isSubscribed bool) ProfileView {
	return ProfileView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}
