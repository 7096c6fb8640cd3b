// Favorite and shopping-cart HTTP handlers.
//
// Both relations behave the same way over HTTP: POST adds the edge and
// returns a compact recipe summary with 201, DELETE removes it with 204.
// Adding an existing edge is a conflict; removing a missing one is not found.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Favorite marks the recipe as a favorite of the authenticated user.
func (h *Handlers) Favorite(c *gin.Context) {
	summary, err := h.relationSvc.AddFavorite(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, summary)
}

// Unfavorite removes the recipe from the user's favorites.
func (h *Handlers) Unfavorite(c *gin.Context) {
	if err := h.relationSvc.RemoveFavorite(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// AddToCart puts the recipe into the user's shopping cart.
func (h *Handlers) AddToCart(c *gin.Context) {
	summary, err := h.relationSvc.AddToCart(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, summary)
}

// RemoveFromCart takes the recipe out of the user's shopping cart.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	if err := h.relationSvc.RemoveFromCart(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
