// Recipe HTTP handlers.
//
// This file exposes REST endpoints for recipe resources:
//   - GET    /recipes       (list, filtered and paginated, ETag support)
//   - POST   /recipes       (create, authenticated)
//   - GET    /recipes/{id}  (detail)
//   - PATCH  /recipes/{id}  (partial update, author only)
//   - DELETE /recipes/{id}  (delete, author only)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-recipe-backend/internal/domain"
	"github.com/foodgram/go-recipe-backend/internal/http/middleware"
	"github.com/foodgram/go-recipe-backend/internal/services"
	"github.com/foodgram/go-recipe-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService defines the identity operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates a new user from validated input.
	Register(ctx context.Context, in services.RegisterInput) (services.ProfileView, error)
	// Login verifies credentials and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	// Get returns a profile as seen by viewerID.
	Get(ctx context.Context, id, viewerID string) (services.ProfileView, error)
	// ListPage returns a page of profiles and the total count.
	ListPage(ctx context.Context, viewerID string, page, pageSize int) ([]services.ProfileView, int64, error)
	// UpdateProfile changes the caller's first and last name.
	UpdateProfile(ctx context.Context, userID, firstName, lastName string) (services.ProfileView, error)
}

// CatalogService defines tag and ingredient catalog reads.
type CatalogService interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]domain.Ingredient, error)
	GetIngredient(ctx context.Context, id string) (*domain.Ingredient, error)
}

// RecipeService defines recipe aggregate operations.
type RecipeService interface {
	Create(ctx context.Context, authorID string, in services.RecipeInput) (services.RecipeView, error)
	Update(ctx context.Context, userID, recipeID string, up services.RecipeUpdate) (services.RecipeView, error)
	Delete(ctx context.Context, userID, recipeID string) error
	Get(ctx context.Context, recipeID, viewerID string) (services.RecipeView, error)
	ListPage(ctx context.Context, viewerID string, f services.RecipeListFilter, page, pageSize int) ([]services.RecipeView, int64, error)
	// Stats returns the recipe count and newest update timestamp, the inputs
	// of the listing's cache validator.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// RelationService defines favorite and shopping-cart membership operations.
type RelationService interface {
	AddFavorite(ctx context.Context, userID, recipeID string) (services.RecipeSummary, error)
	RemoveFavorite(ctx context.Context, userID, recipeID string) error
	AddToCart(ctx context.Context, userID, recipeID string) (services.RecipeSummary, error)
	RemoveFromCart(ctx context.Context, userID, recipeID string) error
}

// SubscriptionService defines follow/unfollow and subscription listings.
type SubscriptionService interface {
	Follow(ctx context.Context, userID, authorID string, recipesLimit int) (services.FollowView, error)
	Unfollow(ctx context.Context, userID, authorID string) error
	ListPage(ctx context.Context, userID string, page, pageSize, recipesLimit int) ([]services.FollowView, int64, error)
}

// ShoppingService renders the consolidated shopping list.
type ShoppingService interface {
	Render(ctx context.Context, userID string) (string, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for users, catalogs, recipes, relationship
// toggles, subscriptions, and the shopping list. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	userSvc     UserService
	catalogSvc  CatalogService
	recipeSvc   RecipeService
	relationSvc RelationService
	subSvc      SubscriptionService
	shoppingSvc ShoppingService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(users UserService, catalog CatalogService, recipes RecipeService, relations RelationService, subs SubscriptionService, shopping ShoppingService) *Handlers {
	return &Handlers{
		userSvc:     users,
		catalogSvc:  catalog,
		recipeSvc:   recipes,
		relationSvc: relations,
		subSvc:      subs,
		shoppingSvc: shopping,
	}
}

// userID extracts the authenticated user id from Gin context (set by the
// auth middleware). Empty means anonymous.
func userID(c *gin.Context) string {
	return middleware.ContextUserID(c)
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRecipesResponse wraps a page of recipes and pagination information.
type ListRecipesResponse struct {
	Recipes    []services.RecipeView `json:"recipes"`
	Pagination Pagination            `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds the page and page-size query params to
// sane defaults and limits, returning (page, pageSize). The public page-size
// parameter is `limit`; `page_size` is accepted as an alias.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	rawSize := c.Query("limit")
	if rawSize == "" {
		rawSize = c.Query("page_size")
	}
	pageSize = utils.AtoiDefault(rawSize, defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationOf computes the pagination envelope for a page.
func paginationOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// boolFlag reports whether a query parameter is set to a truthy value
// ("1" or "true").
func boolFlag(c *gin.Context, name string) bool {
	v := strings.ToLower(strings.TrimSpace(c.Query(name)))
	return v == "1" || v == "true"
}

//
// Handlers
//

// ListRecipes returns a filtered, paginated page of recipes, newest first.
//
// Query parameters:
//   - tags: tag slug, repeatable; matches recipes carrying any given slug
//   - author: author user id
//   - is_favorited=1: only the viewer's favorites (ignored for anonymous)
//   - is_in_shopping_cart=1: only the viewer's cart (ignored for anonymous)
//   - page, page_size: pagination
//
// Supports weak ETag via If-None-Match and may return 304.
func (h *Handlers) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). Only for anonymous callers: the viewer
	// flags in the payload change without touching any recipe row, so the
	// validator would go stale for signed-in viewers.
	if viewer == "" {
		count, maxTS, err := h.recipeSvc.Stats(ctx)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"recipes:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	filter := services.RecipeListFilter{
		TagSlugs:      c.QueryArray("tags"),
		AuthorID:      strings.TrimSpace(c.Query("author")),
		OnlyFavorited: boolFlag(c, "is_favorited"),
		OnlyInCart:    boolFlag(c, "is_in_shopping_cart"),
	}

	items, total, err := h.recipeSvc.ListPage(ctx, viewer, filter, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRecipesResponse{
		Recipes:    items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// CreateRecipe creates a recipe owned by the authenticated user and returns
// the full recipe view.
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var req services.RecipeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	view, err := h.recipeSvc.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, view)
}

// GetRecipe returns the full recipe view, with viewer-dependent flags when
// the caller is authenticated.
func (h *Handlers) GetRecipe(c *gin.Context) {
	view, err := h.recipeSvc.Get(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// UpdateRecipe applies a partial update to a recipe owned by the caller.
// Supplying ingredients or tags replaces the whole set.
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	var req services.RecipeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	view, err := h.recipeSvc.Update(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// DeleteRecipe removes a recipe owned by the caller together with its
// dependent rows.
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	if err := h.recipeSvc.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
