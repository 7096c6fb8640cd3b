// User and subscription HTTP handlers.
//
// Endpoints covered here:
//   - POST  /users                    (sign up)
//   - POST  /auth/token/login         (issue bearer token)
//   - GET   /users                    (list profiles)
//   - GET   /users/me                 (own profile)
//   - PATCH /users/me                 (rename)
//   - GET   /users/{id}               (profile by id)
//   - POST/DELETE /users/{id}/subscribe
//   - GET   /users/subscriptions
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/go-recipe-backend/internal/services"
)

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed bearer token.
type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// UpdateProfileRequest renames the authenticated user.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ListUsersResponse wraps a page of profiles.
type ListUsersResponse struct {
	Users      []services.ProfileView `json:"users"`
	Pagination Pagination             `json:"pagination"`
}

// ListSubscriptionsResponse wraps a page of followed authors.
type ListSubscriptionsResponse struct {
	Authors    []services.FollowView `json:"authors"`
	Pagination Pagination            `json:"pagination"`
}

// recipesLimit parses the optional recipes_limit query parameter. Returns
// (0, true) when absent; (0, false) when present but not a positive integer.
func recipesLimit(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("recipes_limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Register creates a new account and returns the profile with HTTP 201.
func (h *Handlers) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	view, err := h.userSvc.Register(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, view)
}

// Login exchanges email and password for a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	token, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, LoginResponse{AuthToken: token})
}

// Me returns the authenticated user's own profile.
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	view, err := h.userSvc.Get(c.Request.Context(), uid, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// UpdateMe changes the authenticated user's first and last name.
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	view, err := h.userSvc.UpdateProfile(c.Request.Context(), userID(c), req.FirstName, req.LastName)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// GetUser returns a profile by id with the viewer's subscription flag.
func (h *Handlers) GetUser(c *gin.Context) {
	view, err := h.userSvc.Get(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// ListUsers returns a paginated page of profiles ordered by sign-up time.
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.userSvc.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{
		Users:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// Subscribe follows the author in the path and returns the author view with
// a recipe preview, capped by the optional recipes_limit query parameter.
func (h *Handlers) Subscribe(c *gin.Context) {
	limit, valid := recipesLimit(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipes_limit must be a positive integer")
		return
	}

	view, err := h.subSvc.Follow(c.Request.Context(), userID(c), c.Param("id"), limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, view)
}

// Unsubscribe removes the follow edge to the author in the path.
func (h *Handlers) Unsubscribe(c *gin.Context) {
	if err := h.subSvc.Unfollow(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListSubscriptions returns the authors the caller follows, oldest follow
// first, each with a capped recipe preview.
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	limit, valid := recipesLimit(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipes_limit must be a positive integer")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.subSvc.ListPage(c.Request.Context(), userID(c), page, pageSize, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListSubscriptionsResponse{
		Authors:    items,
		Pagination: paginationOf(page, pageSize, total),
	})
}
