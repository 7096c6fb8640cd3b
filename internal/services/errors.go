// Package services defines the business logic for users, catalogs, recipes,
// relationship sets, and the shopping list. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// Identity errors.
var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when registration collides with an
	// existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when registration collides with an existing
	// email address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a failed login, without
	// distinguishing between an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Catalog errors.
var (
	// ErrTagNotFound indicates that the requested tag does not exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrIngredientNotFound indicates that the requested ingredient does not
	// exist.
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrSlugTaken is returned when creating a tag with an existing slug.
	ErrSlugTaken = errors.New("tag slug already exists")
)

// Recipe errors.
var (
	// ErrRecipeNotFound indicates that the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrNotRecipeAuthor is returned when a user attempts to update or
	// delete a recipe they do not own.
	ErrNotRecipeAuthor = errors.New("only the author may modify this recipe")
)

// Relationship errors. Adding an existing pair is a conflict and removing a
// missing pair is a distinct not-found condition, never a silent no-op.
var (
	// ErrAlreadyFavorited is returned when the (user, recipe) favorite pair
	// already exists.
	ErrAlreadyFavorited = errors.New("recipe already favorited")

	// ErrFavoriteNotFound is returned when removing a favorite that does not
	// exist.
	ErrFavoriteNotFound = errors.New("recipe is not favorited")

	// ErrAlreadyInCart is returned when the (user, recipe) cart pair already
	// exists.
	ErrAlreadyInCart = errors.New("recipe already in shopping cart")

	// ErrCartEntryNotFound is returned when removing a cart entry that does
	// not exist.
	ErrCartEntryNotFound = errors.New("recipe is not in shopping cart")

	// ErrAlreadyFollowing is returned when the (user, author) follow pair
	// already exists.
	ErrAlreadyFollowing = errors.New("already subscribed to this author")

	// ErrFollowNotFound is returned when removing a follow that does not
	// exist.
	ErrFollowNotFound = errors.New("not subscribed to this author")

	// ErrSelfFollow is returned when a user attempts to subscribe to
	// themselves.
	ErrSelfFollow = errors.New("cannot subscribe to yourself")
)

// FieldError pins a validation failure to the input field that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates the field-level failures of one request so the
// handler can report them all at once.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add appends a field failure.
func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns the error if any field failed, nil otherwise.
func (e *ValidationError) orNil() error {
	if len(e.Fields) > 0 {
		return e
	}
	return nil
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
