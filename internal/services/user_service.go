// Package services – UserService
//
// This file implements the identity subsystem: registration with validated
// credentials, password login issuing bearer tokens, profile reads with the
// viewer-dependent subscription flag, and the self-service profile update.
//
// Service-level errors (ErrUsernameTaken, ErrInvalidCredentials, ...) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/auth"
	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// usernameRE is the allowed username alphabet: word characters plus ., @, +
// and -.
var usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// UserService provides registration, login, and profile operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Tokens signs the bearer tokens handed out on login.
	Tokens *auth.Manager
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, tokens *auth.Manager) *UserService {
	return &UserService{DB: db, Tokens: tokens}
}

// Register validates the input, hashes the password, and creates the user.
// Uniqueness collisions are pre-checked for precise errors; the unique
// indexes close the remaining race and are mapped to the same sentinels.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (ProfileView, error) {
	if err := validateRegister(in); err != nil {
		return ProfileView{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return ProfileView{}, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return ProfileView{}, ErrEmailTaken
	} else if !isNotFound(err) {
		return ProfileView{}, err
	}

	u, err := repo.CreateUser(ctx, s.DB, username, email, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), string(hash))
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				return ProfileView{}, ErrEmailTaken
			}
			return ProfileView{}, ErrUsernameTaken
		}
		return ProfileView{}, err
	}
	return profileOf(u, false), nil
}

// Login verifies the email/password pair and returns a signed bearer token.
// Unknown email and wrong password collapse into ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if isNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.Tokens.Issue(u.ID)
}

// Get returns the profile of userID as seen by viewerID. The subscription
// flag is false when the viewer is anonymous (empty viewerID) or looking at
// themselves.
func (s *UserService) Get(ctx context.Context, id, viewerID string) (ProfileView, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return ProfileView{}, ErrUserNotFound
		}
		return ProfileView{}, err
	}
	subscribed := false
	if viewerID != "" && viewerID != u.ID {
		subscribed, err = repo.FollowExists(ctx, s.DB, viewerID, u.ID)
		if err != nil {
			return ProfileView{}, err
		}
	}
	return profileOf(u, subscribed), nil
}

// ListPage returns a page of profiles in registration order, with the
// subscription flag computed against viewerID.
func (s *UserService) ListPage(ctx context.Context, viewerID string, page, pageSize int) ([]ProfileView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []ProfileView{}, 0, nil
	}

	users, err := repo.ListUsersPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProfileView, 0, len(users))
	for i := range users {
		subscribed := false
		if viewerID != "" && viewerID != users[i].ID {
			subscribed, err = repo.FollowExists(ctx, s.DB, viewerID, users[i].ID)
			if err != nil {
				return nil, 0, err
			}
		}
		out = append(out, profileOf(&users[i], subscribed))
	}
	return out, total, nil
}

// UpdateProfile changes the caller's first and last name.
func (s *UserService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) (ProfileView, error) {
	ve := &ValidationError{}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		ve.add("first_name", "must not be empty")
	}
	if lastName == "" {
		ve.add("last_name", "must not be empty")
	}
	if err := ve.orNil(); err != nil {
		return ProfileView{}, err
	}

	if err := repo.UpdateUserName(ctx, s.DB, userID, firstName, lastName); err != nil {
		if isNotFound(err) {
			return ProfileView{}, ErrUserNotFound
		}
		return ProfileView{}, err
	}
	return s.Get(ctx, userID, "")
}

// validateRegister checks every registration field and aggregates failures.
func validateRegister(in RegisterInput) error {
	ve := &ValidationError{}

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		ve.add("username", "must not be empty")
	case utf8.RuneCountInString(username) > 150:
		ve.add("username", "must be at most 150 characters")
	case !usernameRE.MatchString(username):
		ve.add("username", "may contain only letters, digits and ./@/+/-")
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		ve.add("email", "must not be empty")
	case len(email) > 254:
		ve.add("email", "must be at most 254 characters")
	case !strings.Contains(email, "@"):
		ve.add("email", "must be a valid email address")
	}

	if strings.TrimSpace(in.FirstName) == "" {
		ve.add("first_name", "must not be empty")
	}
	if strings.TrimSpace(in.LastName) == "" {
		ve.add("last_name", "must not be empty")
	}

	if utf8.RuneCountInString(in.Password) < 8 {
		ve.add("password", "must be at least 8 characters")
	}

	return ve.orNil()
}
