// Package services – SubscriptionService
//
// This file implements author subscriptions: the directional follow toggle
// (self-follow rejected, duplicate pairs conflict) and the subscription
// listing carrying each followed author's profile, a capped preview of their
// newest recipes, and the uncapped total.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodgram/go-recipe-backend/internal/repo"
)

// DefaultRecipesPreview caps the per-author recipe preview when the client
// does not pass recipes_limit.
const DefaultRecipesPreview = 3

// SubscriptionService provides follow/unfollow and subscription listings.
type SubscriptionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// PreviewLimit is the default recipe preview cap per followed author.
	PreviewLimit int
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db, PreviewLimit: DefaultRecipesPreview}
}

// Follow subscribes userID to authorID and returns the author's entry as it
// would appear in the subscription listing.
func (s *SubscriptionService) Follow(ctx context.Context, userID, authorID string, recipesLimit int) (FollowView, error) {
	if userID == authorID {
		return FollowView{}, ErrSelfFollow
	}
	author, err := repo.GetUser(ctx, s.DB, authorID)
	if err != nil {
		if isNotFound(err) {
			return FollowView{}, ErrUserNotFound
		}
		return FollowView{}, err
	}
	if _, err := repo.CreateFollow(ctx, s.DB, userID, authorID); err != nil {
		if isDuplicate(err) {
			return FollowView{}, ErrAlreadyFollowing
		}
		return FollowView{}, err
	}
	return s.authorView(ctx, profileOf(author, true), recipesLimit)
}

// Unfollow removes the subscription.
func (s *SubscriptionService) Unfollow(ctx context.Context, userID, authorID string) error {
	if err := repo.DeleteFollow(ctx, s.DB, userID, authorID); err != nil {
		if isNotFound(err) {
			return ErrFollowNotFound
		}
		return err
	}
	return nil
}

// ListPage returns a page of the caller's subscriptions in follow order.
// recipesLimit caps the per-author recipe preview; pass 0 to use the
// service default.
func (s *SubscriptionService) ListPage(ctx context.Context, userID string, page, pageSize, recipesLimit int) ([]FollowView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountFollows(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []FollowView{}, 0, nil
	}

	follows, err := repo.ListFollowsPage(ctx, s.DB, userID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	out := make([]FollowView, 0, len(follows))
	for i := range follows {
		// Recomputed from the store rather than assumed from the listed row.
		subscribed, err := repo.FollowExists(ctx, s.DB, userID, follows[i].AuthorID)
		if err != nil {
			return nil, 0, err
		}
		v, err := s.authorView(ctx, profileOf(&follows[i].Author, subscribed), recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

// authorView attaches the recipe preview and total count to an author
// profile.
func (s *SubscriptionService) authorView(ctx context.Context, profile ProfileView, recipesLimit int) (FollowView, error) {
	if recipesLimit <= 0 {
		recipesLimit = s.PreviewLimit
	}
	recipes, err := repo.ListAuthorRecipes(ctx, s.DB, profile.ID, recipesLimit)
	if err != nil {
		return FollowView{}, err
	}
	count, err := repo.CountAuthorRecipes(ctx, s.DB, profile.ID)
	if err != nil {
		return FollowView{}, err
	}

	summaries := make([]RecipeSummary, 0, len(recipes))
	for i := range recipes {
		summaries = append(summaries, summarize(&recipes[i]))
	}
	return FollowView{
		ProfileView:  profile,
		Recipes:      summaries,
		RecipesCount: count,
	}, nil
}
