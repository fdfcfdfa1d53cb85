package usecase

import (
	"context"
	"fmt"

	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// FavoritesServiceArgs contains the mandatory arguments for the FavoritesService.
type FavoritesServiceArgs struct {
	// Store is the document store for persistence operations.
	Store ports.DocumentStore
}

// NewFavoritesService creates a new FavoritesService.
func NewFavoritesService(args FavoritesServiceArgs) *FavoritesService {
	return &FavoritesService{store: args.Store}
}

// FavoritesService flips an event in and out of a user's favorites set.
type FavoritesService struct {
	store ports.DocumentStore
}

// ToggleFavorite adds the event to the user's favorites if absent and
// removes it otherwise. It is a single-document write, idempotent per
// observed state. It returns whether the event is favorited after the
// flip.
func (s *FavoritesService) ToggleFavorite(ctx context.Context, user *model.User, eventID string) (bool, error) {
	var favorites []string
	favorited := !contains(user.MyFavorites, eventID)
	if favorited {
		favorites = addToSet(user.MyFavorites, eventID)
	} else {
		favorites = removeFromSet(user.MyFavorites, eventID)
	}

	if err := s.store.UpdateUserFields(ctx, user.UID, &model.UserPatch{MyFavorites: &favorites}); err != nil {
		return false, fmt.Errorf("error updating user favorites: %w", err)
	}
	user.MyFavorites = favorites
	return favorited, nil
}
