package usecase

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// SocialGraphServiceArgs contains the mandatory arguments for the SocialGraphService.
type SocialGraphServiceArgs struct {
	// Store is the document store for persistence operations.
	Store ports.DocumentStore
}

// SocialGraphServiceOptArgs are the optional arguments for building a SocialGraphService.
type SocialGraphServiceOptArgs = func(*SocialGraphService)

// WithMutualFollowGuard blocks a follow when the receiver already
// follows the sender. Off by default; the guard exists so the legacy
// behavior can be enabled and asserted explicitly.
func WithMutualFollowGuard(enabled bool) SocialGraphServiceOptArgs {
	return func(s *SocialGraphService) {
		s.mutualFollowGuard = enabled
	}
}

// NewSocialGraphService creates a new SocialGraphService.
func NewSocialGraphService(args SocialGraphServiceArgs, optArgs ...SocialGraphServiceOptArgs) *SocialGraphService {
	s := &SocialGraphService{store: args.Store}
	for _, opt := range optArgs {
		opt(s)
	}
	return s
}

// SocialGraphService manages directed follow edges between users. An
// edge is stored redundantly on both sides (sender.following and
// receiver.followers) as two independent document writes.
type SocialGraphService struct {
	store             ports.DocumentStore
	mutualFollowGuard bool
}

// Follow adds the receiver to the sender's following set and the sender
// to the receiver's followers set. Following an already-followed user is
// a no-op.
func (s *SocialGraphService) Follow(ctx context.Context, sender, receiver *model.User) error {
	if contains(sender.Following, receiver.UID) {
		log.WithField("sender", sender.UID).WithField("receiver", receiver.UID).
			Warn("sender already follows receiver")
		return nil
	}
	if s.mutualFollowGuard && contains(receiver.Following, sender.UID) {
		log.WithField("sender", sender.UID).WithField("receiver", receiver.UID).
			Warn("mutual-follow guard rejected follow-back")
		return nil
	}

	following := addToSet(sender.Following, receiver.UID)
	if err := s.store.UpdateUserFields(ctx, sender.UID, &model.UserPatch{Following: &following}); err != nil {
		return fmt.Errorf("error updating sender following: %w", err)
	}
	sender.Following = following

	followers := addToSet(receiver.Followers, sender.UID)
	if err := s.store.UpdateUserFields(ctx, receiver.UID, &model.UserPatch{Followers: &followers}); err != nil {
		return fmt.Errorf("error updating receiver followers: %w", err)
	}
	receiver.Followers = followers
	return nil
}

// Unfollow removes the edge from both sides unconditionally.
func (s *SocialGraphService) Unfollow(ctx context.Context, sender, receiver *model.User) error {
	following := removeFromSet(sender.Following, receiver.UID)
	if err := s.store.UpdateUserFields(ctx, sender.UID, &model.UserPatch{Following: &following}); err != nil {
		return fmt.Errorf("error updating sender following: %w", err)
	}
	sender.Following = following

	followers := removeFromSet(receiver.Followers, sender.UID)
	if err := s.store.UpdateUserFields(ctx, receiver.UID, &model.UserPatch{Followers: &followers}); err != nil {
		return fmt.Errorf("error updating receiver followers: %w", err)
	}
	receiver.Followers = followers
	return nil
}

// GetFollowers returns the users following the given user. The
// containment predicate is pushed down to the store query.
func (s *SocialGraphService) GetFollowers(ctx context.Context, uid string) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx, ports.ListUsersQuery{FollowingContains: uid})
	if err != nil {
		return nil, fmt.Errorf("error listing followers from store: %w", err)
	}
	followers := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.UID == uid {
			continue
		}
		followers = append(followers, u)
	}
	return followers, nil
}
