package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// UserServiceArgs contains the mandatory arguments for the UserService.
type UserServiceArgs struct {
	// Store is the document store for persistence operations.
	Store ports.DocumentStore

	// NowFunc can be used to override the clock. Optional; useful for testing.
	NowFunc func() time.Time

	// IDFunc can be used to override uid generation. Optional; useful for testing.
	IDFunc func() string
}

// NewUserService creates a new UserService.
func NewUserService(args UserServiceArgs) *UserService {
	s := &UserService{store: args.Store, nowFunc: args.NowFunc, idFunc: args.IDFunc}
	if s.nowFunc == nil {
		s.nowFunc = func() time.Time { return time.Now().UTC() }
	}
	if s.idFunc == nil {
		s.idFunc = uuid.NewString
	}
	return s
}

// UserService gathers the functionality around the user lifecycle.
type UserService struct {
	store   ports.DocumentStore
	nowFunc func() time.Time
	idFunc  func() string
}

// Register creates the user if it does not exist yet. Registering an
// existing uid returns the existing document unchanged.
func (s *UserService) Register(ctx context.Context, args model.RegisterUserArgs) (*model.User, error) {
	if args.UID != "" {
		existing, err := s.store.GetUser(ctx, args.UID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("error checking for existing user: %w", err)
		}
		if existing != nil {
			log.WithField("user_id", args.UID).Warn("user already registered")
			return existing, nil
		}
	}

	user := &model.User{
		UID:             args.UID,
		Username:        args.Username,
		FirstName:       args.FirstName,
		LastName:        args.LastName,
		Email:           args.Email,
		PhoneNumber:     args.PhoneNumber,
		Country:         args.Country,
		Following:       []string{},
		Followers:       []string{},
		PendingRequests: []string{},
		JoinedEvents:    []string{},
		MyEvents:        []string{},
		MyFavorites:     []string{},
		Tags:            args.Tags,
		CreatedAt:       s.nowFunc(),
	}
	if user.UID == "" {
		user.UID = s.idFunc()
	}
	if args.Password != "" {
		hash, err := argon2id.CreateHash(args.Password, argon2id.DefaultParams)
		if err != nil {
			return nil, fmt.Errorf("error creating password hash: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error saving user in store: %w", err)
	}
	return user, nil
}

// GetUser returns the user, or nil if it does not exist.
func (s *UserService) GetUser(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.store.GetUser(ctx, uid)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user from store: %w", err)
	}
	return user, nil
}

// EditUser applies a partial update to the user document. Fields not
// carried by the patch are untouched.
func (s *UserService) EditUser(ctx context.Context, uid string, patch *model.UserPatch) error {
	if err := s.store.UpdateUserFields(ctx, uid, patch); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// DeleteUser removes the user document. References held by other users'
// documents are not scrubbed; readers resolve them lazily.
func (s *UserService) DeleteUser(ctx context.Context, uid string) error {
	if err := s.store.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("error deleting user from store: %w", err)
	}
	return nil
}

// GetAllUsers returns every user document.
func (s *UserService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx, ports.ListUsersQuery{})
	if err != nil {
		return nil, fmt.Errorf("error listing users from store: %w", err)
	}
	return users, nil
}
