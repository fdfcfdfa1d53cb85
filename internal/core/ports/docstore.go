package ports

import (
	"context"

	"github.com/venn-app/venn/internal/core/model"
)

// DocumentStore is the interface for the keyed document persistence
// layer. Each document is addressed by a single primary key (uid or
// event-id); there is no multi-document atomicity, so callers rely on
// idempotent, order-tolerant writes.
type DocumentStore interface {
	// GetUser returns the user document. It returns model.ErrNotFound if
	// the document does not exist.
	GetUser(ctx context.Context, uid string) (*model.User, error)

	// PutUser creates or overwrites the user document.
	PutUser(ctx context.Context, user *model.User) error

	// UpdateUserFields applies a merge-style partial update to the user
	// document. Only the fields carried by the patch are written. It
	// returns model.ErrNotFound if the document does not exist.
	UpdateUserFields(ctx context.Context, uid string, patch *model.UserPatch) error

	// DeleteUser removes the user document. References held by other
	// documents are not scrubbed.
	DeleteUser(ctx context.Context, uid string) error

	// ListUsers lists all users matching the query parameters.
	ListUsers(ctx context.Context, query ListUsersQuery) ([]model.User, error)

	// GetEvent returns the event document. It returns model.ErrNotFound
	// if the document does not exist.
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)

	// PutEvent creates or overwrites the event document.
	PutEvent(ctx context.Context, event *model.Event) error

	// UpdateEventFields applies a merge-style partial update to the event
	// document. It returns model.ErrNotFound if the document does not exist.
	UpdateEventFields(ctx context.Context, eventID string, patch *model.EventPatch) error

	// DeleteEvent removes the event document. Participants' joined-events
	// lists are not scrubbed.
	DeleteEvent(ctx context.Context, eventID string) error

	// ListEvents lists all events matching the query parameters.
	ListEvents(ctx context.Context, query ListEventsQuery) ([]model.Event, error)
}

// ListUsersQuery gather the parameters for which the query
type ListUsersQuery struct {
	// FollowingContains filters users whose following set contains the
	// given UID. Zero-value will be ignored as filter.
	FollowingContains string

	// Limit is the maximum amount of users to return (for pagination). Zero-value will be interpreted as no-limit.
	Limit uint32

	// Offset is the offset to apply (for pagination). Zero-value will be interpreted as 0 Offset.
	Offset uint32
}

// ListEventsQuery gather the parameters for which the query
type ListEventsQuery struct {
	// PublicOnly filters out private events.
	PublicOnly bool

	// CreatorID filters events created by the given UID. Zero-value will be ignored as filter.
	CreatorID string

	// Limit is the maximum amount of events to return (for pagination). Zero-value will be interpreted as no-limit.
	Limit uint32

	// Offset is the offset to apply (for pagination). Zero-value will be interpreted as 0 Offset.
	Offset uint32
}
