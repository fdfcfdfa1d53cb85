package ports

import (
	"context"

	"github.com/venn-app/venn/internal/core/model"
)

// EventCache holds the most recently loaded event list per owner. Each
// owner key is an independent entry, so concurrent sessions never alias
// one another's cache.
type EventCache interface {
	// Get returns the cached event list for the owner. It returns
	// model.ErrNotFound on a cache miss.
	Get(ctx context.Context, owner string) ([]model.Event, error)

	// Put replaces the cached event list for the owner.
	Put(ctx context.Context, owner string, events []model.Event) error

	// Invalidate drops the cached event list for the owner.
	Invalidate(ctx context.Context, owner string) error
}
