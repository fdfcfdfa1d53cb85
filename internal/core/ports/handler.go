package ports

import (
	"context"

	"github.com/venn-app/venn/internal/core/model"
)

// MembershipEventHandler handles incoming MembershipEvents.
type MembershipEventHandler interface {
	// Handle will receive an incoming membership event and handle it.
	Handle(ctx context.Context, event model.MembershipEvent) error
}
