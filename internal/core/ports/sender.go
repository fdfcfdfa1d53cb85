package ports

import (
	"context"

	"github.com/venn-app/venn/internal/core/model"
)

// Sender is the port for publishing outbound membership events.
type Sender interface {
	// Send sends membership-event data.
	Send(ctx context.Context, event model.MembershipEvent) error
}
