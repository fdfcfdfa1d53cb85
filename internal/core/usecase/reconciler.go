package usecase

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// NewReconciler builds a new reconciler.
func NewReconciler(store ports.DocumentStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconciler re-applies the user-side mirror write of a membership
// transition. A caller that performed the event-side write and crashed
// before the mirror write leaves the two documents diverged; replaying
// the membership event here converges them. The applied patch is
// idempotent, so redeliveries and already-converged documents are safe.
type Reconciler struct {
	store ports.DocumentStore
}

func (r *Reconciler) Handle(ctx context.Context, event model.MembershipEvent) error {
	user, err := r.store.GetUser(ctx, event.UserID)
	if errors.Is(err, model.ErrNotFound) {
		// the user was deleted; nothing left to converge
		log.WithField("user_id", event.UserID).WithField("event_id", event.EventID).
			Warn("membership event for unknown user dropped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error getting user [%s]: %w", event.UserID, err)
	}

	patch := userMirrorPatch(user, event.Action, event.EventID)
	if patch.IsZero() {
		return nil
	}
	if err := r.store.UpdateUserFields(ctx, event.UserID, patch); err != nil {
		return fmt.Errorf("error converging user [%s]: %w", event.UserID, err)
	}
	log.WithField("user_id", event.UserID).
		WithField("event_id", event.EventID).
		WithField("action", event.Action).
		Info("converged user document from membership event")
	return nil
}
