package usecase

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// MembershipServiceArgs contains the mandatory arguments for the MembershipService.
type MembershipServiceArgs struct {
	// Store is the document store for persistence operations.
	Store ports.DocumentStore

	// Sender publishes membership events for the reconciliation worker.
	// Optional; publishing is best-effort and never fails an operation.
	Sender ports.Sender

	// NowFunc can be used to override the clock. Optional; useful for testing.
	NowFunc func() time.Time
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(args MembershipServiceArgs) *MembershipService {
	s := &MembershipService{store: args.Store, sender: args.Sender, nowFunc: args.NowFunc}
	if s.nowFunc == nil {
		s.nowFunc = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// MembershipService is the per-(user, event) invitation/join state
// machine. Every operation takes the current event and user snapshots,
// applies the event-side write first and the user-side mirror write
// second. The two writes are independent; each one is idempotent and
// its precondition is checked against its own document only, so a
// retried or reordered partial failure converges. A failed mirror write
// does not fail the operation; convergence is left to the
// reconciliation worker.
type MembershipService struct {
	store   ports.DocumentStore
	sender  ports.Sender
	nowFunc func() time.Time
}

// StateOf computes the derived membership state for the pair. Both
// documents must agree for a state to be reported; disagreement counts
// as not-joined until the lagging mirror write completes.
func (s *MembershipService) StateOf(event *model.Event, user *model.User) model.MembershipState {
	if event == nil || user == nil {
		return model.MembershipNone
	}
	if event.HasJoined(user.UID) && contains(user.JoinedEvents, event.EventID) {
		return model.MembershipParticipant
	}
	if contains(event.PendingParticipants, user.UID) && contains(user.PendingRequests, event.EventID) {
		return model.MembershipPendingInvite
	}
	return model.MembershipNone
}

// IsMember reports whether the user actually joined the event, as the
// conjunction of both documents' view of truth.
func (s *MembershipService) IsMember(event *model.Event, user *model.User) bool {
	return s.StateOf(event, user) == model.MembershipParticipant
}

// Invite adds the user to the event's pending participants. Inviting an
// already-invited or already-joined user is a no-op; pending
// participants and participants stay disjoint.
func (s *MembershipService) Invite(ctx context.Context, event *model.Event, user *model.User) error {
	uid := user.UID
	if contains(event.PendingParticipants, uid) {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("user is already invited to event")
		return nil
	}
	if contains(event.Participants, uid) {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("user is already a participant of event")
		return nil
	}

	pending := addToSet(event.PendingParticipants, uid)
	if err := s.store.UpdateEventFields(ctx, event.EventID, &model.EventPatch{PendingParticipants: &pending}); err != nil {
		return fmt.Errorf("error updating event pending participants: %w", err)
	}
	event.PendingParticipants = pending

	s.mirror(ctx, model.ActionInvited, event.EventID, user)
	s.publish(ctx, model.ActionInvited, event.EventID, uid)
	return nil
}

// AcceptInvitation moves the user from pending participants to
// participants. Both field changes are folded into a single event-document
// write. Accepting without a pending invitation, or into an event at
// participant capacity, is a no-op; a capacity no-op leaves the
// invitation pending.
func (s *MembershipService) AcceptInvitation(ctx context.Context, event *model.Event, user *model.User) error {
	uid := user.UID
	if !contains(event.PendingParticipants, uid) {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("user has no pending invitation to accept")
		return nil
	}
	if event.MaxParticipants > 0 && len(event.Participants) >= event.MaxParticipants {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("event is at participant capacity")
		return nil
	}

	pending := removeFromSet(event.PendingParticipants, uid)
	participants := addToSet(event.Participants, uid)
	patch := &model.EventPatch{PendingParticipants: &pending, Participants: &participants}
	if err := s.store.UpdateEventFields(ctx, event.EventID, patch); err != nil {
		return fmt.Errorf("error updating event participants: %w", err)
	}
	event.PendingParticipants = pending
	event.Participants = participants

	s.mirror(ctx, model.ActionInviteAccepted, event.EventID, user)
	s.publish(ctx, model.ActionInviteAccepted, event.EventID, uid)
	return nil
}

// DeclineInvitation removes the user from the event's pending
// participants. No declined state is retained; the pair returns to the
// unrelated state.
func (s *MembershipService) DeclineInvitation(ctx context.Context, event *model.Event, user *model.User) error {
	uid := user.UID
	if !contains(event.PendingParticipants, uid) {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("user has no pending invitation to decline")
		return nil
	}
	if err := s.removePending(ctx, event, uid); err != nil {
		return err
	}
	s.mirror(ctx, model.ActionInviteDeclined, event.EventID, user)
	s.publish(ctx, model.ActionInviteDeclined, event.EventID, uid)
	return nil
}

// CancelInvitation is the inviter-side withdrawal of an invitation. It
// tolerates the not-currently-pending case silently so inviter retries
// are safe.
func (s *MembershipService) CancelInvitation(ctx context.Context, event *model.Event, user *model.User) error {
	uid := user.UID
	if !contains(event.PendingParticipants, uid) {
		return nil
	}
	if err := s.removePending(ctx, event, uid); err != nil {
		return err
	}
	s.mirror(ctx, model.ActionInviteCanceled, event.EventID, user)
	s.publish(ctx, model.ActionInviteCanceled, event.EventID, uid)
	return nil
}

// JoinEvent adds the user to the participants of a public event without
// an invitation. Joining an already-joined event is a no-op.
func (s *MembershipService) JoinEvent(ctx context.Context, event *model.Event, user *model.User) error {
	uid := user.UID
	if contains(event.Participants, uid) {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("user is already in event")
		return nil
	}
	if event.MaxParticipants > 0 && len(event.Participants) >= event.MaxParticipants {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("event is at participant capacity")
		return nil
	}

	participants := addToSet(event.Participants, uid)
	if err := s.store.UpdateEventFields(ctx, event.EventID, &model.EventPatch{Participants: &participants}); err != nil {
		return fmt.Errorf("error updating event participants: %w", err)
	}
	event.Participants = participants

	s.mirror(ctx, model.ActionJoined, event.EventID, user)
	s.publish(ctx, model.ActionJoined, event.EventID, uid)
	return nil
}

// LeaveEvent removes the user from the event's participants. Leaving an
// event the user is not part of is a no-op.
func (s *MembershipService) LeaveEvent(ctx context.Context, event *model.Event, user *model.User) error {
	return s.removeParticipant(ctx, event, user)
}

// KickParticipant is the creator-side removal of a participant. Same
// effect as LeaveEvent.
func (s *MembershipService) KickParticipant(ctx context.Context, event *model.Event, user *model.User) error {
	return s.removeParticipant(ctx, event, user)
}

func (s *MembershipService) removeParticipant(ctx context.Context, event *model.Event, user *model.User) error {
	uid := user.UID
	if !contains(event.Participants, uid) {
		log.WithField("event_id", event.EventID).WithField("user_id", uid).
			Warn("user is not a participant of event")
		return nil
	}

	participants := removeFromSet(event.Participants, uid)
	if err := s.store.UpdateEventFields(ctx, event.EventID, &model.EventPatch{Participants: &participants}); err != nil {
		return fmt.Errorf("error updating event participants: %w", err)
	}
	event.Participants = participants

	s.mirror(ctx, model.ActionLeft, event.EventID, user)
	s.publish(ctx, model.ActionLeft, event.EventID, uid)
	return nil
}

func (s *MembershipService) removePending(ctx context.Context, event *model.Event, uid string) error {
	pending := removeFromSet(event.PendingParticipants, uid)
	if err := s.store.UpdateEventFields(ctx, event.EventID, &model.EventPatch{PendingParticipants: &pending}); err != nil {
		return fmt.Errorf("error updating event pending participants: %w", err)
	}
	event.PendingParticipants = pending
	return nil
}

// mirror applies the user-side write for the transition. A failed or
// skipped mirror write leaves a detectable, recoverable anomaly that the
// reconciliation worker repairs from the published membership event.
func (s *MembershipService) mirror(ctx context.Context, action model.MembershipAction, eventID string, user *model.User) {
	if user == nil {
		return
	}
	patch := userMirrorPatch(user, action, eventID)
	if patch.IsZero() {
		return
	}
	if err := s.store.UpdateUserFields(ctx, user.UID, patch); err != nil {
		log.WithError(err).
			WithField("event_id", eventID).
			WithField("user_id", user.UID).
			Warn("mirror write failed; reconciliation will converge the user document")
		return
	}
	applyUserPatch(user, patch)
}

func (s *MembershipService) publish(ctx context.Context, action model.MembershipAction, eventID, userID string) {
	if s.sender == nil {
		return
	}
	evt := model.MembershipEvent{
		Action:     action,
		EventID:    eventID,
		UserID:     userID,
		OccurredAt: s.nowFunc(),
	}
	if err := s.sender.Send(ctx, evt); err != nil {
		log.WithError(err).
			WithField("event_id", eventID).
			WithField("user_id", userID).
			Warn("error publishing membership event")
	}
}

// userMirrorPatch computes the idempotent user-side patch for a
// membership transition. It returns an empty patch when the user
// document already reflects the transition.
func userMirrorPatch(user *model.User, action model.MembershipAction, eventID string) *model.UserPatch {
	patch := &model.UserPatch{}
	switch action {
	case model.ActionInvited:
		if !contains(user.PendingRequests, eventID) {
			pending := addToSet(user.PendingRequests, eventID)
			patch.PendingRequests = &pending
		}
	case model.ActionInviteAccepted:
		if contains(user.PendingRequests, eventID) {
			pending := removeFromSet(user.PendingRequests, eventID)
			patch.PendingRequests = &pending
		}
		if !contains(user.JoinedEvents, eventID) {
			joined := addToSet(user.JoinedEvents, eventID)
			patch.JoinedEvents = &joined
		}
	case model.ActionInviteDeclined, model.ActionInviteCanceled:
		if contains(user.PendingRequests, eventID) {
			pending := removeFromSet(user.PendingRequests, eventID)
			patch.PendingRequests = &pending
		}
	case model.ActionJoined:
		if !contains(user.JoinedEvents, eventID) {
			joined := addToSet(user.JoinedEvents, eventID)
			patch.JoinedEvents = &joined
		}
	case model.ActionLeft:
		if contains(user.JoinedEvents, eventID) {
			joined := removeFromSet(user.JoinedEvents, eventID)
			patch.JoinedEvents = &joined
		}
	}
	return patch
}

func applyUserPatch(user *model.User, patch *model.UserPatch) {
	if patch.PendingRequests != nil {
		user.PendingRequests = *patch.PendingRequests
	}
	if patch.JoinedEvents != nil {
		user.JoinedEvents = *patch.JoinedEvents
	}
	if patch.MyEvents != nil {
		user.MyEvents = *patch.MyEvents
	}
	if patch.MyFavorites != nil {
		user.MyFavorites = *patch.MyFavorites
	}
}
