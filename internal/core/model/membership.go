package model

import "time"

// MembershipState is the derived state of a (user, event) pair. It is
// never stored; it is computed from both documents.
type MembershipState int

const (
	// MembershipNone means the user has no relation to the event.
	MembershipNone MembershipState = iota

	// MembershipPendingInvite means the user was invited and did not answer.
	MembershipPendingInvite

	// MembershipParticipant means the user joined the event.
	MembershipParticipant
)

func (s MembershipState) String() string {
	switch s {
	case MembershipPendingInvite:
		return "pending_invite"
	case MembershipParticipant:
		return "participant"
	default:
		return "none"
	}
}

// MembershipAction identifies a membership transition.
type MembershipAction string

const (
	ActionInvited         MembershipAction = "invited"
	ActionInviteAccepted  MembershipAction = "invite_accepted"
	ActionInviteDeclined  MembershipAction = "invite_declined"
	ActionInviteCanceled  MembershipAction = "invite_canceled"
	ActionJoined          MembershipAction = "joined"
	ActionLeft            MembershipAction = "left"
)

// MembershipEvent records a membership transition for a (user, event)
// pair. It is published after the event-side write and consumed by the
// reconciliation worker, which re-applies the user-side mirror write so
// a crashed caller's partial dual-write converges.
type MembershipEvent struct {
	// ID is the message id. Assigned by the transport on the consuming side.
	ID string `json:"id,omitempty"`

	// Action is the membership transition.
	Action MembershipAction `json:"action"`

	// EventID of the affected event.
	EventID string `json:"event_id"`

	// UserID of the affected user.
	UserID string `json:"user_id"`

	// OccurredAt is the time the transition was applied to the event document.
	OccurredAt time.Time `json:"occurred_at"`
}
