package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venn-app/venn/internal/core/model"
)

var testTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func testMembershipService(store *memStore, sender *mockSender) *MembershipService {
	args := MembershipServiceArgs{
		Store:   store,
		NowFunc: func() time.Time { return testTime },
	}
	// a nil concrete pointer assigned to the interface field would not
	// compare equal to nil inside the service
	if sender != nil {
		args.Sender = sender
	}
	return NewMembershipService(args)
}

func seedPair(t *testing.T, store *memStore) (*model.Event, *model.User) {
	t.Helper()
	event := &model.Event{
		EventID:      "event-1",
		CreatorID:    "creator",
		Title:        "vernissage",
		Participants: []string{"creator"},
		Public:       true,
	}
	user := &model.User{UID: "user-1", Username: "ada"}
	require.NoError(t, store.PutEvent(context.Background(), event))
	require.NoError(t, store.PutUser(context.Background(), user))
	return event, user
}

func TestInviteIsIdempotent(t *testing.T) {
	store := newMemStore()
	sender := &mockSender{}
	svc := testMembershipService(store, sender)
	event, user := seedPair(t, store)

	require.NoError(t, svc.Invite(context.Background(), event, user))
	require.NoError(t, svc.Invite(context.Background(), event, user))

	assert.Equal(t, []string{"user-1"}, event.PendingParticipants)
	assert.Equal(t, []string{"event-1"}, user.PendingRequests)

	stored, err := store.GetEvent(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, stored.PendingParticipants)

	// the second call must not have written or published anything
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, model.ActionInvited, sender.sent[0].Action)
	assert.Equal(t, testTime, sender.sent[0].OccurredAt)
}

func TestAcceptInvitation(t *testing.T) {
	store := newMemStore()
	sender := &mockSender{}
	svc := testMembershipService(store, sender)
	event, user := seedPair(t, store)

	require.NoError(t, svc.Invite(context.Background(), event, user))
	require.NoError(t, svc.AcceptInvitation(context.Background(), event, user))

	assert.Empty(t, event.PendingParticipants)
	assert.Contains(t, event.Participants, "user-1")
	assert.Empty(t, user.PendingRequests)
	assert.Contains(t, user.JoinedEvents, "event-1")

	stored, err := store.GetEvent(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Empty(t, stored.PendingParticipants)
	assert.Contains(t, stored.Participants, "user-1")

	assert.True(t, svc.IsMember(event, user))
}

func TestAcceptWithoutInvitationIsANoop(t *testing.T) {
	store := newMemStore()
	svc := testMembershipService(store, nil)
	event, user := seedPair(t, store)

	writes := store.eventWrites
	require.NoError(t, svc.AcceptInvitation(context.Background(), event, user))
	assert.Equal(t, writes, store.eventWrites)
	assert.NotContains(t, event.Participants, "user-1")
}

func TestDeclineInvitationResetsThePair(t *testing.T) {
	store := newMemStore()
	svc := testMembershipService(store, nil)
	event, user := seedPair(t, store)

	require.NoError(t, svc.Invite(context.Background(), event, user))
	require.NoError(t, svc.DeclineInvitation(context.Background(), event, user))

	assert.NotContains(t, event.PendingParticipants, "user-1")
	assert.NotContains(t, event.Participants, "user-1")
	assert.Empty(t, user.PendingRequests)
	assert.Equal(t, model.MembershipNone, svc.StateOf(event, user))
}

func TestCancelInvitationToleratesNotPending(t *testing.T) {
	store := newMemStore()
	svc := testMembershipService(store, nil)
	event, user := seedPair(t, store)

	writes := store.eventWrites
	require.NoError(t, svc.CancelInvitation(context.Background(), event, user))
	assert.Equal(t, writes, store.eventWrites)
}

func TestJoinEvent(t *testing.T) {
	tests := []struct {
		name             string
		event            model.Event
		expectJoined     bool
		expectEventWrite bool
	}{
		{
			name:             "join a public event",
			event:            model.Event{EventID: "event-1", Participants: []string{"creator"}},
			expectJoined:     true,
			expectEventWrite: true,
		},
		{
			name:         "joining twice is a no-op",
			event:        model.Event{EventID: "event-1", Participants: []string{"creator", "user-1"}},
			expectJoined: true,
		},
		{
			name:  "full event rejects the join",
			event: model.Event{EventID: "event-1", Participants: []string{"creator"}, MaxParticipants: 1},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newMemStore()
			svc := testMembershipService(store, nil)
			event := test.event
			user := &model.User{UID: "user-1"}
			if contains(event.Participants, user.UID) {
				user.JoinedEvents = []string{event.EventID}
			}
			require.NoError(t, store.PutEvent(context.Background(), &event))
			require.NoError(t, store.PutUser(context.Background(), user))
			writes := store.eventWrites

			require.NoError(t, svc.JoinEvent(context.Background(), &event, user))

			assert.Equal(t, test.expectJoined, contains(event.Participants, "user-1"))
			assert.Equal(t, test.expectEventWrite, store.eventWrites > writes)
		})
	}
}

func TestLeaveEvent(t *testing.T) {
	store := newMemStore()
	svc := testMembershipService(store, nil)
	event, user := seedPair(t, store)

	require.NoError(t, svc.JoinEvent(context.Background(), event, user))
	require.NoError(t, svc.LeaveEvent(context.Background(), event, user))

	assert.NotContains(t, event.Participants, "user-1")
	assert.NotContains(t, user.JoinedEvents, "event-1")
	assert.False(t, svc.IsMember(event, user))
}

func TestPendingAndParticipantsStayDisjoint(t *testing.T) {
	store := newMemStore()
	svc := testMembershipService(store, nil)
	event, user := seedPair(t, store)
	ctx := context.Background()

	steps := []func() error{
		func() error { return svc.Invite(ctx, event, user) },
		func() error { return svc.AcceptInvitation(ctx, event, user) },
		func() error { return svc.Invite(ctx, event, user) },
		func() error { return svc.DeclineInvitation(ctx, event, user) },
		func() error { return svc.JoinEvent(ctx, event, user) },
		func() error { return svc.LeaveEvent(ctx, event, user) },
	}
	for _, step := range steps {
		require.NoError(t, step())
		for _, p := range event.PendingParticipants {
			assert.NotContains(t, event.Participants, p)
		}
	}
}

func TestMembershipIsTheConjunctionOfBothDocuments(t *testing.T) {
	svc := NewMembershipService(MembershipServiceArgs{Store: newMemStore()})

	event := &model.Event{EventID: "event-1", Participants: []string{"user-1"}}
	lagging := &model.User{UID: "user-1"}
	assert.False(t, svc.IsMember(event, lagging), "event-side write landed but the mirror write is lagging")

	converged := &model.User{UID: "user-1", JoinedEvents: []string{"event-1"}}
	assert.True(t, svc.IsMember(event, converged))
}

func TestMirrorWriteFailureDoesNotFailTheOperation(t *testing.T) {
	store := newMemStore()
	sender := &mockSender{}
	svc := testMembershipService(store, sender)
	event, user := seedPair(t, store)
	store.userUpdateErr = errors.New("user store unavailable")

	require.NoError(t, svc.Invite(context.Background(), event, user))

	// event-side write landed, membership event published for reconciliation
	stored, err := store.GetEvent(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Contains(t, stored.PendingParticipants, "user-1")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, model.ActionInvited, sender.sent[0].Action)
}

func TestEventSideWriteFailureSurfaces(t *testing.T) {
	store := newMemStore()
	svc := testMembershipService(store, nil)
	event, user := seedPair(t, store)
	storeErr := errors.New("event store unavailable")
	store.eventUpdateErr = storeErr

	err := svc.Invite(context.Background(), event, user)
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, event.PendingParticipants)
}

func TestInviteAParticipantIsANoop(t *testing.T) {
	store := newMemStore()
	sender := &mockSender{}
	svc := testMembershipService(store, sender)
	event, user := seedPair(t, store)
	ctx := context.Background()

	require.NoError(t, svc.JoinEvent(ctx, event, user))
	require.NoError(t, svc.Invite(ctx, event, user))

	// the participant must not reappear as pending
	assert.NotContains(t, event.PendingParticipants, "user-1")
	assert.Contains(t, event.Participants, "user-1")

	stored, err := store.GetEvent(ctx, "event-1")
	require.NoError(t, err)
	assert.Empty(t, stored.PendingParticipants)

	// only the join was published
	require.Len(t, sender.sent, 1)
	assert.Equal(t, model.ActionJoined, sender.sent[0].Action)
}

func TestAcceptInvitationAtCapacityIsANoop(t *testing.T) {
	store := newMemStore()
	sender := &mockSender{}
	svc := testMembershipService(store, sender)
	ctx := context.Background()

	event := &model.Event{
		EventID:         "event-1",
		CreatorID:       "creator",
		Participants:    []string{"creator"},
		MaxParticipants: 1,
		Public:          true,
	}
	user := &model.User{UID: "user-1"}
	require.NoError(t, store.PutEvent(ctx, event))
	require.NoError(t, store.PutUser(ctx, user))

	require.NoError(t, svc.Invite(ctx, event, user))
	require.NoError(t, svc.AcceptInvitation(ctx, event, user))

	assert.NotContains(t, event.Participants, "user-1")
	assert.NotContains(t, user.JoinedEvents, "event-1")
	// the invitation stays pending so a freed spot can still be accepted
	assert.Contains(t, event.PendingParticipants, "user-1")

	// only the invitation was published
	require.Len(t, sender.sent, 1)
	assert.Equal(t, model.ActionInvited, sender.sent[0].Action)
}
