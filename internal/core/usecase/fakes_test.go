package usecase

import (
	"context"

	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// memStore is an in-memory DocumentStore used by the usecase tests. It
// applies patches with the same merge semantics as the real adapters.
type memStore struct {
	users  map[string]*model.User
	events map[string]*model.Event

	userUpdateErr  error
	eventUpdateErr error

	userWrites  int
	eventWrites int
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*model.User),
		events: make(map[string]*model.Event),
	}
}

func (m *memStore) GetUser(ctx context.Context, uid string) (*model.User, error) {
	u, ok := m.users[uid]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) PutUser(ctx context.Context, user *model.User) error {
	cp := *user
	m.users[user.UID] = &cp
	m.userWrites++
	return nil
}

func (m *memStore) UpdateUserFields(ctx context.Context, uid string, patch *model.UserPatch) error {
	if m.userUpdateErr != nil {
		return m.userUpdateErr
	}
	u, ok := m.users[uid]
	if !ok {
		return model.ErrNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		u.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Country != nil {
		u.Country = *patch.Country
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Following != nil {
		u.Following = *patch.Following
	}
	if patch.Followers != nil {
		u.Followers = *patch.Followers
	}
	if patch.PendingRequests != nil {
		u.PendingRequests = *patch.PendingRequests
	}
	if patch.JoinedEvents != nil {
		u.JoinedEvents = *patch.JoinedEvents
	}
	if patch.MyEvents != nil {
		u.MyEvents = *patch.MyEvents
	}
	if patch.MyFavorites != nil {
		u.MyFavorites = *patch.MyFavorites
	}
	if patch.Tags != nil {
		u.Tags = *patch.Tags
	}
	if patch.Rating != nil {
		u.Rating = *patch.Rating
	}
	m.userWrites++
	return nil
}

func (m *memStore) DeleteUser(ctx context.Context, uid string) error {
	delete(m.users, uid)
	m.userWrites++
	return nil
}

func (m *memStore) ListUsers(ctx context.Context, query ports.ListUsersQuery) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if query.FollowingContains != "" && !contains(u.Following, query.FollowingContains) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	e, ok := m.events[eventID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) PutEvent(ctx context.Context, event *model.Event) error {
	cp := *event
	m.events[event.EventID] = &cp
	m.eventWrites++
	return nil
}

func (m *memStore) UpdateEventFields(ctx context.Context, eventID string, patch *model.EventPatch) error {
	if m.eventUpdateErr != nil {
		return m.eventUpdateErr
	}
	e, ok := m.events[eventID]
	if !ok {
		return model.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Time != nil {
		e.Time = *patch.Time
	}
	if patch.Price != nil {
		e.Price = *patch.Price
	}
	if patch.URL != nil {
		e.URL = *patch.URL
	}
	if patch.PendingParticipants != nil {
		e.PendingParticipants = *patch.PendingParticipants
	}
	if patch.Participants != nil {
		e.Participants = *patch.Participants
	}
	if patch.VisibleToIfPrivate != nil {
		e.VisibleToIfPrivate = *patch.VisibleToIfPrivate
	}
	if patch.MaxParticipants != nil {
		e.MaxParticipants = *patch.MaxParticipants
	}
	if patch.Public != nil {
		e.Public = *patch.Public
	}
	if patch.Tags != nil {
		e.Tags = *patch.Tags
	}
	if patch.Images != nil {
		e.Images = *patch.Images
	}
	if patch.NViews != nil {
		e.NViews = *patch.NViews
	}
	if patch.Ratings != nil {
		e.Ratings = *patch.Ratings
	}
	m.eventWrites++
	return nil
}

func (m *memStore) DeleteEvent(ctx context.Context, eventID string) error {
	delete(m.events, eventID)
	m.eventWrites++
	return nil
}

func (m *memStore) ListEvents(ctx context.Context, query ports.ListEventsQuery) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.events {
		if query.PublicOnly && !e.Public {
			continue
		}
		if query.CreatorID != "" && e.CreatorID != query.CreatorID {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	sent      []model.MembershipEvent
	sendError error
}

func (m *mockSender) Send(ctx context.Context, event model.MembershipEvent) error {
	m.sent = append(m.sent, event)
	return m.sendError
}

// memCache is an in-memory EventCache.
type memCache struct {
	entries map[string][]model.Event
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]model.Event)}
}

func (c *memCache) Get(ctx context.Context, owner string) ([]model.Event, error) {
	events, ok := c.entries[owner]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := make([]model.Event, len(events))
	copy(out, events)
	return out, nil
}

func (c *memCache) Put(ctx context.Context, owner string, events []model.Event) error {
	cp := make([]model.Event, len(events))
	copy(cp, events)
	c.entries[owner] = cp
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, owner string) error {
	delete(c.entries, owner)
	return nil
}
