package httpapi

import (
	"context"

	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// fakeStore is an in-memory DocumentStore for the handler tests.
type fakeStore struct {
	users  map[string]*model.User
	events map[string]*model.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*model.User),
		events: make(map[string]*model.Event),
	}
}

func (f *fakeStore) GetUser(ctx context.Context, uid string) (*model.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) PutUser(ctx context.Context, user *model.User) error {
	cp := *user
	f.users[user.UID] = &cp
	return nil
}

func (f *fakeStore) UpdateUserFields(ctx context.Context, uid string, patch *model.UserPatch) error {
	u, ok := f.users[uid]
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
	return nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, uid string) error {
	delete(f.users, uid)
	return nil
}

func (f *fakeStore) ListUsers(ctx context.Context, query ports.ListUsersQuery) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if query.FollowingContains != "" && !containsString(u.Following, query.FollowingContains) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	e, ok := f.events[eventID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) PutEvent(ctx context.Context, event *model.Event) error {
	cp := *event
	f.events[event.EventID] = &cp
	return nil
}

func (f *fakeStore) UpdateEventFields(ctx context.Context, eventID string, patch *model.EventPatch) error {
	e, ok := f.events[eventID]
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
	return nil
}

func (f *fakeStore) DeleteEvent(ctx context.Context, eventID string) error {
	delete(f.events, eventID)
	return nil
}

func (f *fakeStore) ListEvents(ctx context.Context, query ports.ListEventsQuery) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
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

func containsString(set []string, s string) bool {
	for _, e := range set {
		if e == s {
			return true
		}
	}
	return false
}
