package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venn-app/venn/internal/core/model"
)

func TestSearch(t *testing.T) {
	store := newMemStore()
	svc := NewSearchService(SearchServiceArgs{Store: store})
	ctx := context.Background()

	require.NoError(t, store.PutUser(ctx, &model.User{UID: "u1", Username: "jazzlover", FirstName: "Miles"}))
	require.NoError(t, store.PutUser(ctx, &model.User{UID: "u2", Username: "techie"}))
	require.NoError(t, store.PutEvent(ctx, &model.Event{EventID: "e1", Title: "Jazz night", Public: true}))
	require.NoError(t, store.PutEvent(ctx, &model.Event{EventID: "e2", Title: "Secret jazz jam", Public: false}))
	require.NoError(t, store.PutEvent(ctx, &model.Event{EventID: "e3", Title: "Go meetup", Public: true}))

	results, err := svc.Search(ctx, "jazz")
	require.NoError(t, err)

	require.Len(t, results.Users, 1)
	assert.Equal(t, "u1", results.Users[0].UID)
	require.Len(t, results.Events, 1)
	assert.Equal(t, "e1", results.Events[0].EventID, "private events never surface in search")
}

func TestSearchBlankQueryMatchesEverythingPublic(t *testing.T) {
	store := newMemStore()
	svc := NewSearchService(SearchServiceArgs{Store: store})
	ctx := context.Background()

	require.NoError(t, store.PutUser(ctx, &model.User{UID: "u1", Username: "ada"}))
	require.NoError(t, store.PutEvent(ctx, &model.Event{EventID: "e1", Public: true}))
	require.NoError(t, store.PutEvent(ctx, &model.Event{EventID: "e2", Public: false}))

	results, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, results.Users, 1)
	assert.Len(t, results.Events, 1)
}
