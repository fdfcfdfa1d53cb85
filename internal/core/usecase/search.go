package usecase

import (
	"context"
	"fmt"

	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// SearchServiceArgs contains the mandatory arguments for the SearchService.
type SearchServiceArgs struct {
	// Store is the document store for persistence operations.
	Store ports.DocumentStore
}

// NewSearchService creates a new SearchService.
func NewSearchService(args SearchServiceArgs) *SearchService {
	return &SearchService{store: args.Store}
}

// SearchService finds users and public events matching a free-text query.
type SearchService struct {
	store ports.DocumentStore
}

// Search returns the users and public events matching the query. A blank
// query matches everything.
func (s *SearchService) Search(ctx context.Context, query string) (*model.SearchResults, error) {
	users, err := s.store.ListUsers(ctx, ports.ListUsersQuery{})
	if err != nil {
		return nil, fmt.Errorf("error listing users from store: %w", err)
	}
	events, err := s.store.ListEvents(ctx, ports.ListEventsQuery{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("error listing events from store: %w", err)
	}

	results := &model.SearchResults{}
	for _, u := range users {
		if u.MatchesQuery(query) {
			results.Users = append(results.Users, u)
		}
	}
	for _, e := range events {
		if e.MatchesQuery(query) {
			results.Events = append(results.Events, e)
		}
	}
	return results, nil
}
