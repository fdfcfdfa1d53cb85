package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// EventServiceArgs contains the mandatory arguments for the EventService.
type EventServiceArgs struct {
	// Store is the document store for persistence operations.
	Store ports.DocumentStore

	// Cache holds the last loaded event list per viewer. Optional; when
	// nil every read goes to the store.
	Cache ports.EventCache

	// Ranker orders event lists for display.
	Ranker *Ranker

	// Sender publishes membership events for the reconciliation worker.
	// Optional.
	Sender ports.Sender

	// NowFunc can be used to override the clock. Optional; useful for testing.
	NowFunc func() time.Time

	// IDFunc can be used to override event-id generation. Optional; useful for testing.
	IDFunc func() string
}

// NewEventService creates a new EventService.
func NewEventService(args EventServiceArgs) *EventService {
	s := &EventService{
		store:   args.Store,
		cache:   args.Cache,
		ranker:  args.Ranker,
		sender:  args.Sender,
		nowFunc: args.NowFunc,
		idFunc:  args.IDFunc,
	}
	if s.ranker == nil {
		s.ranker = NewRanker()
	}
	if s.nowFunc == nil {
		s.nowFunc = func() time.Time { return time.Now().UTC() }
	}
	if s.idFunc == nil {
		s.idFunc = uuid.NewString
	}
	return s
}

// EventService gathers the functionality around the event lifecycle:
// creation, edition, removal, ranked listing, view counting and rating.
type EventService struct {
	store   ports.DocumentStore
	cache   ports.EventCache
	ranker  *Ranker
	sender  ports.Sender
	nowFunc func() time.Time
	idFunc  func() string
}

// CreateEvent creates an event. The creator auto-joins: it is added to
// the participants and the event is mirrored into the creator's
// joined-events and my-events lists.
func (s *EventService) CreateEvent(ctx context.Context, args model.CreateEventArgs) (*model.Event, error) {
	if args.CreatorID == "" {
		return nil, errors.New("event creator id is empty")
	}

	event := &model.Event{
		EventID:             args.EventID,
		CreatorID:           args.CreatorID,
		Title:               args.Title,
		Description:         args.Description,
		Location:            args.Location,
		Date:                args.Date,
		Time:                args.Time,
		Price:               args.Price,
		URL:                 args.URL,
		PendingParticipants: args.PendingParticipants,
		Participants:        addToSet(args.Participants, args.CreatorID),
		VisibleToIfPrivate:  args.VisibleToIfPrivate,
		MaxParticipants:     args.MaxParticipants,
		Public:              args.Public,
		Tags:                args.Tags,
		Images:              args.Images,
		CreatedAt:           s.nowFunc(),
	}
	if event.EventID == "" {
		event.EventID = s.idFunc()
	}

	if err := s.store.PutEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("error saving event in store: %w", err)
	}

	s.mirrorCreator(ctx, event)
	s.invalidate(ctx, args.CreatorID)
	return event, nil
}

// mirrorCreator applies the creator-side mirror writes of event
// creation. Failures are recoverable anomalies repaired by the
// reconciliation worker, not operation failures.
func (s *EventService) mirrorCreator(ctx context.Context, event *model.Event) {
	creator, err := s.store.GetUser(ctx, event.CreatorID)
	if err != nil {
		log.WithError(err).WithField("user_id", event.CreatorID).
			Warn("could not load creator for mirror write")
	} else {
		joined := addToSet(creator.JoinedEvents, event.EventID)
		mine := addToSet(creator.MyEvents, event.EventID)
		patch := &model.UserPatch{JoinedEvents: &joined, MyEvents: &mine}
		if err := s.store.UpdateUserFields(ctx, event.CreatorID, patch); err != nil {
			log.WithError(err).WithField("user_id", event.CreatorID).
				Warn("mirror write failed; reconciliation will converge the user document")
		}
	}

	if s.sender == nil {
		return
	}
	evt := model.MembershipEvent{
		Action:     model.ActionJoined,
		EventID:    event.EventID,
		UserID:     event.CreatorID,
		OccurredAt: s.nowFunc(),
	}
	if err := s.sender.Send(ctx, evt); err != nil {
		log.WithError(err).WithField("event_id", event.EventID).
			Warn("error publishing membership event")
	}
}

// GetEvent returns the event, or nil if it does not exist.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting event from store: %w", err)
	}
	return event, nil
}

// GetAllEvents returns all events ranked for the viewer. The result is
// read through the viewer-owned cache; a cache miss loads from the
// store, ranks and fills the cache.
func (s *EventService) GetAllEvents(ctx context.Context, viewerID string) ([]model.Event, error) {
	if events, ok := s.cached(ctx, viewerID); ok {
		return events, nil
	}

	events, err := s.store.ListEvents(ctx, ports.ListEventsQuery{})
	if err != nil {
		return nil, fmt.Errorf("error listing events from store: %w", err)
	}

	var viewer *model.User
	if viewerID != "" {
		viewer, err = s.store.GetUser(ctx, viewerID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("error getting viewer from store: %w", err)
		}
	}

	ranked := s.ranker.Rank(viewer, events)
	if s.cache != nil && viewerID != "" {
		if err := s.cache.Put(ctx, viewerID, ranked); err != nil {
			log.WithError(err).WithField("viewer", viewerID).Warn("error filling event cache")
		}
	}
	return ranked, nil
}

// EditEvent applies a partial update to the event document. Fields not
// carried by the patch are untouched, so concurrent editors of disjoint
// fields do not overwrite each other.
func (s *EventService) EditEvent(ctx context.Context, eventID string, patch *model.EventPatch) error {
	if err := s.store.UpdateEventFields(ctx, eventID, patch); err != nil {
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

// RemoveEvent deletes the event document. Participants' joined-events
// lists are not scrubbed; readers resolve the dangling references lazily.
func (s *EventService) RemoveEvent(ctx context.Context, ownerID, eventID string) error {
	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("error deleting event from store: %w", err)
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// SawEvent increments the event's view counter by one. There is no
// viewer dedup; the counter is the sole volatile ranking signal.
func (s *EventService) SawEvent(ctx context.Context, viewerID, eventID string) error {
	var cachedList []model.Event
	var event *model.Event
	if s.cache != nil && viewerID != "" {
		if events, err := s.cache.Get(ctx, viewerID); err == nil {
			for i := range events {
				if events[i].EventID == eventID {
					cachedList = events
					event = &events[i]
					break
				}
			}
		}
	}

	if event == nil {
		stored, err := s.store.GetEvent(ctx, eventID)
		if errors.Is(err, model.ErrNotFound) {
			log.WithField("event_id", eventID).Warn("saw unknown event")
			return nil
		}
		if err != nil {
			return fmt.Errorf("error getting event from store: %w", err)
		}
		event = stored
	}

	views := event.NViews + 1
	if err := s.store.UpdateEventFields(ctx, eventID, &model.EventPatch{NViews: &views}); err != nil {
		return fmt.Errorf("error updating event views: %w", err)
	}
	event.NViews = views

	if cachedList != nil {
		if err := s.cache.Put(ctx, viewerID, cachedList); err != nil {
			log.WithError(err).WithField("viewer", viewerID).Warn("error refreshing event cache")
		}
	}
	return nil
}

// RateEvent records the rater's rating of the event and mirrors the
// delta into the creator's aggregate rating.
func (s *EventService) RateEvent(ctx context.Context, event *model.Event, raterUID string, rating int) error {
	if rating < 1 || rating > 5 {
		return model.ErrInvalidRating
	}

	old, rated := event.Ratings[raterUID]
	ratings := make(map[string]int, len(event.Ratings)+1)
	for k, v := range event.Ratings {
		ratings[k] = v
	}
	ratings[raterUID] = rating
	if err := s.store.UpdateEventFields(ctx, event.EventID, &model.EventPatch{Ratings: &ratings}); err != nil {
		return fmt.Errorf("error updating event ratings: %w", err)
	}
	event.Ratings = ratings

	creator, err := s.store.GetUser(ctx, event.CreatorID)
	if err != nil {
		log.WithError(err).WithField("user_id", event.CreatorID).
			Warn("could not load creator for rating mirror write")
		return nil
	}
	aggregate := creator.Rating
	aggregate.Sum += int64(rating - old)
	if !rated {
		aggregate.Count++
	}
	if err := s.store.UpdateUserFields(ctx, event.CreatorID, &model.UserPatch{Rating: &aggregate}); err != nil {
		log.WithError(err).WithField("user_id", event.CreatorID).
			Warn("rating mirror write failed")
	}
	return nil
}

func (s *EventService) cached(ctx context.Context, viewerID string) ([]model.Event, bool) {
	if s.cache == nil || viewerID == "" {
		return nil, false
	}
	events, err := s.cache.Get(ctx, viewerID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		log.WithError(err).WithField("viewer", viewerID).Warn("error reading event cache")
		return nil, false
	}
	return events, true
}

func (s *EventService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil || ownerID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		log.WithError(err).WithField("viewer", ownerID).Warn("error invalidating event cache")
	}
}
