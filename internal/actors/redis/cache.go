package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/venn-app/venn/internal/core/model"
)

const keyPrefix = "events:last_loaded:"

// EventCacheArgs are the mandatory arguments for the creation of an EventCache.
type EventCacheArgs struct {
	// Client is a redis client.
	Client *goredis.Client
}

// EventCacheOptArgs are the optional arguments for building an EventCache.
type EventCacheOptArgs = func(*EventCache)

// WithTTL overrides the expiration of cached event lists.
func WithTTL(ttl time.Duration) EventCacheOptArgs {
	return func(c *EventCache) {
		c.ttl = ttl
	}
}

// NewEventCache creates a new EventCache.
func NewEventCache(args EventCacheArgs, optArgs ...EventCacheOptArgs) (*EventCache, error) {
	if args.Client == nil {
		return nil, errors.New("redis client is nil")
	}
	c := &EventCache{client: args.Client, ttl: 5 * time.Minute}
	for _, opt := range optArgs {
		opt(c)
	}
	return c, nil
}

// EventCache holds the last loaded event list per viewer. Each viewer
// owns its entry, so one viewer's refresh never clobbers another's.
type EventCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Get returns the cached event list of the owner. It returns
// model.ErrNotFound on a cache miss.
func (c *EventCache) Get(ctx context.Context, owner string) ([]model.Event, error) {
	data, err := c.client.Get(ctx, keyPrefix+owner).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading event cache: %w", err)
	}
	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("error unmarshaling cached events: %w", err)
	}
	return events, nil
}

// Put replaces the cached event list of the owner.
func (c *EventCache) Put(ctx context.Context, owner string, events []model.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("error marshaling events for cache: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+owner, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing event cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached event list of the owner.
func (c *EventCache) Invalidate(ctx context.Context, owner string) error {
	if err := c.client.Del(ctx, keyPrefix+owner).Err(); err != nil {
		return fmt.Errorf("error invalidating event cache: %w", err)
	}
	return nil
}
