package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/venn-app/venn/internal/core/model"
)

// NewProducer creates a new producer.
func NewProducer(topic *pubsub.Topic) (*Producer, error) {
	if topic == nil {
		return nil, errors.New("topic is nil")
	}
	return &Producer{topic: topic}, nil
}

// Producer publishes membership events to a pubsub topic. The payload is
// the JSON encoding of the event; the reconciliation worker consumes it
// to converge lagging user-side mirror writes.
type Producer struct {
	topic *pubsub.Topic
}

func (p *Producer) Send(ctx context.Context, event model.MembershipEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling membership event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
	})
	// Block until the result is returned and a server-generated
	// ID is returned for the published message.
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("pubsub: result.Get: %v", err)
	}
	return nil
}
