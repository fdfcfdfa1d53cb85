package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"

	log "github.com/sirupsen/logrus"
)

// SubscriberArgs contain the mandatory arguments to build a subscriber.
type SubscriberArgs struct {
	// Subscription is a pubsub subscription
	Subscription *pubsub.Subscription

	// Handler processes the decoded membership events.
	Handler ports.MembershipEventHandler
}

// Subscriber is a pubsub async subscriber of membership events.
type Subscriber struct {
	subscription *pubsub.Subscription
	handler      ports.MembershipEventHandler
}

// NewSubscriber creates a subscriber
func NewSubscriber(args SubscriberArgs) *Subscriber {
	return &Subscriber{
		subscription: args.Subscription,
		handler:      args.Handler,
	}
}

// Consume starts the subscriber. This is a blocking method and should be started in it's own go-routine.
// The way to terminate the method is to cancel the context in input.
// A handler error nacks the message, so the at-least-once redelivery
// retries it; the handler is idempotent by construction.
func (s *Subscriber) Consume(ctx context.Context) error {
	if err := s.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		event, err := decodeMembershipEvent(msg)
		if err != nil {
			log.WithError(err).Error("error decoding message into membership event")
			msg.Nack()
			return
		}

		if err := s.handler.Handle(ctx, *event); err != nil {
			log.WithError(err).Error("error in membership event handler")
			msg.Nack()
		} else {
			msg.Ack()
		}
	}); err != nil {
		return fmt.Errorf("error receiving messages from subscription: %w", err)
	}
	return nil
}

func decodeMembershipEvent(msg *pubsub.Message) (*model.MembershipEvent, error) {
	if msg == nil {
		return nil, errors.New("cannot decode nil pubsub msg")
	}
	event := new(model.MembershipEvent)
	if err := json.Unmarshal(msg.Data, event); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	if event.ID == "" {
		event.ID = msg.ID
	}
	if event.Action == "" || event.EventID == "" || event.UserID == "" {
		return nil, errors.New("membership event misses action, event-id or user-id")
	}
	return event, nil
}
