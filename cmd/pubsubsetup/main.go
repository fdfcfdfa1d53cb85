package main

import (
	"context"
	"log"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/venn-app/venn/internal/config"
)

// pubsubsetup provisions the membership-events topic and the worker
// subscription on the configured project. It is meant for the local
// emulator; both creations tolerate the resource already existing.
func main() {
	cfg := config.Load()
	if cfg.PubSubProjectID == "" {
		log.Fatal("PUBSUB_PROJECT_ID is mandatory")
	}

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
	if err != nil {
		log.Fatalf("unable to create client to project %q: %v", cfg.PubSubProjectID, err)
	}
	defer client.Close()

	topic, err := client.CreateTopic(ctx, cfg.MembershipTopicID)
	if err != nil && !strings.Contains(err.Error(), "Topic already exists") {
		log.Fatalf("unable to create topic %s: %v", cfg.MembershipTopicID, err)
	}
	if topic == nil {
		topic = client.Topic(cfg.MembershipTopicID)
	}

	_, err = client.CreateSubscription(ctx, cfg.MembershipSubscriptionID, pubsub.SubscriptionConfig{Topic: topic})
	if err != nil && !strings.Contains(err.Error(), "Subscription already exists") {
		log.Fatalf("unable to create subscription %s on topic %s: %v", cfg.MembershipSubscriptionID, cfg.MembershipTopicID, err)
	}

	log.Printf("project, topic, subscription: [%s, %s, %s]", cfg.PubSubProjectID, cfg.MembershipTopicID, cfg.MembershipSubscriptionID)
}
