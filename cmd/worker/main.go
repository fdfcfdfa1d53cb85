package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"
	"github.com/go-pg/pg/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoactor "github.com/venn-app/venn/internal/actors/mongo"
	postgresactor "github.com/venn-app/venn/internal/actors/postgres"
	subscriberactor "github.com/venn-app/venn/internal/actors/pubsub/subscriber"
	"github.com/venn-app/venn/internal/config"
	"github.com/venn-app/venn/internal/core/ports"
	"github.com/venn-app/venn/internal/core/usecase"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.SetLevel(log.DebugLevel)
}

// The worker consumes membership events and re-applies the user-side
// mirror write, converging documents left diverged by a crashed caller.
func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if cfg.PubSubProjectID == "" {
		return errors.New("PUBSUB_PROJECT_ID is mandatory for the reconciliation worker")
	}

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("could not initialize document store")
		return err
	}
	defer closeStore()

	client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
	if err != nil {
		return err
	}
	defer client.Close()

	subscriber := subscriberactor.NewSubscriber(subscriberactor.SubscriberArgs{
		Subscription: client.Subscription(cfg.MembershipSubscriptionID),
		Handler:      usecase.NewReconciler(store),
	})

	// start subscriber
	go func(ctx context.Context) {
		if err := subscriber.Consume(ctx); err != nil {
			log.WithError(err).Fatal("subscriber error")
		}
	}(ctx)

	// liveness endpoint
	healthAddr := os.Getenv("WORKER_HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = "localhost:8081"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	go func() {
		if err := http.ListenAndServe(healthAddr, mux); err != nil {
			log.WithError(err).Fatal("health server error")
		}
	}()

	log.WithField("subscription", cfg.MembershipSubscriptionID).
		WithField("health-addr", healthAddr).
		Info("worker up or soon to be up. listening to SIGTERM, SIGINT, SIGQUIT for stopping the worker")

	// Wait for signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-ch
	return nil
}

// buildStore wires the configured document store backend.
func buildStore(ctx context.Context, cfg *config.Config) (ports.DocumentStore, func(), error) {
	switch cfg.Backend {
	case "postgres":
		opts, err := pg.ParseURL(cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		db := pg.Connect(opts)
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store, err := postgresactor.NewPostgresDB(postgresactor.PostgresDBArgs{DB: db})
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	default:
		clientOptions := options.Client().ApplyURI(cfg.MongoURL)
		db, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(ctx, nil); err != nil {
			return nil, nil, err
		}
		store, err := mongoactor.NewMongoDB(mongoactor.MongoDBArgs{
			UserCollection:  db.Database(cfg.MongoDatabase).Collection("users"),
			EventCollection: db.Database(cfg.MongoDatabase).Collection("events"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = db.Disconnect(context.Background()) }, nil
	}
}

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}
