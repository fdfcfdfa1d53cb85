package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/go-pg/pg/v10"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/venn-app/venn/internal/actors/httpapi"
	mongoactor "github.com/venn-app/venn/internal/actors/mongo"
	postgresactor "github.com/venn-app/venn/internal/actors/postgres"
	produceractor "github.com/venn-app/venn/internal/actors/pubsub/producer"
	redisactor "github.com/venn-app/venn/internal/actors/redis"
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

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("could not initialize document store")
		return err
	}
	defer closeStore()

	var cache ports.EventCache
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		cache, err = redisactor.NewEventCache(redisactor.EventCacheArgs{Client: client}, redisactor.WithTTL(cfg.CacheTTL))
		if err != nil {
			log.WithError(err).Error("could not initialize event cache")
			return err
		}
	}

	var sender ports.Sender
	if cfg.PubSubProjectID != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
		if err != nil {
			log.WithError(err).Error("could not initialize pubsub client")
			return err
		}
		defer client.Close()
		sender, err = produceractor.NewProducer(client.Topic(cfg.MembershipTopicID))
		if err != nil {
			log.WithError(err).Error("could not initialize membership event producer")
			return err
		}
	}

	var socialOpts []usecase.SocialGraphServiceOptArgs
	if cfg.MutualFollowGuard {
		socialOpts = append(socialOpts, usecase.WithMutualFollowGuard(true))
	}

	serverArgs := httpapi.ServerArgs{
		Users:      usecase.NewUserService(usecase.UserServiceArgs{Store: store}),
		Events:     usecase.NewEventService(usecase.EventServiceArgs{Store: store, Cache: cache, Sender: sender}),
		Membership: usecase.NewMembershipService(usecase.MembershipServiceArgs{Store: store, Sender: sender}),
		Social:     usecase.NewSocialGraphService(usecase.SocialGraphServiceArgs{Store: store}, socialOpts...),
		Favorites:  usecase.NewFavoritesService(usecase.FavoritesServiceArgs{Store: store}),
		Search:     usecase.NewSearchService(usecase.SearchServiceArgs{Store: store}),
	}
	var serverOpts []httpapi.ServerOptArgs
	if cfg.RateLimit > 0 {
		serverOpts = append(serverOpts, httpapi.WithRateLimit(cfg.RateLimit, cfg.RateLimitPeriod))
	}
	api := httpapi.NewServer(serverArgs, serverOpts...)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Handler()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server error")
		}
	}()

	log.WithField("http-server-addr", cfg.HTTPAddr).
		WithField("backend", cfg.Backend).
		Info("server up or soon to be up. listening to SIGTERM, SIGINT, SIGQUIT for stopping the server")

	// Wait for signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
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
