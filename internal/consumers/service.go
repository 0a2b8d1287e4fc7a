package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mytickets/internal/cache"
	"mytickets/internal/config"
	"mytickets/internal/database"
	"mytickets/internal/messaging"
	"mytickets/internal/models"
	"mytickets/internal/repository"
	"mytickets/internal/search"

	"github.com/nats-io/stan.go"
)

const queueGroup = "mytickets-consumers"

// Subjects the consumers subscribe to
var Subjects = []string{
	models.SubjectEventCreated,
	models.SubjectEventUpdated,
	models.SubjectEventDeleted,
	models.SubjectTicketCreated,
	models.SubjectTicketUsed,
	models.SubjectUserCreated,
}

type ConsumerService struct {
	db            *database.DB
	nats          *messaging.NATSClient
	cache         *cache.ValkeyClient
	es            *search.ElasticsearchClient
	handlers      *Handlers
	subscriptions []stan.Subscription
}

func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	if !cfg.NATS.Enabled {
		return nil, errors.New("consumers need NATS: set NATS_ENABLED=true")
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	cs := &ConsumerService{
		db:   db,
		nats: natsClient,
	}

	var (
		index       EventIndex
		invalidator CacheInvalidator
	)

	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			cs.Shutdown(ctx)
			return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
		}
		cs.es = es
		index = es
	}

	if cfg.Cache.Enabled {
		valkey, err := cache.NewValkeyClient(ctx, cfg.Cache)
		if err != nil {
			cs.Shutdown(ctx)
			return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
		}
		cs.cache = valkey
		invalidator = valkey
	}

	cs.handlers = NewHandlers(repository.NewEventRepository(db), index, invalidator)
	return cs, nil
}

// Reindexer returns a full reindexer when search is enabled, nil otherwise
func (cs *ConsumerService) Reindexer() *Reindexer {
	if cs.es == nil {
		return nil
	}
	return NewReindexer(repository.NewEventRepository(cs.db), cs.es)
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	for _, subject := range Subjects {
		sub, err := cs.nats.SubscribeQueue(subject, queueGroup, cs.handlers.Handle)
		if err != nil {
			return err
		}
		cs.subscriptions = append(cs.subscriptions, sub)
	}

	slog.Info("All consumers started successfully", "subjects", len(Subjects))
	return nil
}

// Shutdown closes subscriptions and connections. Durable subscriptions are
// closed, not unsubscribed, so the position survives a restart.
func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	for _, sub := range cs.subscriptions {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.cache != nil {
		if err := cs.cache.Close(); err != nil {
			slog.Error("Error closing cache connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
