package service

import (
	"context"

	"mytickets/internal/clock"
	"mytickets/internal/logger"
	"mytickets/internal/metrics"
	"mytickets/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// EventStore persists events. Create and Update report a taken name as
// ErrDuplicateName; Update and Delete report an unknown id as ErrEventNotFound.
// GetByID returns (nil, nil) when the event does not exist.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

// TicketStore persists tickets. Create reports ErrDuplicateCode for a taken
// (event, code) pair. MarkUsed is a conditional write.
type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	MarkUsed(ctx context.Context, id int64) (*models.Ticket, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

// EventCache is a read-through cache for events. Get methods return
// cache.ErrCacheMiss when nothing is stored. Set methods take the Version read
// before loading the value and return cache.ErrStaleVersion if an
// invalidation happened in between.
type EventCache interface {
	Version(ctx context.Context) (int64, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	SetEvent(ctx context.Context, event *models.Event, version int64) error
	GetEventList(ctx context.Context) ([]models.Event, error)
	SetEventList(ctx context.Context, events []models.Event, version int64) error
	InvalidateEvent(ctx context.Context, id int64) error
}

// EventSearcher returns ids of events matching a full-text query, best match first.
type EventSearcher interface {
	SearchEventIDs(ctx context.Context, query string) ([]int64, error)
}

// Dependencies wires the services. Publisher, Cache and Search are optional.
type Dependencies struct {
	Events     EventStore
	Tickets    TicketStore
	Users      UserStore
	Publisher  Publisher
	Cache      EventCache
	Search     EventSearcher
	Clock      clock.Clock
	BcryptCost int
}

type Services struct {
	Events  *EventService
	Tickets *TicketService
	Users   *UserService
}

func NewServices(deps Dependencies) *Services {
	if deps.Publisher == nil {
		deps.Publisher = nopPublisher{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}

	return &Services{
		Events:  NewEventService(deps.Events, deps.Cache, deps.Search, deps.Publisher, deps.Clock),
		Tickets: NewTicketService(deps.Tickets, deps.Events, deps.Publisher, deps.Clock),
		Users:   NewUserService(deps.Users, deps.Publisher, deps.Clock, deps.BcryptCost),
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) error { return nil }

// publish sends a domain message. Failures are logged and never fail the caller.
func publish(ctx context.Context, p Publisher, subject string, data any) {
	if err := p.Publish(subject, data); err != nil {
		metrics.PublishFailures.WithLabelValues(subject).Inc()
		logger.WithContext(ctx).Error("Failed to publish message",
			"error", err,
			"subject", subject)
	}
}
