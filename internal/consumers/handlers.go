package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mytickets/internal/metrics"
	"mytickets/internal/models"

	"github.com/nats-io/stan.go"
)

// errMalformed marks messages that can never be processed; they are acked and dropped
var errMalformed = errors.New("malformed message")

// EventLoader reads the current state of an event; (nil, nil) when it is gone
type EventLoader interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

type EventIndex interface {
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

type CacheInvalidator interface {
	InvalidateEvent(ctx context.Context, id int64) error
}

// Handlers keeps the search index and the events cache in line with the
// domain messages. index and cache may be nil.
type Handlers struct {
	events  EventLoader
	index   EventIndex
	cache   CacheInvalidator
	timeout time.Duration
}

func NewHandlers(events EventLoader, index EventIndex, cache CacheInvalidator) *Handlers {
	return &Handlers{
		events:  events,
		index:   index,
		cache:   cache,
		timeout: 30 * time.Second,
	}
}

// Handle adapts process to a stan callback. Failed messages are not acked so
// that they get redelivered after AckWait.
func (h *Handlers) Handle(m *stan.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err := h.process(ctx, m.Subject, m.Data)
	switch {
	case err == nil:
		metrics.ConsumedMessages.WithLabelValues(m.Subject, "ok").Inc()
	case errors.Is(err, errMalformed):
		metrics.ConsumedMessages.WithLabelValues(m.Subject, "dropped").Inc()
		slog.Error("Dropping malformed message", "subject", m.Subject, "sequence", m.Sequence, "error", err)
	default:
		metrics.ConsumedMessages.WithLabelValues(m.Subject, "failed").Inc()
		slog.Error("Failed to process message", "subject", m.Subject, "sequence", m.Sequence, "error", err)
		return
	}

	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", m.Subject, "sequence", m.Sequence, "error", err)
	}
}

func (h *Handlers) process(ctx context.Context, subject string, data []byte) error {
	switch subject {
	case models.SubjectEventCreated, models.SubjectEventUpdated:
		var msg models.EventChangedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return h.syncEvent(ctx, msg.EventID)

	case models.SubjectEventDeleted:
		var msg models.EventDeletedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return h.removeEvent(ctx, msg.EventID)

	case models.SubjectTicketCreated, models.SubjectTicketUsed:
		var msg models.TicketMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		slog.Info("Ticket activity", "subject", subject, "ticket_id", msg.TicketID, "event_id", msg.EventID, "used", msg.Used)
		return nil

	case models.SubjectUserCreated:
		var msg models.UserCreatedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		slog.Info("User registered", "user_id", msg.UserID)
		return nil

	default:
		return fmt.Errorf("%w: unknown subject %q", errMalformed, subject)
	}
}

// syncEvent indexes the event as currently stored. The message payload may be
// older than the row, so it is not indexed directly.
func (h *Handlers) syncEvent(ctx context.Context, id int64) error {
	event, err := h.events.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load event %d: %w", id, err)
	}
	if event == nil {
		return h.removeEvent(ctx, id)
	}

	if h.index != nil {
		if err := h.index.IndexEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to index event %d: %w", id, err)
		}
	}
	return h.invalidate(ctx, id)
}

func (h *Handlers) removeEvent(ctx context.Context, id int64) error {
	if h.index != nil {
		if err := h.index.DeleteEvent(ctx, id); err != nil {
			return fmt.Errorf("failed to remove event %d from index: %w", id, err)
		}
	}
	return h.invalidate(ctx, id)
}

func (h *Handlers) invalidate(ctx context.Context, id int64) error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.InvalidateEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to invalidate cached event %d: %w", id, err)
	}
	return nil
}
