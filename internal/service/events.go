package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mytickets/internal/cache"
	"mytickets/internal/clock"
	apperrors "mytickets/internal/errors"
	"mytickets/internal/logger"
	"mytickets/internal/metrics"
	"mytickets/internal/models"
)

type EventService struct {
	events    EventStore
	cache     EventCache
	search    EventSearcher
	publisher Publisher
	clock     clock.Clock
}

func NewEventService(events EventStore, eventCache EventCache, search EventSearcher, publisher Publisher, clk clock.Clock) *EventService {
	return &EventService{
		events:    events,
		cache:     eventCache,
		search:    search,
		publisher: publisher,
		clock:     clk,
	}
}

// Create stores a new event. The name must not be held by another event.
func (s *EventService) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	event := &models.Event{Name: in.Name, Date: in.Date}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	metrics.EventsCreated.Inc()
	s.invalidate(ctx, event.ID)
	publish(ctx, s.publisher, models.SubjectEventCreated, s.changedMessage(event))

	return event, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	version, cacheable := int64(0), false
	if s.cache != nil {
		event, err := s.cache.GetEvent(ctx, id)
		if err == nil {
			metrics.CacheRequests.WithLabelValues("event", "hit").Inc()
			return event, nil
		}
		s.logCacheError(ctx, err)
		metrics.CacheRequests.WithLabelValues("event", "miss").Inc()
		version, cacheable = s.cacheVersion(ctx)
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	if cacheable {
		if err := s.cache.SetEvent(ctx, event, version); err != nil {
			s.logCacheError(ctx, err)
		}
	}

	return event, nil
}

// List returns events in id order. A non-empty query narrows the result to
// events whose name matches it: through the search index when configured,
// by case-insensitive substring otherwise.
func (s *EventService) List(ctx context.Context, query string) ([]models.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.listAll(ctx)
	}

	if s.search != nil {
		ids, err := s.search.SearchEventIDs(ctx, query)
		if err == nil {
			events, err := s.events.ListByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load found events: %w", err)
			}
			return events, nil
		}
		logger.WithContext(ctx).Warn("Event search failed, filtering in place",
			"error", err,
			"query", query)
	}

	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByName(all, query), nil
}

func (s *EventService) listAll(ctx context.Context) ([]models.Event, error) {
	version, cacheable := int64(0), false
	if s.cache != nil {
		events, err := s.cache.GetEventList(ctx)
		if err == nil {
			metrics.CacheRequests.WithLabelValues("event_list", "hit").Inc()
			return events, nil
		}
		s.logCacheError(ctx, err)
		metrics.CacheRequests.WithLabelValues("event_list", "miss").Inc()
		version, cacheable = s.cacheVersion(ctx)
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if cacheable {
		if err := s.cache.SetEventList(ctx, events, version); err != nil {
			s.logCacheError(ctx, err)
		}
	}

	return events, nil
}

// Update replaces name and date of an existing event. Renaming an event to
// its own name is allowed.
func (s *EventService) Update(ctx context.Context, id int64, in models.EventInput) (*models.Event, error) {
	event := &models.Event{ID: id, Name: in.Name, Date: in.Date}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidate(ctx, id)
	publish(ctx, s.publisher, models.SubjectEventUpdated, s.changedMessage(event))

	return event, nil
}

// Delete removes the event and its tickets.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	metrics.EventsDeleted.Inc()
	s.invalidate(ctx, id)
	publish(ctx, s.publisher, models.SubjectEventDeleted, models.EventDeletedMessage{
		EventID:   id,
		Timestamp: s.clock.Now(),
	})

	return nil
}

func (s *EventService) changedMessage(event *models.Event) models.EventChangedMessage {
	return models.EventChangedMessage{
		EventID:   event.ID,
		Name:      event.Name,
		Date:      event.Date,
		Timestamp: s.clock.Now(),
	}
}

// invalidate drops the cached event and the cached list
func (s *EventService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvent(ctx, id); err != nil {
		logger.WithContext(ctx).Error("Failed to invalidate events cache",
			"error", err,
			"event_id", id)
	}
}

// cacheVersion reads the invalidation counter. Without it nothing gets cached.
func (s *EventService) cacheVersion(ctx context.Context) (int64, bool) {
	version, err := s.cache.Version(ctx)
	if err != nil {
		s.logCacheError(ctx, err)
		return 0, false
	}
	return version, true
}

func (s *EventService) logCacheError(ctx context.Context, err error) {
	if errors.Is(err, cache.ErrCacheMiss) {
		return
	}
	if errors.Is(err, cache.ErrStaleVersion) {
		logger.WithContext(ctx).Debug("Skipped caching stale events read")
		return
	}
	logger.WithContext(ctx).Warn("Events cache unavailable", "error", err)
}

func filterByName(events []models.Event, query string) []models.Event {
	needle := strings.ToLower(query)
	result := []models.Event{}
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Name), needle) {
			result = append(result, event)
		}
	}
	return result
}
