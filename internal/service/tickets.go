package service

import (
	"context"
	"errors"
	"fmt"

	"mytickets/internal/clock"
	apperrors "mytickets/internal/errors"
	"mytickets/internal/metrics"
	"mytickets/internal/models"
)

type TicketService struct {
	tickets   TicketStore
	events    EventStore
	publisher Publisher
	clock     clock.Clock
}

func NewTicketService(tickets TicketStore, events EventStore, publisher Publisher, clk clock.Clock) *TicketService {
	return &TicketService{
		tickets:   tickets,
		events:    events,
		publisher: publisher,
		clock:     clk,
	}
}

// Create issues an unused ticket for an upcoming event.
// Checks run in order: event exists, event has not happened, code is free.
func (s *TicketService) Create(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	event, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		metrics.TicketRejections.WithLabelValues("create", "event_not_found").Inc()
		return nil, apperrors.ErrEventNotFound
	}
	if event.HasHappened(s.clock.Now()) {
		metrics.TicketRejections.WithLabelValues("create", "already_happened").Inc()
		return nil, apperrors.ErrEventAlreadyHappened
	}

	ticket := &models.Ticket{
		Owner:   in.Owner,
		Code:    in.Code,
		EventID: in.EventID,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateCode):
			metrics.TicketRejections.WithLabelValues("create", "duplicate_code").Inc()
		case errors.Is(err, apperrors.ErrEventNotFound):
			metrics.TicketRejections.WithLabelValues("create", "event_not_found").Inc()
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	metrics.TicketsIssued.Inc()
	publish(ctx, s.publisher, models.SubjectTicketCreated, s.message(ticket))

	return ticket, nil
}

// ListByEvent returns the event's tickets. An unknown event yields an empty list.
func (s *TicketService) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	tickets, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

// Use marks the ticket as used. A past event is reported before a used ticket.
func (s *TicketService) Use(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, apperrors.ErrTicketNotFound
	}

	event, err := s.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		// the event was deleted together with its tickets in the meantime
		return nil, apperrors.ErrTicketNotFound
	}
	if event.HasHappened(s.clock.Now()) {
		metrics.TicketRejections.WithLabelValues("use", "already_happened").Inc()
		return nil, apperrors.ErrEventAlreadyHappened
	}
	if ticket.Used {
		metrics.TicketRejections.WithLabelValues("use", "already_used").Inc()
		return nil, apperrors.ErrAlreadyUsed
	}

	used, err := s.tickets.MarkUsed(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyUsed) {
			metrics.TicketRejections.WithLabelValues("use", "already_used").Inc()
		}
		return nil, fmt.Errorf("failed to use ticket: %w", err)
	}

	metrics.TicketsUsed.Inc()
	publish(ctx, s.publisher, models.SubjectTicketUsed, s.message(used))

	return used, nil
}

func (s *TicketService) message(ticket *models.Ticket) models.TicketMessage {
	return models.TicketMessage{
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		Code:      ticket.Code,
		Used:      ticket.Used,
		Timestamp: s.clock.Now(),
	}
}
