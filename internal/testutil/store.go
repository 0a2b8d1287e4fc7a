// Package testutil provides in-memory stand-ins for the Postgres gateway and
// the side integrations. They honour the same uniqueness, cascade and
// conditional-update contracts as the repositories.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "mytickets/internal/errors"
	"mytickets/internal/models"
)

type Store struct {
	mu      sync.Mutex
	seq     map[string]int64
	events  map[int64]models.Event
	tickets map[int64]models.Ticket
	users   map[int64]models.User

	Events  *Events
	Tickets *Tickets
	Users   *Users
}

func NewStore() *Store {
	s := &Store{
		seq:     map[string]int64{},
		events:  map[int64]models.Event{},
		tickets: map[int64]models.Ticket{},
		users:   map[int64]models.User{},
	}
	s.Events = &Events{s: s}
	s.Tickets = &Tickets{s: s}
	s.Users = &Users{s: s}
	return s
}

// id mimics a per-table BIGSERIAL
func (s *Store) id(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

type Events struct{ s *Store }

func (e *Events) Create(_ context.Context, event *models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	for _, existing := range e.s.events {
		if existing.Name == event.Name {
			return apperrors.ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	event.ID = e.s.id("events")
	event.CreatedAt, event.UpdatedAt = now, now
	e.s.events[event.ID] = *event
	return nil
}

func (e *Events) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	event, ok := e.s.events[id]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

func (e *Events) List(_ context.Context) ([]models.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	events := make([]models.Event, 0, len(e.s.events))
	for _, event := range e.s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (e *Events) ListByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	events := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		if event, ok := e.s.events[id]; ok {
			events = append(events, event)
		}
	}
	return events, nil
}

func (e *Events) Update(_ context.Context, event *models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	current, ok := e.s.events[event.ID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	for id, existing := range e.s.events {
		if id != event.ID && existing.Name == event.Name {
			return apperrors.ErrDuplicateName
		}
	}
	event.CreatedAt = current.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	e.s.events[event.ID] = *event
	return nil
}

// Delete removes the event and its tickets
func (e *Events) Delete(_ context.Context, id int64) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if _, ok := e.s.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(e.s.events, id)
	for ticketID, ticket := range e.s.tickets {
		if ticket.EventID == id {
			delete(e.s.tickets, ticketID)
		}
	}
	return nil
}

type Tickets struct{ s *Store }

func (t *Tickets) Create(_ context.Context, ticket *models.Ticket) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.events[ticket.EventID]; !ok {
		return apperrors.ErrEventNotFound
	}
	for _, existing := range t.s.tickets {
		if existing.EventID == ticket.EventID && existing.Code == ticket.Code {
			return apperrors.ErrDuplicateCode
		}
	}
	now := time.Now().UTC()
	ticket.ID = t.s.id("tickets")
	ticket.Used = false
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	t.s.tickets[ticket.ID] = *ticket
	return nil
}

func (t *Tickets) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	ticket, ok := t.s.tickets[id]
	if !ok {
		return nil, nil
	}
	return &ticket, nil
}

func (t *Tickets) ListByEvent(_ context.Context, eventID int64) ([]models.Ticket, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	tickets := []models.Ticket{}
	for _, ticket := range t.s.tickets {
		if ticket.EventID == eventID {
			tickets = append(tickets, ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (t *Tickets) MarkUsed(_ context.Context, id int64) (*models.Ticket, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	ticket, ok := t.s.tickets[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	if ticket.Used {
		return nil, apperrors.ErrAlreadyUsed
	}
	ticket.Used = true
	ticket.UpdatedAt = time.Now().UTC()
	t.s.tickets[id] = ticket
	return &ticket, nil
}

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	user.ID = u.s.id("users")
	user.CreatedAt = time.Now().UTC()
	u.s.users[user.ID] = *user
	return nil
}

// User returns the stored user, including the password hash
func (s *Store) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return user, ok
}
