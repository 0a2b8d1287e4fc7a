package models

import "time"

// NATS Event Types
const (
	SubjectEventCreated  = "event.created"
	SubjectEventUpdated  = "event.updated"
	SubjectEventDeleted  = "event.deleted"
	SubjectTicketCreated = "ticket.created"
	SubjectTicketUsed    = "ticket.used"
	SubjectUserCreated   = "user.created"
)

// EventChangedMessage is published when an event is created or updated
type EventChangedMessage struct {
	EventID   int64     `json:"event_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// EventDeletedMessage is published after an event and its tickets are removed
type EventDeletedMessage struct {
	EventID   int64     `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketMessage is published when a ticket is issued or used
type TicketMessage struct {
	TicketID  int64     `json:"ticket_id"`
	EventID   int64     `json:"event_id"`
	Code      string    `json:"code"`
	Used      bool      `json:"used"`
	Timestamp time.Time `json:"timestamp"`
}

// UserCreatedMessage is published when a user registers
type UserCreatedMessage struct {
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
