package models

import (
	"time"
)

// Event represents a scheduled occurrence that tickets are issued for
type Event struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// HasHappened reports whether the event date is not strictly after now.
func (e *Event) HasHappened(now time.Time) bool {
	return !e.Date.After(now)
}

// Ticket represents an admission record for a single event
type Ticket struct {
	ID        int64     `json:"id" db:"id"`
	Owner     string    `json:"owner" db:"owner"`
	Code      string    `json:"code" db:"code"`
	EventID   int64     `json:"eventId" db:"event_id"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// User represents a registered user. The password hash never leaves the service.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}
