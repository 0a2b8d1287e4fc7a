package database

import (
	"context"
	"fmt"
	"log/slog"
)

// Constraint names are matched by the repositories to map unique violations
// to domain errors.
const (
	EventsNameKey       = "events_name_key"
	TicketsEventCodeKey = "tickets_event_id_code_key"
	UsersEmailKey       = "users_email_key"
)

func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createTicketsTable,
		createUsersTable,
		createEventsDateIndex,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT ` + EventsNameKey + ` UNIQUE (name)
);`

// Tickets go away with their event.
const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    owner VARCHAR(255) NOT NULL,
    code VARCHAR(255) NOT NULL,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT ` + TicketsEventCodeKey + ` UNIQUE (event_id, code)
);`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    password_hash VARCHAR(72) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT ` + UsersEmailKey + ` UNIQUE (email)
);`

const createEventsDateIndex = `
CREATE INDEX IF NOT EXISTS events_date_idx ON events (date);`
