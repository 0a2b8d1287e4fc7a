package repository

import (
	"context"
	"database/sql"
	"errors"

	"mytickets/internal/database"
	apperrors "mytickets/internal/errors"
	"mytickets/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, owner, code, event_id, used, created_at, updated_at`

func scanTicket(row rowScanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.Owner,
		&ticket.Code,
		&ticket.EventID,
		&ticket.Used,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Create inserts an unused ticket. The (event_id, code) constraint makes the
// duplicate check and the insert one atomic step.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (owner, code, event_id)
		VALUES ($1, $2, $3)
		RETURNING id, used, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, ticket.Owner, ticket.Code, ticket.EventID).
		Scan(&ticket.ID, &ticket.Used, &ticket.CreatedAt, &ticket.UpdatedAt)

	return mapError(err)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ticket, err
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

// MarkUsed flips used to true only if it is still false, so two concurrent
// calls cannot both succeed. Returns ErrTicketNotFound or ErrAlreadyUsed.
func (r *TicketRepository) MarkUsed(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET used = TRUE, updated_at = NOW()
		WHERE id = $1 AND used = FALSE
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Nothing updated: either the ticket is gone or someone used it first
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrTicketNotFound
	}
	return nil, apperrors.ErrAlreadyUsed
}
