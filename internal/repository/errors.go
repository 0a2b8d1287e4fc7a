package repository

import (
	"errors"

	"mytickets/internal/database"
	apperrors "mytickets/internal/errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// constraintErrors maps named unique constraints to domain errors
var constraintErrors = map[string]error{
	database.EventsNameKey:       apperrors.ErrDuplicateName,
	database.TicketsEventCodeKey: apperrors.ErrDuplicateCode,
	database.UsersEmailKey:       apperrors.ErrDuplicateEmail,
}

// mapError translates driver errors into domain errors. Unknown errors are
// returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		if domainErr, ok := constraintErrors[pqErr.Constraint]; ok {
			return domainErr
		}
	case pqForeignKeyViolation:
		// Only tickets reference another table
		return apperrors.ErrEventNotFound
	}
	return err
}
