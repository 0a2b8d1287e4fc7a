package repository

import (
	"errors"
	"fmt"
	"testing"

	"mytickets/internal/database"
	apperrors "mytickets/internal/errors"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain error", other, other},
		{"duplicate event name", &pq.Error{Code: pqUniqueViolation, Constraint: database.EventsNameKey}, apperrors.ErrDuplicateName},
		{"duplicate ticket code", &pq.Error{Code: pqUniqueViolation, Constraint: database.TicketsEventCodeKey}, apperrors.ErrDuplicateCode},
		{"duplicate email", &pq.Error{Code: pqUniqueViolation, Constraint: database.UsersEmailKey}, apperrors.ErrDuplicateEmail},
		{"wrapped duplicate", fmt.Errorf("insert: %w", &pq.Error{Code: pqUniqueViolation, Constraint: database.UsersEmailKey}), apperrors.ErrDuplicateEmail},
		{"missing event", &pq.Error{Code: pqForeignKeyViolation, Constraint: "tickets_event_id_fkey"}, apperrors.ErrEventNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapError_UnknownConstraintPassesThrough(t *testing.T) {
	pqErr := &pq.Error{Code: pqUniqueViolation, Constraint: "some_other_key"}
	got := mapError(pqErr)
	assert.Same(t, pqErr, got)
	assert.False(t, errors.Is(got, apperrors.ErrDuplicateName))
}
