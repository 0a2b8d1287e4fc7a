package service

import (
	"sync"
	"testing"
	"time"

	apperrors "mytickets/internal/errors"
	"mytickets/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEvent(t *testing.T, f *fixture, name string, date time.Time) *models.Event {
	t.Helper()
	event, err := f.services.Events.Create(ctx(), models.EventInput{Name: name, Date: date})
	require.NoError(t, err)
	return event
}

func TestTicketService_Create(t *testing.T) {
	f := newFixture(t)
	event := createEvent(t, f, "Concert A", testNow.Add(24*time.Hour))

	ticket, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "AB12CD34", EventID: event.ID})
	require.NoError(t, err)
	assert.NotZero(t, ticket.ID)
	assert.False(t, ticket.Used)
	assert.Equal(t, event.ID, ticket.EventID)
	assert.Equal(t, models.SubjectTicketCreated, f.publisher.Subjects()[1])
}

func TestTicketService_CreateRules(t *testing.T) {
	f := newFixture(t)
	upcoming := createEvent(t, f, "Upcoming", testNow.Add(time.Minute))
	past := createEvent(t, f, "Old Show", testNow.Add(-24*time.Hour))
	now := createEvent(t, f, "Right Now", testNow)

	_, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "TAKEN", EventID: upcoming.ID})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   models.TicketInput
		want error
	}{
		{"unknown event", models.TicketInput{Owner: "Bob", Code: "C1", EventID: 999}, apperrors.ErrEventNotFound},
		{"past event", models.TicketInput{Owner: "Bob", Code: "C1", EventID: past.ID}, apperrors.ErrEventAlreadyHappened},
		{"event happening now", models.TicketInput{Owner: "Bob", Code: "C1", EventID: now.ID}, apperrors.ErrEventAlreadyHappened},
		{"duplicate code", models.TicketInput{Owner: "Bob", Code: "TAKEN", EventID: upcoming.ID}, apperrors.ErrDuplicateCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Tickets.Create(ctx(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTicketService_CodeIsScopedToEvent(t *testing.T) {
	f := newFixture(t)
	a := createEvent(t, f, "A", testNow.Add(time.Hour))
	b := createEvent(t, f, "B", testNow.Add(time.Hour))

	_, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "SAME", EventID: a.ID})
	require.NoError(t, err)
	_, err = f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Bob", Code: "SAME", EventID: b.ID})
	assert.NoError(t, err)
}

func TestTicketService_ListByEvent(t *testing.T) {
	f := newFixture(t)
	event := createEvent(t, f, "A", testNow.Add(time.Hour))

	for _, code := range []string{"C1", "C2"} {
		_, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: code, EventID: event.ID})
		require.NoError(t, err)
	}

	tickets, err := f.services.Tickets.ListByEvent(ctx(), event.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "C1", tickets[0].Code)

	tickets, err = f.services.Tickets.ListByEvent(ctx(), 999999)
	require.NoError(t, err)
	assert.NotNil(t, tickets)
	assert.Empty(t, tickets)
}

func TestTicketService_UseOnce(t *testing.T) {
	f := newFixture(t)
	event := createEvent(t, f, "Concert A", testNow.Add(time.Hour))
	ticket, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "AB12CD34", EventID: event.ID})
	require.NoError(t, err)

	used, err := f.services.Tickets.Use(ctx(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, used.Used)

	_, err = f.services.Tickets.Use(ctx(), ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyUsed)

	assert.Equal(t, []string{
		models.SubjectEventCreated,
		models.SubjectTicketCreated,
		models.SubjectTicketUsed,
	}, f.publisher.Subjects())
}

func TestTicketService_UseUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Tickets.Use(ctx(), 42)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketService_HappenedTakesPrecedenceOverUsed(t *testing.T) {
	f := newFixture(t)
	event := createEvent(t, f, "Soon", testNow.Add(time.Hour))
	ticket, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "X", EventID: event.ID})
	require.NoError(t, err)
	_, err = f.services.Tickets.Use(ctx(), ticket.ID)
	require.NoError(t, err)

	// move the event into the past
	_, err = f.services.Events.Update(ctx(), event.ID, models.EventInput{Name: "Soon", Date: testNow.Add(-time.Hour)})
	require.NoError(t, err)

	_, err = f.services.Tickets.Use(ctx(), ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventAlreadyHappened)
}

func TestTicketService_ConcurrentUseSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	event := createEvent(t, f, "A", testNow.Add(time.Hour))
	ticket, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "X", EventID: event.ID})
	require.NoError(t, err)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.services.Tickets.Use(ctx(), ticket.ID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, apperrors.ErrAlreadyUsed)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}
