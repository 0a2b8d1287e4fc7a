package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mytickets/internal/cache"
	apperrors "mytickets/internal/errors"
	"mytickets/internal/models"
	"mytickets/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_Create(t *testing.T) {
	f := newFixture(t)

	event, err := f.services.Events.Create(ctx(), models.EventInput{Name: "Concert A", Date: testNow.Add(48 * time.Hour)})
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.Equal(t, "Concert A", event.Name)

	require.Len(t, f.publisher.Messages(), 1)
	msg := f.publisher.Messages()[0]
	assert.Equal(t, models.SubjectEventCreated, msg.Subject)
	assert.Equal(t, event.ID, msg.Data.(models.EventChangedMessage).EventID)
	assert.Equal(t, testNow, msg.Data.(models.EventChangedMessage).Timestamp)
}

func TestEventService_CreateAllowsPastDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Events.Create(ctx(), models.EventInput{Name: "Old Show", Date: testNow.Add(-24 * time.Hour)})
	assert.NoError(t, err)
}

func TestEventService_CreateDuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Events.Create(ctx(), models.EventInput{Name: "Concert A", Date: testNow.Add(time.Hour)})
	require.NoError(t, err)

	// a different date does not matter
	_, err = f.services.Events.Create(ctx(), models.EventInput{Name: "Concert A", Date: testNow.Add(-time.Hour)})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
	assert.Len(t, f.publisher.Messages(), 1)
}

func TestEventService_NameIsCaseSensitive(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Events.Create(ctx(), models.EventInput{Name: "Concert A", Date: testNow})
	require.NoError(t, err)
	_, err = f.services.Events.Create(ctx(), models.EventInput{Name: "concert a", Date: testNow})
	assert.NoError(t, err)
}

func TestEventService_Get(t *testing.T) {
	f := newFixture(t)

	created, err := f.services.Events.Create(ctx(), models.EventInput{Name: "Concert A", Date: testNow})
	require.NoError(t, err)

	got, err := f.services.Events.Get(ctx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = f.services.Events.Get(ctx(), 999)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventService_ListInIDOrder(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"B", "A", "C"} {
		_, err := f.services.Events.Create(ctx(), models.EventInput{Name: name, Date: testNow})
		require.NoError(t, err)
	}

	events, err := f.services.Events.List(ctx(), "")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"B", "A", "C"}, names(events))
}

func TestEventService_ListEmpty(t *testing.T) {
	f := newFixture(t)

	events, err := f.services.Events.List(ctx(), "")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEventService_ListQueryWithoutSearch(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"Rock Night", "Jazz Evening", "rockabilly"} {
		_, err := f.services.Events.Create(ctx(), models.EventInput{Name: name, Date: testNow})
		require.NoError(t, err)
	}

	events, err := f.services.Events.List(ctx(), "  ROCK ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rock Night", "rockabilly"}, names(events))
}

func TestEventService_ListQueryUsesSearch(t *testing.T) {
	f := newFixture(t, withSearch())

	for _, name := range []string{"Rock Night", "Jazz Evening", "Rock Morning"} {
		event, err := f.services.Events.Create(ctx(), models.EventInput{Name: name, Date: testNow})
		require.NoError(t, err)
		f.search.Index(*event)
	}

	events, err := f.services.Events.List(ctx(), "rock")
	require.NoError(t, err)
	// search ranking order is kept
	assert.Equal(t, []string{"Rock Morning", "Rock Night"}, names(events))
}

func TestEventService_ListQueryFallsBackWhenSearchFails(t *testing.T) {
	f := newFixture(t, withSearch())
	f.search.Err = testutil.ErrSearchUnavailable

	for _, name := range []string{"Rock Night", "Jazz Evening"} {
		_, err := f.services.Events.Create(ctx(), models.EventInput{Name: name, Date: testNow})
		require.NoError(t, err)
	}

	events, err := f.services.Events.List(ctx(), "jazz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz Evening"}, names(events))
}

func TestEventService_Update(t *testing.T) {
	f := newFixture(t)

	a, err := f.services.Events.Create(ctx(), models.EventInput{Name: "A", Date: testNow})
	require.NoError(t, err)
	_, err = f.services.Events.Create(ctx(), models.EventInput{Name: "B", Date: testNow})
	require.NoError(t, err)

	newDate := testNow.Add(72 * time.Hour)

	t.Run("self rename is allowed", func(t *testing.T) {
		updated, err := f.services.Events.Update(ctx(), a.ID, models.EventInput{Name: "A", Date: newDate})
		require.NoError(t, err)
		assert.Equal(t, newDate, updated.Date)
	})

	t.Run("name of another event", func(t *testing.T) {
		_, err := f.services.Events.Update(ctx(), a.ID, models.EventInput{Name: "B", Date: newDate})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := f.services.Events.Update(ctx(), 999, models.EventInput{Name: "B", Date: newDate})
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	got, err := f.services.Events.Get(ctx(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Contains(t, f.publisher.Subjects(), models.SubjectEventUpdated)
}

func TestEventService_DeleteCascades(t *testing.T) {
	f := newFixture(t)

	event, err := f.services.Events.Create(ctx(), models.EventInput{Name: "A", Date: testNow.Add(time.Hour)})
	require.NoError(t, err)
	ticket, err := f.services.Tickets.Create(ctx(), models.TicketInput{Owner: "Alice", Code: "X1", EventID: event.ID})
	require.NoError(t, err)

	require.NoError(t, f.services.Events.Delete(ctx(), event.ID))

	_, err = f.services.Events.Get(ctx(), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	tickets, err := f.services.Tickets.ListByEvent(ctx(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)

	_, err = f.services.Tickets.Use(ctx(), ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	err = f.services.Events.Delete(ctx(), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	assert.Contains(t, f.publisher.Subjects(), models.SubjectEventDeleted)
}

func TestEventService_CacheReadThroughAndInvalidation(t *testing.T) {
	f := newFixture(t, withCache())

	event, err := f.services.Events.Create(ctx(), models.EventInput{Name: "A", Date: testNow})
	require.NoError(t, err)

	_, err = f.services.Events.List(ctx(), "")
	require.NoError(t, err)
	cached, err := f.cache.GetEventList(ctx())
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = f.services.Events.Get(ctx(), event.ID)
	require.NoError(t, err)
	_, err = f.cache.GetEvent(ctx(), event.ID)
	require.NoError(t, err)

	_, err = f.services.Events.Update(ctx(), event.ID, models.EventInput{Name: "A2", Date: testNow})
	require.NoError(t, err)

	_, err = f.cache.GetEvent(ctx(), event.ID)
	assert.Error(t, err)
	_, err = f.cache.GetEventList(ctx())
	assert.Error(t, err)

	got, err := f.services.Events.Get(ctx(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)
}

// racingEvents invalidates the cache while a read is in flight, the way a
// concurrent update would.
type racingEvents struct {
	*testutil.Events
	cache *testutil.Cache
}

func (r racingEvents) GetByID(c context.Context, id int64) (*models.Event, error) {
	event, err := r.Events.GetByID(c, id)
	_ = r.cache.InvalidateEvent(c, id)
	return event, err
}

func (r racingEvents) List(c context.Context) ([]models.Event, error) {
	events, err := r.Events.List(c)
	_ = r.cache.InvalidateEvent(c, 0)
	return events, err
}

func TestEventService_StaleReadIsNotCached(t *testing.T) {
	f := newFixture(t, withCache(), func(d *Dependencies, f *fixture) {
		d.Events = racingEvents{Events: f.store.Events, cache: f.cache}
	})

	event, err := f.services.Events.Create(ctx(), models.EventInput{Name: "A", Date: testNow})
	require.NoError(t, err)

	got, err := f.services.Events.Get(ctx(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	_, err = f.cache.GetEvent(ctx(), event.ID)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	list, err := f.services.Events.List(ctx(), "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.cache.GetEventList(ctx())
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestEventService_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = errors.New("nats down")

	_, err := f.services.Events.Create(ctx(), models.EventInput{Name: "A", Date: testNow})
	assert.NoError(t, err)
}

func names(events []models.Event) []string {
	result := make([]string, len(events))
	for i, e := range events {
		result[i] = e.Name
	}
	return result
}
