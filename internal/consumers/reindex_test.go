package consumers

import (
	"context"
	"errors"
	"testing"
	"time"

	"mytickets/internal/models"
	"mytickets/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBulk struct {
	resets  int
	indexed []int64
	err     error
}

func (f *fakeBulk) ResetIndex(context.Context) error {
	f.resets++
	return nil
}

func (f *fakeBulk) BulkIndex(_ context.Context, events []models.Event) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, e := range events {
		f.indexed = append(f.indexed, e.ID)
	}
	return uint64(len(events)), nil
}

func TestReindexer_Run(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, store.Events.Create(ctx, &models.Event{Name: name, Date: time.Now()}))
	}

	bulk := &fakeBulk{}
	n, err := NewReindexer(store.Events, bulk).Run(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), n)
	assert.Equal(t, 1, bulk.resets)
	assert.Equal(t, []int64{1, 2, 3}, bulk.indexed)
}

func TestReindexer_NoReset(t *testing.T) {
	bulk := &fakeBulk{}
	_, err := NewReindexer(testutil.NewStore().Events, bulk).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, bulk.resets)
}

func TestReindexer_BulkFailure(t *testing.T) {
	bulk := &fakeBulk{err: errors.New("bulk failed")}
	_, err := NewReindexer(testutil.NewStore().Events, bulk).Run(context.Background(), false)
	assert.Error(t, err)
}
