package cache

import (
	"context"
	"testing"
	"time"

	"mytickets/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKey(t *testing.T) {
	assert.Equal(t, "events:id:42", eventKey(42))
}

func TestValkeyClient_UnreachableIsNotAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewValkeyClientFrom(rdb, time.Minute)
	defer c.Close()

	ctx := context.Background()

	_, err := c.GetEvent(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	_, err = c.Version(ctx)
	assert.Error(t, err)

	err = c.SetEvent(ctx, &models.Event{ID: 1, Name: "x"}, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleVersion)

	err = c.InvalidateEvent(ctx, 1)
	assert.Error(t, err)
}

func TestNewValkeyClient_PingFailure(t *testing.T) {
	_, err := NewValkeyClient(context.Background(), Config{Addr: "127.0.0.1:1", TTL: time.Minute})
	assert.Error(t, err)
}
