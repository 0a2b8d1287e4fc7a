package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mytickets/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the key is not cached
var ErrCacheMiss = errors.New("cache miss")

// ErrStaleVersion is returned by the Set methods when an invalidation happened
// after the caller read the version. Nothing is stored then.
var ErrStaleVersion = errors.New("cache version changed")

const (
	eventKeyPrefix = "events:id:"
	eventListKey   = "events:list"
	versionKey     = "events:version"
)

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ValkeyClient caches events in Valkey (Redis protocol) as JSON
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValkeyClient(ctx context.Context, cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewValkeyClientFrom(rdb, cfg.TTL), nil
}

// NewValkeyClientFrom wraps an existing go-redis client
func NewValkeyClientFrom(rdb *redis.Client, ttl time.Duration) *ValkeyClient {
	return &ValkeyClient{client: rdb, ttl: ttl}
}

func eventKey(id int64) string {
	return eventKeyPrefix + strconv.FormatInt(id, 10)
}

func (v *ValkeyClient) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	if err := v.get(ctx, eventKey(id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Version returns the invalidation counter. Read it before loading the value
// that is going to be cached.
func (v *ValkeyClient) Version(ctx context.Context) (int64, error) {
	version, err := v.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("cache version error: %w", err)
	}
	return version, nil
}

// SetEvent stores the event unless the version moved since it was read
func (v *ValkeyClient) SetEvent(ctx context.Context, event *models.Event, version int64) error {
	return v.set(ctx, eventKey(event.ID), event, version)
}

func (v *ValkeyClient) GetEventList(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := v.get(ctx, eventListKey, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

func (v *ValkeyClient) SetEventList(ctx context.Context, events []models.Event, version int64) error {
	return v.set(ctx, eventListKey, events, version)
}

// InvalidateEvent drops the event entry and the list and bumps the version
func (v *ValkeyClient) InvalidateEvent(ctx context.Context, id int64) error {
	_, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, eventKey(id), eventListKey)
		pipe.Incr(ctx, versionKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) get(ctx context.Context, key string, dst any) error {
	payload, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache lookup error: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("invalid cache entry %s: %w", key, err)
	}
	return nil
}

// set writes under WATCH on the version key, so an invalidation racing with
// the write aborts it
func (v *ValkeyClient) set(ctx context.Context, key string, value any, version int64) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	err = v.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStaleVersion
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, v.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleVersion), errors.Is(err, redis.TxFailedErr):
		return ErrStaleVersion
	default:
		return fmt.Errorf("cache store error: %w", err)
	}
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
