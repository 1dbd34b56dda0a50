package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/webhook-ledger/app/models"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ledger"
)

const eventKeyPrefix = "webhook:event:"

var client *redis.Client

// Options selects the redis server backing the event cache.
type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SetupCache connects the shared client. A failed ping is logged and the
// client is kept, so the cache starts working once redis comes up.
func SetupCache(ctx context.Context, opts Options) *redis.Client {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnw("[Cache] could not connect to redis", "addr", client.Options().Addr, "error", err)
	} else {
		log.Infow("[Cache] connected to redis", "addr", client.Options().Addr, "reply", pong)
	}
	return client
}

// GetClient returns the shared client, or nil when SetupCache was never called.
func GetClient() *redis.Client {
	return client
}

// Close releases the shared client.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// EventCache stores serialized webhook events in redis with a fixed TTL.
type EventCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

var _ ledger.EventCache = (*EventCache)(nil)

// NewEventCache wraps rdb. A zero ttl keeps entries until redis evicts them.
func NewEventCache(rdb redis.UniversalClient, ttl time.Duration) *EventCache {
	return &EventCache{rdb: rdb, ttl: ttl}
}

func eventKey(externalEventID string) string {
	return eventKeyPrefix + externalEventID
}

// GetEvent returns ledger.ErrCacheMiss when the key is absent.
func (c *EventCache) GetEvent(ctx context.Context, externalEventID string) (*models.WebhookEvent, error) {
	raw, err := c.rdb.Get(ctx, eventKey(externalEventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ledger.ErrCacheMiss
		}
		return nil, err
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode cached event %s: %w", externalEventID, err)
	}
	return &event, nil
}

func (c *EventCache) SetEvent(ctx context.Context, event *models.WebhookEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, eventKey(event.ExternalEventID), raw, c.ttl).Err()
}
