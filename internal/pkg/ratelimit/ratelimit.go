package ratelimit

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
)

// limiterDatabase keeps limiter counters apart from cached events in DB 0.
const limiterDatabase = 1

// NewStorage builds limiter storage on the same redis server as client.
// gofiber's redis storage panics when it cannot connect, so the server is
// pinged first and a nil storage (in-memory limiter) is returned on failure.
func NewStorage(ctx context.Context, client *goredis.Client) (fiber.Storage, error) {
	if client == nil {
		return nil, nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	host := "localhost"
	port := 6379
	opts := client.Options()
	if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: limiterDatabase,
		Reset:    false,
	}), nil
}

// New limits each client IP to max requests per minute. max <= 0 disables
// limiting.
func New(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
	})
}
