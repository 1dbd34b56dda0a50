package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/webhook-ledger/internal/pkg/env"
)

const (
	defaultAppPort          = "3000"
	defaultWebhookTolerance = 5 * time.Minute
	defaultStoreTimeout     = 5 * time.Second
	defaultEventCacheTTL    = 10 * time.Minute
)

// Config is the process configuration read from the environment at startup.
type Config struct {
	AppHost string `validate:"omitempty,hostname|ip"`
	AppPort string `validate:"required,numeric"`

	DatabaseURL     string `validate:"required"`
	DBMaxOpenConns  int    `validate:"gte=1"`
	DBMaxIdleConns  int    `validate:"gte=0"`
	DBConnectTries  int    `validate:"gte=1"`
	DBConnectDelay  time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	WebhookTolerance    time.Duration `validate:"gte=0"`
	StoreTimeout        time.Duration `validate:"gt=0"`

	CacheHost     string
	CachePort     string `validate:"omitempty,numeric"`
	CachePassword string
	EventCacheTTL time.Duration `validate:"gte=0"`

	EventsAPIKey    string
	EventsRateLimit int `validate:"gte=0"`

	CheckoutSuccessURL string `validate:"omitempty,url"`
	CheckoutCancelURL  string `validate:"omitempty,url"`

	MonitorUser     string
	MonitorPassword string
}

// Load reads the environment. It does not touch .env files; call
// env.SetupEnvFile first when those should be honored.
func Load() (*Config, error) {
	port := env.GetEnv("APP_PORT", "")
	if port == "" {
		port = env.GetEnv("PORT", defaultAppPort)
	}

	cfg := &Config{
		AppHost:         strings.TrimSpace(env.GetEnv("APP_HOST", "0.0.0.0")),
		AppPort:         strings.TrimSpace(port),
		DatabaseURL:     strings.TrimSpace(env.GetEnv("DATABASE_URL", "")),
		DBMaxOpenConns:  env.GetEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:  env.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnectTries:  env.GetEnvInt("DB_CONNECT_RETRIES", 5),
		DBConnectDelay:  env.GetEnvDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second),

		StripeSecretKey:     strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		StripeWebhookSecret: strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		WebhookTolerance:    env.GetEnvDuration("STRIPE_WEBHOOK_TOLERANCE", defaultWebhookTolerance),
		StoreTimeout:        env.GetEnvDuration("WEBHOOK_STORE_TIMEOUT", defaultStoreTimeout),

		CacheHost:     strings.TrimSpace(env.GetEnv("CACHE_HOST", "")),
		CachePort:     strings.TrimSpace(env.GetEnv("CACHE_PORT", "6379")),
		CachePassword: env.GetEnv("CACHE_PASSWORD", ""),
		EventCacheTTL: env.GetEnvDuration("EVENT_CACHE_TTL", defaultEventCacheTTL),

		EventsAPIKey:    strings.TrimSpace(env.GetEnv("EVENTS_API_KEY", "")),
		EventsRateLimit: env.GetEnvInt("EVENTS_RATE_LIMIT", 120),

		CheckoutSuccessURL: strings.TrimSpace(env.GetEnv("CHECKOUT_SUCCESS_URL", "")),
		CheckoutCancelURL:  strings.TrimSpace(env.GetEnv("CHECKOUT_CANCEL_URL", "")),

		MonitorUser:     env.GetEnv("MONITOR_USER", ""),
		MonitorPassword: env.GetEnv("MONITOR_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ListenAddr is the host:port fiber listens on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// CacheEnabled reports whether a redis host was configured.
func (c *Config) CacheEnabled() bool {
	return c.CacheHost != ""
}

// MonitorEnabled reports whether the fiber monitor should be mounted.
func (c *Config) MonitorEnabled() bool {
	return c.MonitorUser != "" && c.MonitorPassword != ""
}

// Warnings lists settings that keep the server running in a degraded mode.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.StripeWebhookSecret == "" {
		warnings = append(warnings, "STRIPE_WEBHOOK_SECRET is not set: webhook deliveries will be rejected until it is configured")
	}
	if c.StripeSecretKey == "" {
		warnings = append(warnings, "STRIPE_SECRET_KEY is not set: checkout sessions are disabled")
	}
	if c.EventsAPIKey == "" {
		warnings = append(warnings, "EVENTS_API_KEY is not set: event read endpoints are unauthenticated")
	}
	return warnings
}
