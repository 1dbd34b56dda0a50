package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/webhook-ledger/app/controllers"
	"github.com/ManuelReschke/webhook-ledger/app/repository"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/cache"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/config"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/constants"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/database"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/env"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ledger"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/metrics"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/payments"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/ratelimit"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/router"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/storage"
	"github.com/ManuelReschke/webhook-ledger/internal/pkg/webhook"
)

const openAPIFile = "docs/openapi.yml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cfg, monitor, err := NewApplication(ctx)
	if err != nil {
		log.Fatalw("startup failed", "error", err)
	}
	monitor.Start(ctx)

	go func() {
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			log.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
	monitor.Stop()
	if err := database.Close(); err != nil {
		log.Errorw("closing database failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		log.Errorw("closing cache failed", "error", err)
	}
}

// NewApplication wires configuration, storage and routes into a fiber app.
// The returned health monitor is not started.
func NewApplication(ctx context.Context) (*fiber.App, *config.Config, *storage.HealthMonitor, error) {
	if !env.SetupEnvFile() {
		log.Info("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	db, err := database.SetupDatabase(ctx, database.Options{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		MaxRetries:   cfg.DBConnectTries,
		RetryDelay:   cfg.DBConnectDelay,
		LogLevel:     dbLogLevel(),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	dispatcher := ledger.NewDispatcher()
	ledger.RegisterDefaultHandlers(dispatcher)
	opts := []ledger.Option{ledger.WithDispatcher(dispatcher)}

	var limiterStorage fiber.Storage
	if cfg.CacheEnabled() {
		rdb := cache.SetupCache(ctx, cache.Options{
			Host:     cfg.CacheHost,
			Port:     cfg.CachePort,
			Password: cfg.CachePassword,
		})
		opts = append(opts, ledger.WithCache(cache.NewEventCache(rdb, cfg.EventCacheTTL)))

		limiterStorage, err = ratelimit.NewStorage(ctx, rdb)
		if err != nil {
			log.Warnw("rate limiter falls back to in-memory storage", "error", err)
		}
	}

	svc := ledger.NewService(repository.NewFactory(db).GetEventRepository(), opts...)
	webhookMetrics := metrics.NewWebhookMetrics()
	if sqlDB, err := db.DB(); err == nil {
		if err := webhookMetrics.RegisterDBStats(sqlDB, db.Dialector.Name()); err != nil {
			log.Warnw("database pool metrics unavailable", "error", err)
		}
	}
	monitor := storage.NewHealthMonitor(svc, 30*time.Second, webhookMetrics.SetDatabaseUp)
	checkout := payments.NewCheckout(payments.CheckoutOptions{
		SecretKey:  cfg.StripeSecretKey,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	})

	app := fiber.New(fiber.Config{
		AppName:      "webhook-ledger",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: controllers.ErrorHandler,
		BodyLimit:    1 << 20,
	})

	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}),
	)

	if _, err := os.Stat(openAPIFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: constants.DocsBasePath,
			FilePath: openAPIFile,
			Path:     constants.DocsPath,
			Title:    "webhook-ledger API",
		}))
	}

	router.InstallRouter(app, router.Dependencies{
		Config: cfg,
		Webhooks: controllers.NewWebhookController(
			webhook.NewStripeVerifier(cfg.StripeWebhookSecret, cfg.WebhookTolerance),
			svc,
			webhookMetrics,
			cfg.StoreTimeout,
		),
		Events:         controllers.NewEventController(svc),
		Health:         controllers.NewHealthController(svc),
		Checkout:       controllers.NewCheckoutController(checkout),
		Metrics:        webhookMetrics.Handler(),
		LimiterStorage: limiterStorage,
	})

	return app, cfg, monitor, nil
}

// dbLogLevel turns on SQL statement logging with APP_ENV=dev.
func dbLogLevel() logger.LogLevel {
	if env.IsDev() {
		return logger.Info
	}
	return logger.Warn
}
