package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WebhookMetrics struct {
	Deliveries    *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	DatabaseUp    prometheus.Gauge

	registry *prometheus.Registry
}

// NewWebhookMetrics registers the collectors on a private registry so tests
// can build as many instances as they like.
func NewWebhookMetrics() *WebhookMetrics {
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook deliveries by terminal outcome.",
	}, []string{"outcome"})
	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_store_duration_seconds",
		Help:    "Time spent recording a verified event.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"outcome"})

	databaseUp := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "webhook_ledger_database_up",
		Help: "1 when the last store health check succeeded.",
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		deliveries,
		storeDuration,
		databaseUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &WebhookMetrics{
		Deliveries:    deliveries,
		StoreDuration: storeDuration,
		DatabaseUp:    databaseUp,
		registry:      registry,
	}
}

// Observe counts one delivery. seconds is ignored when negative, which is
// how callers report outcomes that never reached the store.
func (m *WebhookMetrics) Observe(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		m.StoreDuration.WithLabelValues(outcome).Observe(seconds)
	}
}

// SetDatabaseUp is the report callback for the store health monitor.
func (m *WebhookMetrics) SetDatabaseUp(up bool) {
	if up {
		m.DatabaseUp.Set(1)
		return
	}
	m.DatabaseUp.Set(0)
}

// RegisterDBStats exports the connection pool statistics of db.
func (m *WebhookMetrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

func (m *WebhookMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
