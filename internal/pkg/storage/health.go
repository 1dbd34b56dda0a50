package storage

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthMonitor pings the event store on a fixed interval and reports the
// result, logging only when the state flips.
type HealthMonitor struct {
	pinger   Pinger
	interval time.Duration
	report   func(up bool)

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
	lastUp *bool
}

func NewHealthMonitor(pinger Pinger, interval time.Duration, report func(up bool)) *HealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthMonitor{pinger: pinger, interval: interval, report: report}
}

// Start runs one check immediately, then one per interval until Stop.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stopCh != nil {
		m.mu.Unlock()
		return
	}
	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	stopCh, done := m.stopCh, m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		log.Infow("[StoreHealth] monitor started", "interval", m.interval.String())

		m.CheckOnce(ctx)
		for {
			select {
			case <-stopCh:
				log.Info("[StoreHealth] monitor stopped")
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckOnce(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for it to exit.
func (m *HealthMonitor) Stop() {
	m.mu.Lock()
	stopCh, done := m.stopCh, m.done
	m.stopCh, m.done = nil, nil
	m.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}
}

// CheckOnce pings with a timeout of half the interval.
func (m *HealthMonitor) CheckOnce(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, m.interval/2)
	defer cancel()

	err := m.pinger.Ping(pingCtx)
	up := err == nil
	if m.report != nil {
		m.report(up)
	}

	m.mu.Lock()
	changed := m.lastUp == nil || *m.lastUp != up
	m.lastUp = &up
	m.mu.Unlock()

	if changed {
		if up {
			log.Info("[StoreHealth] database reachable")
		} else {
			log.Errorw("[StoreHealth] database unreachable", "error", err)
		}
	}
	return up
}
