package vending

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Monitor probes the backend health endpoint on an interval. It only reports
// reachability; user requests that failed are never replayed.
type Monitor struct {
	client   *Client
	interval time.Duration
	log      *log.Entry
	mu       sync.Mutex

	probed    bool
	connected bool
	lastError error
	lastSeen  time.Time

	// OnChange is called after the first probe and whenever the connected flag flips
	OnChange func(ConnectionStatus)
}

// NewMonitor creates a health monitor for client
func NewMonitor(client *Client, interval time.Duration, logger *log.Entry) *Monitor {
	return &Monitor{
		client:   client,
		interval: interval,
		log:      logger.WithField("component", "backend-monitor"),
	}
}

// Run probes immediately and then on every tick until ctx is done
func (m *Monitor) Run(ctx context.Context) error {
	m.Probe(ctx)

	if m.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe performs one health check and records the result
func (m *Monitor) Probe(ctx context.Context) {
	err := m.client.Health(ctx)
	if err != nil && ctx.Err() != nil {
		// shutting down, not a backend failure
		return
	}

	m.mu.Lock()
	was := m.connected
	if err != nil {
		m.connected = false
		m.lastError = err
	} else {
		m.connected = true
		m.lastError = nil
		m.lastSeen = time.Now()
	}
	changed := !m.probed || was != m.connected
	m.probed = true
	m.mu.Unlock()

	if !changed {
		return
	}

	if err != nil {
		m.log.WithError(err).Warn("Backend unreachable")
	} else {
		m.log.Info("Backend reachable")
	}
	if m.OnChange != nil {
		m.OnChange(m.Status())
	}
}

// Status returns the current connection status
func (m *Monitor) Status() ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	errStr := ""
	if m.lastError != nil {
		errStr = m.lastError.Error()
	}

	return ConnectionStatus{
		Connected: m.connected,
		LastError: errStr,
		LastSeen:  m.lastSeen,
		BaseURL:   m.client.BaseURL(),
	}
}
