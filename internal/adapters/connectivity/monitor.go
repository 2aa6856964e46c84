package connectivity

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/taskito/core/internal/infrastructure/logger"
)

// Monitor probes the backend health endpoint on an interval and tracks
// whether a network path exists. Subscribers are invoked on the
// offline-to-online transition only; going offline is silent because
// every remote operation already checks Online before acting.
type Monitor struct {
	probeURL string
	interval time.Duration
	http     *http.Client
	logger   *logger.Logger

	mu        sync.Mutex
	online    bool
	listeners []func()
}

// NewMonitor creates a connectivity monitor against the backend base URL.
// The monitor starts in the online state so that a first push is not
// skipped before the first probe completes.
func NewMonitor(baseURL string, interval, timeout time.Duration, logger *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Monitor{
		probeURL: strings.TrimRight(baseURL, "/") + "/health",
		interval: interval,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		online:   true,
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnOnline registers a callback fired when connectivity returns after
// an offline period.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Run probes until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	m.SetOnline(m.reachable(ctx))
}

// SetOnline records a connectivity observation and fires the online
// listeners when the state flips from offline to online.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	var listeners []func()
	if online && !wasOnline {
		listeners = append([]func(){}, m.listeners...)
	}
	m.mu.Unlock()

	if online && !wasOnline {
		m.logger.Infow("Connectivity restored")
		for _, fn := range listeners {
			fn()
		}
	} else if !online && wasOnline {
		m.logger.Warnw("Connectivity lost", "probe_url", m.probeURL)
	}
}

func (m *Monitor) reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < 500
}
