package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gossip-lsp/hilite/jsonrpc"
)

// Metrics holds request counts and duration statistics per method.
type Metrics struct {
	mu      sync.Mutex
	methods map[string]*MethodSnapshot
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{methods: make(map[string]*MethodSnapshot)}
}

// MethodSnapshot is a point-in-time copy of metrics for one method.
type MethodSnapshot struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MaxTime   time.Duration
}

// Mean returns the average request duration.
func (s MethodSnapshot) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Count)
}

func (m *Metrics) record(method string, d time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.methods[method]
	if !ok {
		s = &MethodSnapshot{}
		m.methods[method] = s
	}
	s.Count++
	s.TotalTime += d
	s.MaxTime = max(s.MaxTime, d)
	if failed {
		s.Errors++
	}
}

// Snapshot returns a point-in-time copy of all method metrics.
func (m *Metrics) Snapshot() map[string]MethodSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]MethodSnapshot, len(m.methods))
	for name, s := range m.methods {
		snap[name] = *s
	}
	return snap
}

// Telemetry returns middleware that collects request count and latency metrics.
func Telemetry(metrics *Metrics) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
			start := time.Now()
			result, err := next(ctx, method, params)
			metrics.record(method, time.Since(start), err != nil)
			return result, err
		}
	}
}
