package metricstest

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zalando/surlex/metrics"
)

// MockMetrics records every measurement in memory. It is safe for
// concurrent use.
type MockMetrics struct {
	Prefix string

	mu sync.Mutex

	// Metrics gathering
	counters map[string]int64
	gauges   map[string]float64
	measures map[string][]time.Duration
	Now      time.Time
}

var _ metrics.Metrics = (*MockMetrics)(nil)

//
// Public thread safe access to metrics
//

func (m *MockMetrics) WithCounters(f func(counters map[string]int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	f(m.counters)
}

func (m *MockMetrics) WithMeasures(f func(measures map[string][]time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.measures == nil {
		m.measures = make(map[string][]time.Duration)
	}
	f(m.measures)
}

func (m *MockMetrics) WithGauges(f func(map[string]float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gauges == nil {
		m.gauges = make(map[string]float64)
	}
	f(m.gauges)
}

func (m *MockMetrics) since(start time.Time) time.Duration {
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}

	return now.Sub(start)
}

//
// Interface Metrics
//

func (m *MockMetrics) MeasureSince(key string, start time.Time) {
	key = m.Prefix + key
	d := m.since(start)
	m.WithMeasures(func(measures map[string][]time.Duration) {
		measures[key] = append(measures[key], d)
	})
}

func (m *MockMetrics) IncCounter(key string) {
	m.IncCounterBy(key, 1)
}

func (m *MockMetrics) IncCounterBy(key string, value int64) {
	key = m.Prefix + key
	m.WithCounters(func(counters map[string]int64) {
		counters[key] += value
	})
}

func (m *MockMetrics) UpdateGauge(key string, value float64) {
	key = m.Prefix + key
	m.WithGauges(func(g map[string]float64) {
		g[key] = value
	})
}

func (m *MockMetrics) MeasureCompile(start time.Time) {
	m.MeasureSince(metrics.KeyCompile, start)
}

func (m *MockMetrics) IncCompileErrors() {
	m.IncCounter(metrics.KeyCompileError)
}

func (m *MockMetrics) IncCacheHit() {
	m.IncCounter(metrics.KeyCacheHit)
}

func (m *MockMetrics) IncCacheMiss() {
	m.IncCounter(metrics.KeyCacheMiss)
}

func (m *MockMetrics) UpdateCacheEntries(n int) {
	m.UpdateGauge(metrics.KeyCacheEntries, float64(n))
}

// MeasureMatch records the raw pattern in the key, without the key
// normalization of the real backends.
func (m *MockMetrics) MeasureMatch(pattern string, start time.Time) {
	m.MeasureSince(metrics.KeyMatchCombined, start)
	m.MeasureSince(fmt.Sprintf(metrics.KeyMatch, pattern), start)
}

func (m *MockMetrics) MeasureServe(pattern, method string, code int, start time.Time) {
	m.MeasureSince(fmt.Sprintf(metrics.KeyServeCombined, method, code), start)
	m.MeasureSince(fmt.Sprintf(metrics.KeyServe, pattern, method, code), start)
}

func (m *MockMetrics) IncNotFound() {
	m.IncCounter(metrics.KeyNotFound)
}

func (*MockMetrics) RegisterHandler(path string, mux *http.ServeMux) {
	panic("implement me")
}

//
// Readers
//

func (m *MockMetrics) Counter(key string) (v int64, ok bool) {
	m.WithCounters(func(c map[string]int64) {
		v, ok = c[key]
	})

	return
}

func (m *MockMetrics) Gauge(key string) (v float64, ok bool) {
	m.WithGauges(func(g map[string]float64) {
		v, ok = g[key]
	})

	return
}

func (m *MockMetrics) Measure(key string) (d []time.Duration, ok bool) {
	m.WithMeasures(func(measures map[string][]time.Duration) {
		d, ok = measures[key]
	})

	return
}
