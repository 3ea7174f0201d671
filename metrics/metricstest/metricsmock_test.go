package metricstest

import (
	"fmt"
	"testing"
	"time"

	"github.com/zalando/surlex/metrics"
)

func TestMockMetrics(t *testing.T) {
	m := &MockMetrics{}

	t.Run("test-measure-since", func(t *testing.T) {
		m.Now = time.Date(2020, 1, 1, 0, 0, 2, 0, time.UTC)
		key := "test-measure-since"
		m.MeasureSince(key, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

		d, ok := m.Measure(key)
		if !ok {
			t.Fatalf("Failed to find measure %q", key)
		}

		if len(d) != 1 || d[0] != 2*time.Second {
			t.Fatalf("Failed to have one measurement of 2s, got: %v", d)
		}
	})

	t.Run("test-inc-counter", func(t *testing.T) {
		key := "test-inc-counter"
		m.IncCounter(key)
		if i, ok := m.Counter(key); !ok || i != 1 {
			t.Fatalf("Failed to get the right value after inc: %d", i)
		}

		m.IncCounterBy(key, 2)
		if i, _ := m.Counter(key); i != 3 {
			t.Fatalf("Failed to get the right value after inc: %d", i)
		}
	})

	t.Run("test-update-gauge", func(t *testing.T) {
		m.UpdateCacheEntries(7)
		if v, ok := m.Gauge(metrics.KeyCacheEntries); !ok || v != 7 {
			t.Fatalf("Failed to get the right gauge value: %v", v)
		}
	})

	t.Run("test-cache", func(t *testing.T) {
		m.IncCacheHit()
		m.IncCacheHit()
		m.IncCacheMiss()
		if i, _ := m.Counter(metrics.KeyCacheHit); i != 2 {
			t.Fatalf("Failed to count cache hits: %d", i)
		}

		if i, _ := m.Counter(metrics.KeyCacheMiss); i != 1 {
			t.Fatalf("Failed to count cache misses: %d", i)
		}
	})

	t.Run("test-serve", func(t *testing.T) {
		m.MeasureServe("/<id>", "GET", 200, time.Now())
		key := fmt.Sprintf(metrics.KeyServe, "/<id>", "GET", 200)
		if _, ok := m.Measure(key); !ok {
			t.Fatalf("Failed to find measure %q", key)
		}
	})
}

func TestMockMetricsPrefix(t *testing.T) {
	m := &MockMetrics{Prefix: "surlex."}
	m.IncNotFound()
	if i, ok := m.Counter("surlex." + metrics.KeyNotFound); !ok || i != 1 {
		t.Fatalf("Failed to prefix the key, got: %d", i)
	}
}
