package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
)

func TestUseVoidByDefault(t *testing.T) {
	if Default != Void {
		t.Error("Default metrics should not record anything")
	}

	c, ok := Default.(*CodaHale)
	if !ok {
		t.Fatal("Default metrics backend should be CodaHale")
	}

	switch c.getTimer(KeyCompile).(type) {
	case metrics.NilTimer:
	default:
		t.Errorf("Able to get metric timer for key '%s' while it shouldn't be possible", KeyCompile)
	}

	switch c.getCounter(KeyCacheHit).(type) {
	case metrics.NilCounter:
	default:
		t.Errorf("Able to get metric counter for key '%s' while it shouldn't be possible", KeyCacheHit)
	}
}

func TestCodaHaleDefaultOptions(t *testing.T) {
	c := NewCodaHale(Options{})

	if c.reg.Get("debug.GCStats.LastGC") != nil {
		t.Error("Default options should not enable debug gc stats")
	}

	if c.reg.Get("runtime.MemStats.Alloc") != nil {
		t.Error("Default options should not enable runtime stats")
	}
}

func TestCodaHaleRuntimeStats(t *testing.T) {
	c := NewCodaHale(Options{EnableRuntimeMetrics: true})
	if c.reg.Get("runtime.MemStats.Alloc") == nil {
		t.Error("Options enabled runtime stats but failed to find the key 'runtime.MemStats.Alloc'")
	}
}

func TestCodaHaleCounters(t *testing.T) {
	c := NewCodaHale(Options{})
	c.IncCacheHit()
	c.IncCacheHit()
	c.IncCacheMiss()
	c.IncCompileErrors()
	c.IncNotFound()
	c.IncCounterBy("custom", 5)

	for key, expected := range map[string]int64{
		KeyCacheHit:     2,
		KeyCacheMiss:    1,
		KeyCompileError: 1,
		KeyNotFound:     1,
		"custom":        5,
	} {
		if got := c.getCounter(key).Count(); got != expected {
			t.Errorf("%s: expected %d, got %d", key, expected, got)
		}
	}
}

func TestCodaHaleTimers(t *testing.T) {
	for _, ti := range []struct {
		msg      string
		options  Options
		measure  func(*CodaHale)
		expected []string
		missing  []string
	}{{
		msg:      "compile",
		measure:  func(c *CodaHale) { c.MeasureCompile(time.Now()) },
		expected: []string{KeyCompile},
	}, {
		msg:      "match without pattern metrics",
		measure:  func(c *CodaHale) { c.MeasureMatch("/articles/<id>", time.Now()) },
		expected: []string{KeyMatchCombined},
		missing:  []string{fmt.Sprintf(KeyMatch, "articles.<id>")},
	}, {
		msg:      "match with pattern metrics",
		options:  Options{EnablePatternMetrics: true},
		measure:  func(c *CodaHale) { c.MeasureMatch("/articles/<id>.html", time.Now()) },
		expected: []string{KeyMatchCombined, fmt.Sprintf(KeyMatch, "articles.<id>_html")},
	}, {
		msg:      "serve",
		options:  Options{EnablePatternMetrics: true},
		measure:  func(c *CodaHale) { c.MeasureServe("/", "FOO", 404, time.Now()) },
		expected: []string{"all.serve._unknownmethod_.404", "serve._root_._unknownmethod_.404"},
	}} {
		t.Run(ti.msg, func(t *testing.T) {
			c := NewCodaHale(ti.options)
			ti.measure(c)

			for _, key := range ti.expected {
				if c.reg.Get(key) == nil {
					t.Errorf("failed to find timer %q", key)
				}
			}

			for _, key := range ti.missing {
				if c.reg.Get(key) != nil {
					t.Errorf("unexpected timer %q", key)
				}
			}
		})
	}
}

func TestCodaHaleGauge(t *testing.T) {
	c := NewCodaHale(Options{})
	c.UpdateCacheEntries(3)
	if v := c.getGauge(KeyCacheEntries).Value(); v != 3 {
		t.Errorf("expected 3 entries, got %v", v)
	}
}

func TestCodaHaleHandler(t *testing.T) {
	c := NewCodaHale(Options{Prefix: "surlex."})
	c.IncCacheHit()
	c.MeasureCompile(time.Now())

	h := NewHandler(c)

	for _, ti := range []struct {
		msg      string
		method   string
		path     string
		code     int
		families []string
	}{{
		msg:      "all",
		method:   "GET",
		path:     "/metrics",
		code:     http.StatusOK,
		families: []string{"counters", "timers"},
	}, {
		msg:      "single key",
		method:   "GET",
		path:     "/metrics/surlex.cache.hit",
		code:     http.StatusOK,
		families: []string{"counters"},
	}, {
		msg:    "unknown key",
		method: "GET",
		path:   "/metrics/surlex.foo",
		code:   http.StatusNotFound,
	}, {
		msg:    "post",
		method: "POST",
		path:   "/metrics",
		code:   http.StatusMethodNotAllowed,
	}} {
		t.Run(ti.msg, func(t *testing.T) {
			rsp := httptest.NewRecorder()
			h.ServeHTTP(rsp, httptest.NewRequest(ti.method, ti.path, nil))
			if rsp.Code != ti.code {
				t.Fatalf("expected %d, got %d", ti.code, rsp.Code)
			}

			if ti.code != http.StatusOK {
				return
			}

			var data map[string]map[string]interface{}
			if err := json.Unmarshal(rsp.Body.Bytes(), &data); err != nil {
				t.Fatal(err)
			}

			for _, f := range ti.families {
				if _, ok := data[f]; !ok {
					t.Errorf("missing family %q in %v", f, data)
				}
			}
		})
	}
}

func TestParseMetricsKind(t *testing.T) {
	for s, k := range map[string]Kind{
		"codahale":   CodaHaleKind,
		"Prometheus": PrometheusKind,
		"all":        AllKind,
		"":           CodaHaleKind,
	} {
		if got := ParseMetricsKind(s); got != k {
			t.Errorf("%q: expected %v, got %v", s, k, got)
		}
	}

	if AllKind.String() != "all" || UnkownKind.String() != "unknown" {
		t.Error("unexpected kind names")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(Options{}).(*CodaHale); !ok {
		t.Error("expected CodaHale by default")
	}

	if _, ok := New(Options{Format: PrometheusKind}).(*Prometheus); !ok {
		t.Error("expected Prometheus")
	}

	if _, ok := New(Options{Format: AllKind}).(*All); !ok {
		t.Error("expected All")
	}
}
