package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

const (
	statsRefreshDuration = 5 * time.Second

	uniformReservoirSize  = 1024
	expDecayReservoirSize = 1028
	expDecayAlpha         = 0.015
)

var percentiles = []float64{0.5, 0.75, 0.95, 0.99, 0.999}

var percentileNames = []string{"median", "75%", "95%", "99%", "99.9%"}

// CodaHale collects the metrics in a go-metrics registry, and serves them
// as JSON in the format of DropWizard's CodaHale metrics.
type CodaHale struct {
	reg        metrics.Registry
	newTimer   func() metrics.Timer
	newCounter func() metrics.Counter
	newGauge   func() metrics.GaugeFloat64
	options    Options

	handlerOnce sync.Once
	handler     http.Handler
}

// NewCodaHale creates a CodaHale backend.
func NewCodaHale(o Options) *CodaHale {
	newSample := func() metrics.Sample { return metrics.NewUniformSample(uniformReservoirSize) }
	if o.UseExpDecaySample {
		newSample = func() metrics.Sample { return metrics.NewExpDecaySample(expDecayReservoirSize, expDecayAlpha) }
	}

	c := &CodaHale{
		reg: metrics.NewRegistry(),
		newTimer: func() metrics.Timer {
			return metrics.NewCustomTimer(metrics.NewHistogram(newSample()), metrics.NewMeter())
		},
		newCounter: metrics.NewCounter,
		newGauge:   metrics.NewGaugeFloat64,
		options:    o,
	}

	if o.EnableDebugGcMetrics {
		metrics.RegisterDebugGCStats(c.reg)
		go metrics.CaptureDebugGCStats(c.reg, statsRefreshDuration)
	}

	if o.EnableRuntimeMetrics {
		metrics.RegisterRuntimeMemStats(c.reg)
		go metrics.CaptureRuntimeMemStats(c.reg, statsRefreshDuration)
	}

	return c
}

// NewVoid creates a backend that records nothing.
func NewVoid() *CodaHale {
	return &CodaHale{
		reg:        metrics.NewRegistry(),
		newTimer:   func() metrics.Timer { return metrics.NilTimer{} },
		newCounter: func() metrics.Counter { return metrics.NilCounter{} },
		newGauge:   func() metrics.GaugeFloat64 { return metrics.NilGaugeFloat64{} },
	}
}

func (c *CodaHale) getTimer(key string) metrics.Timer {
	return c.reg.GetOrRegister(key, c.newTimer).(metrics.Timer)
}

func (c *CodaHale) getCounter(key string) metrics.Counter {
	return c.reg.GetOrRegister(key, c.newCounter).(metrics.Counter)
}

func (c *CodaHale) getGauge(key string) metrics.GaugeFloat64 {
	return c.reg.GetOrRegister(key, c.newGauge).(metrics.GaugeFloat64)
}

func (c *CodaHale) MeasureSince(key string, start time.Time) { c.getTimer(key).UpdateSince(start) }
func (c *CodaHale) IncCounter(key string)                    { c.getCounter(key).Inc(1) }
func (c *CodaHale) IncCounterBy(key string, value int64)     { c.getCounter(key).Inc(value) }
func (c *CodaHale) UpdateGauge(key string, v float64)        { c.getGauge(key).Update(v) }
func (c *CodaHale) MeasureCompile(start time.Time)           { c.MeasureSince(KeyCompile, start) }
func (c *CodaHale) IncCompileErrors()                        { c.IncCounter(KeyCompileError) }
func (c *CodaHale) IncCacheHit()                             { c.IncCounter(KeyCacheHit) }
func (c *CodaHale) IncCacheMiss()                            { c.IncCounter(KeyCacheMiss) }
func (c *CodaHale) IncNotFound()                             { c.IncCounter(KeyNotFound) }

func (c *CodaHale) UpdateCacheEntries(n int) {
	c.UpdateGauge(KeyCacheEntries, float64(n))
}

// MeasureMatch records the combined match time, and the time per pattern
// when EnablePatternMetrics is set.
func (c *CodaHale) MeasureMatch(pattern string, start time.Time) {
	c.MeasureSince(KeyMatchCombined, start)
	if c.options.EnablePatternMetrics {
		c.MeasureSince(fmt.Sprintf(KeyMatch, patternForKey(pattern)), start)
	}
}

func (c *CodaHale) MeasureServe(pattern, method string, code int, start time.Time) {
	method = measuredMethod(method)
	c.MeasureSince(fmt.Sprintf(KeyServeCombined, method, code), start)
	if c.options.EnablePatternMetrics {
		c.MeasureSince(fmt.Sprintf(KeyServe, patternForKey(pattern), method, code), start)
	}
}

// RegisterHandler serves all metrics under the path, and single metrics
// or key prefixes under path/<key>.
func (c *CodaHale) RegisterHandler(path string, mux *http.ServeMux) {
	c.handlerOnce.Do(func() {
		c.handler = &codaHaleHandler{root: path, reg: c.reg, prefix: c.options.Prefix}
	})

	mux.Handle(path, c.handler)
	mux.Handle(path+"/", c.handler)
}

type codaHaleHandler struct {
	root   string
	reg    metrics.Registry
	prefix string
}

func (h *codaHaleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, h.root), "/")
	selected := h.selectMetrics(key)
	if len(selected) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(selected)
}

// selectMetrics returns the metric with the exact key, or every metric
// whose name starts with the key. The keys are expected with the prefix.
func (h *codaHaleHandler) selectMetrics(key string) surlexMetrics {
	name := strings.TrimPrefix(key, h.prefix)
	selected := make(surlexMetrics)
	if m := h.reg.Get(name); m != nil {
		selected[key] = m
		return selected
	}

	h.reg.Each(func(n string, m interface{}) {
		if key == "" || strings.HasPrefix(n, name) {
			selected[h.prefix+n] = m
		}
	})

	return selected
}

type surlexMetrics map[string]interface{}

type distribution interface {
	Count() int64
	Min() int64
	Max() int64
	Mean() float64
	StdDev() float64
	Percentiles([]float64) []float64
}

func distributionValues(d distribution) map[string]interface{} {
	v := map[string]interface{}{
		"count":  d.Count(),
		"min":    d.Min(),
		"max":    d.Max(),
		"mean":   d.Mean(),
		"stddev": d.StdDev(),
	}

	for i, p := range d.Percentiles(percentiles) {
		v[percentileNames[i]] = p
	}

	return v
}

// family returns the CodaHale metric family and the JSON values of a metric.
func family(metric interface{}) (string, map[string]interface{}) {
	switch m := metric.(type) {
	case metrics.Gauge:
		return "gauges", map[string]interface{}{"value": m.Value()}
	case metrics.GaugeFloat64:
		return "gauges", map[string]interface{}{"value": m.Snapshot().Value()}
	case metrics.Counter:
		return "counters", map[string]interface{}{"count": m.Snapshot().Count()}
	case metrics.Histogram:
		return "histograms", distributionValues(m.Snapshot())
	case metrics.Timer:
		t := m.Snapshot()
		v := distributionValues(t)
		v["1m.rate"] = t.Rate1()
		v["5m.rate"] = t.Rate5()
		v["15m.rate"] = t.Rate15()
		v["mean.rate"] = t.RateMean()
		return "timers", v
	default:
		return "unknown", map[string]interface{}{"error": fmt.Sprintf("unknown metrics type %T", m)}
	}
}

func (sm surlexMetrics) MarshalJSON() ([]byte, error) {
	data := make(map[string]map[string]interface{})
	for name, metric := range sm {
		f, values := family(metric)
		if data[f] == nil {
			data[f] = make(map[string]interface{})
		}

		data[f][name] = values
	}

	return json.Marshal(data)
}
