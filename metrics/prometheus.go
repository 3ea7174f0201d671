package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	promNamespace        = "surlex"
	promCompileSubsystem = "compile"
	promCacheSubsystem   = "cache"
	promMatchSubsystem   = "match"
	promServeSubsystem   = "serve"
	promCustomSubsystem  = "custom"
)

// Prometheus implements the prometheus metrics backend.
type Prometheus struct {
	compileM         prometheus.Histogram
	compileErrorsM   prometheus.Counter
	cacheM           *prometheus.CounterVec
	cacheEntriesM    prometheus.Gauge
	matchM           *prometheus.HistogramVec
	serveM           *prometheus.HistogramVec
	serveCounterM    *prometheus.CounterVec
	notFoundM        prometheus.Counter
	customHistogramM *prometheus.HistogramVec
	customCounterM   *prometheus.CounterVec
	customGaugeM     *prometheus.GaugeVec

	opts     Options
	registry *prometheus.Registry
	handler  http.Handler
}

// NewPrometheus returns a new Prometheus metric backend.
func NewPrometheus(opts Options) *Prometheus {
	namespace := promNamespace
	if opts.Prefix != "" {
		namespace = strings.TrimSuffix(opts.Prefix, ".")
	}

	buckets := opts.HistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	p := &Prometheus{
		compileM: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promCompileSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration in seconds of compiling a pattern.",
			Buckets:   buckets,
		}),
		compileErrorsM: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promCompileSubsystem,
			Name:      "error_total",
			Help:      "The total of patterns failed to compile.",
		}),
		cacheM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promCacheSubsystem,
			Name:      "lookup_total",
			Help:      "The total of compiled pattern cache lookups.",
		}, []string{"result"}),
		cacheEntriesM: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: promCacheSubsystem,
			Name:      "entries",
			Help:      "The number of compiled patterns in the cache.",
		}),
		matchM: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promMatchSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration in seconds of matching a request path.",
			Buckets:   buckets,
		}, []string{"pattern"}),
		serveM: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promServeSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration in seconds of serving a matched request.",
			Buckets:   buckets,
		}, []string{"pattern", "method", "code"}),
		serveCounterM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promServeSubsystem,
			Name:      "requests_total",
			Help:      "The total of served requests.",
		}, []string{"pattern", "method", "code"}),
		notFoundM: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promServeSubsystem,
			Name:      "not_found_total",
			Help:      "The total of requests not matching any pattern.",
		}),
		customHistogramM: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promCustomSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration in seconds of custom metrics.",
			Buckets:   buckets,
		}, []string{"key"}),
		customCounterM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promCustomSubsystem,
			Name:      "total",
			Help:      "Total number of custom metrics.",
		}, []string{"key"}),
		customGaugeM: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: promCustomSubsystem,
			Name:      "gauges",
			Help:      "Gauges number of custom metrics.",
		}, []string{"key"}),
		opts:     opts,
		registry: prometheus.NewRegistry(),
	}

	p.registerMetrics()
	return p
}

func (p *Prometheus) registerMetrics() {
	p.registry.MustRegister(p.compileM)
	p.registry.MustRegister(p.compileErrorsM)
	p.registry.MustRegister(p.cacheM)
	p.registry.MustRegister(p.cacheEntriesM)
	p.registry.MustRegister(p.matchM)
	p.registry.MustRegister(p.serveM)
	p.registry.MustRegister(p.serveCounterM)
	p.registry.MustRegister(p.notFoundM)
	p.registry.MustRegister(p.customHistogramM)
	p.registry.MustRegister(p.customCounterM)
	p.registry.MustRegister(p.customGaugeM)

	if p.opts.EnableRuntimeMetrics {
		p.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		p.registry.MustRegister(collectors.NewGoCollector())
	}
}

func (p *Prometheus) sinceS(start time.Time) float64 {
	return time.Since(start).Seconds()
}

func (p *Prometheus) CreateHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) getHandler() http.Handler {
	if p.handler != nil {
		return p.handler
	}

	p.handler = p.CreateHandler()
	return p.handler
}

// RegisterHandler satisfies Metrics interface.
func (p *Prometheus) RegisterHandler(path string, mux *http.ServeMux) {
	mux.Handle(path, p.getHandler())
}

func (p *Prometheus) MeasureSince(key string, start time.Time) {
	p.customHistogramM.WithLabelValues(key).Observe(p.sinceS(start))
}

func (p *Prometheus) IncCounter(key string) {
	p.customCounterM.WithLabelValues(key).Inc()
}

func (p *Prometheus) IncCounterBy(key string, value int64) {
	p.customCounterM.WithLabelValues(key).Add(float64(value))
}

func (p *Prometheus) UpdateGauge(key string, v float64) {
	p.customGaugeM.WithLabelValues(key).Set(v)
}

func (p *Prometheus) MeasureCompile(start time.Time) {
	p.compileM.Observe(p.sinceS(start))
}

func (p *Prometheus) IncCompileErrors() {
	p.compileErrorsM.Inc()
}

func (p *Prometheus) IncCacheHit() {
	p.cacheM.WithLabelValues("hit").Inc()
}

func (p *Prometheus) IncCacheMiss() {
	p.cacheM.WithLabelValues("miss").Inc()
}

func (p *Prometheus) UpdateCacheEntries(n int) {
	p.cacheEntriesM.Set(float64(n))
}

func (p *Prometheus) MeasureMatch(pattern string, start time.Time) {
	if !p.opts.EnablePatternMetrics {
		pattern = ""
	}

	p.matchM.WithLabelValues(pattern).Observe(p.sinceS(start))
}

func (p *Prometheus) MeasureServe(pattern, method string, code int, start time.Time) {
	if !p.opts.EnablePatternMetrics {
		pattern = ""
	}

	method = measuredMethod(method)
	codeStr := strconv.Itoa(code)
	p.serveM.WithLabelValues(pattern, method, codeStr).Observe(p.sinceS(start))
	p.serveCounterM.WithLabelValues(pattern, method, codeStr).Inc()
}

func (p *Prometheus) IncNotFound() {
	p.notFoundM.Inc()
}
