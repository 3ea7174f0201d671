/*
Package metrics implements collection of surlex performance metrics.

It supports two backends: the Go implementation of the Coda Hale
metrics library (https://github.com/dropwizard/metrics) and Prometheus.

The collected metrics include the time spent with compiling patterns,
the hits and misses of the compiled pattern cache, the time of
matching a request path and the total time of serving a matched
request.

For the keys used for the different metrics, please, see the Key*
constants.
*/
package metrics

import (
	"net/http"
	"strings"
	"time"
)

const (
	KeyCompile        = "compile"
	KeyCompileError   = "compile.error"
	KeyCacheHit       = "cache.hit"
	KeyCacheMiss      = "cache.miss"
	KeyCacheEntries   = "cache.entries"
	KeyMatch          = "match.%s"
	KeyMatchCombined  = "all.match"
	KeyServe          = "serve.%s.%s.%d"
	KeyServeCombined  = "all.serve.%s.%d"
	KeyNotFound       = "notfound"
	unknownMethodName = "_unknownmethod_"
)

// Kind is the backend format of the collected metrics.
type Kind int

const (
	UnkownKind   Kind = 0
	CodaHaleKind Kind = 1 << iota
	PrometheusKind
	AllKind = CodaHaleKind | PrometheusKind
)

func (k Kind) String() string {
	switch k {
	case CodaHaleKind:
		return "codahale"
	case PrometheusKind:
		return "prometheus"
	case AllKind:
		return "all"
	default:
		return "unknown"
	}
}

// ParseMetricsKind parses a string representation of a metrics kind.
// Unknown strings default to CodaHaleKind.
func ParseMetricsKind(t string) Kind {
	t = strings.ToLower(t)

	switch t {
	case "codahale":
		return CodaHaleKind
	case "prometheus":
		return PrometheusKind
	case "all":
		return AllKind
	default:
		return CodaHaleKind
	}
}

// Metrics is the generic interface that all the required backends
// should implement to be a surlex metrics compatible backend.
type Metrics interface {
	// custom metrics
	MeasureSince(key string, start time.Time)
	IncCounter(key string)
	IncCounterBy(key string, value int64)
	UpdateGauge(key string, value float64)

	// pattern compilation and caching
	MeasureCompile(start time.Time)
	IncCompileErrors()
	IncCacheHit()
	IncCacheMiss()
	UpdateCacheEntries(n int)

	// request matching
	MeasureMatch(pattern string, start time.Time)
	MeasureServe(pattern, method string, code int, start time.Time)
	IncNotFound()

	RegisterHandler(path string, mux *http.ServeMux)
}

// Options for initializing metrics collection.
type Options struct {
	// The metrics exposition format. Defaults to CodaHaleKind.
	Format Kind

	// Common prefix for the keys of the different collected
	// metrics. For Prometheus it is used as the namespace.
	Prefix string

	// If set, garbage collector metrics are collected
	// in addition to the pattern metrics.
	EnableDebugGcMetrics bool

	// If set, Go runtime metrics are collected in
	// addition to the pattern metrics.
	EnableRuntimeMetrics bool

	// If set, the match and serve timings are also
	// collected for every pattern.
	EnablePatternMetrics bool

	// If set, the exponentially decaying sample is used
	// for the CodaHale timers, otherwise a uniform one.
	UseExpDecaySample bool

	// Custom buckets for the Prometheus histograms.
	HistogramBuckets []float64
}

var (
	// Void discards every measurement.
	Void Metrics = NewVoid()

	// Default is used by the packages when no metrics are passed
	// in explicitly.
	Default = Void
)

// New creates the backend selected by the Format option.
func New(o Options) Metrics {
	switch o.Format {
	case PrometheusKind:
		return NewPrometheus(o)
	case AllKind:
		return NewAll(o)
	default:
		return NewCodaHale(o)
	}
}

// NewHandler returns a collection of metrics handlers.
func NewHandler(m Metrics) http.Handler {
	mux := http.NewServeMux()
	m.RegisterHandler("/metrics", mux)
	return mux
}

func patternForKey(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "_root_"
	}

	p = strings.ReplaceAll(p, ".", "_")
	p = strings.ReplaceAll(p, "/", ".")
	return p
}

func measuredMethod(m string) string {
	switch m {
	case "OPTIONS",
		"GET",
		"HEAD",
		"POST",
		"PUT",
		"PATCH",
		"DELETE",
		"TRACE",
		"CONNECT":
		return m
	default:
		return unknownMethodName
	}
}
