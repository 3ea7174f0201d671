package metrics

import (
	"net/http"
	"time"
)

// All records every measurement in both the CodaHale and the
// Prometheus backends.
type All struct {
	prometheus *Prometheus
	codaHale   *CodaHale
}

func NewAll(o Options) *All {
	return &All{
		prometheus: NewPrometheus(o),
		codaHale:   NewCodaHale(o),
	}
}

func (a *All) each(f func(Metrics)) {
	f(a.prometheus)
	f(a.codaHale)
}

func (a *All) MeasureSince(key string, start time.Time) {
	a.each(func(m Metrics) { m.MeasureSince(key, start) })
}

func (a *All) IncCounter(key string) { a.each(func(m Metrics) { m.IncCounter(key) }) }

func (a *All) IncCounterBy(key string, value int64) {
	a.each(func(m Metrics) { m.IncCounterBy(key, value) })
}

func (a *All) UpdateGauge(key string, v float64) { a.each(func(m Metrics) { m.UpdateGauge(key, v) }) }

func (a *All) MeasureCompile(start time.Time) { a.each(func(m Metrics) { m.MeasureCompile(start) }) }
func (a *All) IncCompileErrors()              { a.each(Metrics.IncCompileErrors) }
func (a *All) IncCacheHit()                   { a.each(Metrics.IncCacheHit) }
func (a *All) IncCacheMiss()                  { a.each(Metrics.IncCacheMiss) }
func (a *All) IncNotFound()                   { a.each(Metrics.IncNotFound) }

func (a *All) UpdateCacheEntries(n int) { a.each(func(m Metrics) { m.UpdateCacheEntries(n) }) }

func (a *All) MeasureMatch(pattern string, start time.Time) {
	a.each(func(m Metrics) { m.MeasureMatch(pattern, start) })
}

func (a *All) MeasureServe(pattern, method string, code int, start time.Time) {
	a.each(func(m Metrics) { m.MeasureServe(pattern, method, code, start) })
}

// RegisterHandler serves the CodaHale JSON under the path and the
// Prometheus text format under path/prometheus.
func (a *All) RegisterHandler(path string, mux *http.ServeMux) {
	a.codaHale.RegisterHandler(path, mux)
	mux.Handle(path+"/prometheus", a.prometheus.getHandler())
}
