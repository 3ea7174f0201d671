package requestmatch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/zalando/surlex/logging"
	"github.com/zalando/surlex/metrics"
)

type contextKey int

const (
	capturesKey contextKey = iota
	patternKey
)

// MuxOptions for creating a Mux.
type MuxOptions struct {
	Options

	// Handler for the requests not matching any pattern, defaults
	// to http.NotFoundHandler().
	NotFound http.Handler

	// When set, the Mux does not write access log entries.
	AccessLogDisabled bool
}

type route struct {
	method  string
	pattern string
	handler http.Handler
}

func (r *route) Path() string                       { return r.pattern }
func (r *route) Method() string                     { return r.method }
func (r *route) HostRegexps() []string              { return nil }
func (r *route) Headers() map[string]string         { return nil }
func (r *route) HeaderRegexps() map[string][]string { return nil }
func (r *route) Value() interface{}                 { return r }

// Mux is an http.Handler that dispatches the requests to the handlers
// registered with surlex path patterns. The values captured from the
// path are available to the handlers through Captures.
type Mux struct {
	mu      sync.RWMutex
	routes  []Definition
	matcher *Matcher
	options MuxOptions
}

// NewMux creates an empty Mux.
func NewMux(o MuxOptions) *Mux {
	if o.Metrics == nil {
		o.Metrics = metrics.Default
	}

	if o.NotFound == nil {
		o.NotFound = http.NotFoundHandler()
	}

	m := &Mux{options: o}
	m.matcher, _ = Make(nil, o.Options)
	return m
}

// Handle registers a handler for the method and the surlex pattern. An
// empty method matches every method. Routes registered with the same
// method and pattern are tried in the order of registration.
func (m *Mux) Handle(method, pattern string, h http.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := append(m.routes[:len(m.routes):len(m.routes)], &route{method, pattern, h})
	matcher, errs := Make(routes, m.options.Options)
	if len(errs) > 0 {
		errs[0].Index = -1
		return errs[0]
	}

	m.routes = routes
	m.matcher = matcher
	return nil
}

// HandleFunc registers a handler function for the method and the surlex
// pattern.
func (m *Mux) HandleFunc(method, pattern string, f func(http.ResponseWriter, *http.Request)) error {
	return m.Handle(method, pattern, http.HandlerFunc(f))
}

func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lw := logging.NewLoggingWriter(w)

	m.mu.RLock()
	matcher := m.matcher
	m.mu.RUnlock()

	var pattern string
	l, captures := matcher.match(r)
	if l == nil {
		m.options.Metrics.IncNotFound()
		m.options.NotFound.ServeHTTP(lw, r)
	} else {
		rt := l.value.(*route)
		pattern = rt.pattern
		if captures == nil {
			captures = make(map[string]string)
		}

		ctx := context.WithValue(r.Context(), capturesKey, captures)
		ctx = context.WithValue(ctx, patternKey, pattern)
		rt.handler.ServeHTTP(lw, r.WithContext(ctx))
	}

	code := lw.StatusCode()
	if code == 0 {
		code = http.StatusOK
	}

	if l != nil {
		m.options.Metrics.MeasureServe(pattern, r.Method, code, start)
	}

	if !m.options.AccessLogDisabled {
		logging.LogAccess(&logging.AccessEntry{
			Request:      r,
			Pattern:      pattern,
			StatusCode:   code,
			ResponseSize: lw.Bytes(),
			Duration:     time.Since(start),
			RequestTime:  start,
		}, nil)
	}
}

// Captures returns the values captured from the path of a request
// dispatched by a Mux. It returns nil for other requests.
func Captures(r *http.Request) map[string]string {
	c, _ := r.Context().Value(capturesKey).(map[string]string)
	return c
}

// Pattern returns the surlex pattern that matched a request dispatched by a
// Mux.
func Pattern(r *http.Request) string {
	p, _ := r.Context().Value(patternKey).(string)
	return p
}
