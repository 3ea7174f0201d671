// Package requestmatch implements matching http requests to associated values,
// with the request path matched by surlex patterns.
//
// Matching is based on the attributes of http requests, where a request matches
// a definition if it fulfills all conditions in it. The definitions are
// evaluated from the strictest to the least strict, and the associated value of
// the first matching definition is returned. Definitions with a path pattern
// are stricter than the ones without. Beyond that, strictness is proportional to
// the number of non-empty conditions in the definition. Definitions of the same
// strictness are evaluated in the order they were passed in.
//
// The surlex pattern of a definition matches the whole, cleaned request path by
// default, e.g. /users/<id:#>(/<action>) will be matched by /users/42/roles,
// and the captured values will be id=42 and action=roles. With the PrefixPath
// option, the pattern only needs to match the beginning of the path, the way
// the surlex matcher does it.
package requestmatch

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/dimfeld/httppath"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/compilecache"
	"github.com/zalando/surlex/metrics"
)

type leafMatcher struct {
	pattern        string
	surlex         *surlex.Surlex
	method         string
	hostRxs        []*regexp.Regexp
	headersExact   map[string]string
	headersRegexps map[string][]*regexp.Regexp
	value          interface{}
}

type leafMatchers []*leafMatcher

// Options for making a Matcher.
type Options struct {

	// When set, the Matcher handles paths with or without a trailing
	// slash equally.
	IgnoreTrailingSlash bool

	// When set, the path patterns need to match only the beginning
	// of the request path.
	PrefixPath bool

	// Cache used to compile the path patterns, defaults to
	// compilecache.Default().
	Cache *compilecache.Cache

	// Metrics collector for the match timings, defaults to
	// metrics.Default.
	Metrics metrics.Metrics
}

// A Matcher represents a preprocessed set of definitions and their associated
// values.
type Matcher struct {
	leaves  leafMatchers
	options Options
}

// A Definition represents a set of conditions and an associated
// value to be returned when a request fulfills all non-empty
// conditions.
type Definition interface {

	// Surlex pattern of the path, or empty.
	Path() string

	// Method to match, or empty.
	Method() string

	// Regular expressions, matched if all matched by the `Host` field.
	HostRegexps() []string

	// Exact matches for request headers.
	Headers() map[string]string

	// Regular expressions for header fields, matched if all matched.
	HeaderRegexps() map[string][]string

	// Associated value returned in case of a match.
	Value() interface{}
}

// An error created if a definition cannot be preprocessed.
type DefinitionError struct {
	Index    int
	Original error
}

func compileRxs(exps []string) ([]*regexp.Regexp, error) {
	rxs := make([]*regexp.Regexp, len(exps))
	for i, exp := range exps {
		rx, err := regexp.Compile(exp)
		if err != nil {
			return nil, err
		}

		rxs[i] = rx
	}

	return rxs, nil
}

func makeLeaf(d Definition, c *compilecache.Cache) (*leafMatcher, error) {
	var sx *surlex.Surlex
	if p := d.Path(); p != "" {
		var err error
		if sx, err = c.Get(p); err != nil {
			return nil, err
		}
	}

	hostRxs, err := compileRxs(d.HostRegexps())
	if err != nil {
		return nil, err
	}

	headerExps := d.HeaderRegexps()
	allHeaderRxs := make(map[string][]*regexp.Regexp)
	for k, exps := range headerExps {
		headerRxs, err := compileRxs(exps)
		if err != nil {
			return nil, err
		}

		allHeaderRxs[http.CanonicalHeaderKey(k)] = headerRxs
	}

	exact := make(map[string]string)
	for k, v := range d.Headers() {
		exact[http.CanonicalHeaderKey(k)] = v
	}

	return &leafMatcher{
		pattern:        d.Path(),
		surlex:         sx,
		method:         d.Method(),
		hostRxs:        hostRxs,
		headersExact:   exact,
		headersRegexps: allHeaderRxs,
		value:          d.Value()}, nil
}

// Make constructs a Matcher based on the provided definitions. The
// definitions that cannot be preprocessed are skipped, and reported in the
// returned errors.
func Make(ds []Definition, o Options) (*Matcher, []*DefinitionError) {
	if o.Cache == nil {
		o.Cache = compilecache.Default()
	}

	if o.Metrics == nil {
		o.Metrics = metrics.Default
	}

	var (
		errors []*DefinitionError
		leaves leafMatchers
	)

	for i, d := range ds {
		l, err := makeLeaf(d, o.Cache)
		if err != nil {
			errors = append(errors, &DefinitionError{i, err})
			continue
		}

		leaves = append(leaves, l)
	}

	// sort leaves in advance, based on their priority
	sort.Stable(leaves)

	return &Matcher{leaves: leaves, options: o}, errors
}

func matchRegexps(rxs []*regexp.Regexp, s string) bool {
	for _, rx := range rxs {
		if !rx.MatchString(s) {
			return false
		}
	}

	return true
}

func matchHeader(h http.Header, key string, check func(string) bool) bool {
	vals, has := h[key]
	if !has {
		return false
	}

	for _, val := range vals {
		if check(val) {
			return true
		}
	}

	return false
}

func matchHeaders(exact map[string]string, hrxs map[string][]*regexp.Regexp, h http.Header) bool {
	for k, v := range exact {
		if !matchHeader(h, k, func(val string) bool { return val == v }) {
			return false
		}
	}

	for k, rxs := range hrxs {
		for _, rx := range rxs {
			if !matchHeader(h, k, rx.MatchString) {
				return false
			}
		}
	}

	return true
}

func (m *Matcher) matchPath(l *leafMatcher, paths []string) (map[string]string, bool) {
	if l.surlex == nil {
		return nil, true
	}

	for _, p := range paths {
		var (
			captures map[string]string
			ok       bool
			err      error
		)

		if m.options.PrefixPath {
			captures, ok, err = l.surlex.Match(p)
		} else {
			captures, ok, err = l.surlex.MatchExact(p)
		}

		// compiled when making the leaf
		if err != nil {
			return nil, false
		}

		if ok {
			return captures, true
		}
	}

	return nil, false
}

func (m *Matcher) matchLeaf(l *leafMatcher, req *http.Request, paths []string) (map[string]string, bool) {
	if l.method != "" && l.method != req.Method {
		return nil, false
	}

	if !matchRegexps(l.hostRxs, req.Host) {
		return nil, false
	}

	if !matchHeaders(l.headersExact, l.headersRegexps, req.Header) {
		return nil, false
	}

	return m.matchPath(l, paths)
}

// candidate paths to match the patterns against
func (m *Matcher) paths(r *http.Request) []string {
	path := httppath.Clean(r.URL.Path)
	if !m.options.IgnoreTrailingSlash || path == "/" {
		return []string{path}
	}

	// in case ignoring trailing slashes, try without and with the
	// trailing slash
	if path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	return []string{path, path + "/"}
}

func (m *Matcher) match(r *http.Request) (*leafMatcher, map[string]string) {
	start := time.Now()
	paths := m.paths(r)
	for _, l := range m.leaves {
		if captures, ok := m.matchLeaf(l, r, paths); ok {
			m.options.Metrics.MeasureMatch(l.pattern, start)
			return l, captures
		}
	}

	return nil, nil
}

// Match tries to match a request against the available definitions. If a
// match is found, returns the associated value, and the values captured by
// the path pattern of the definition, if any.
func (m *Matcher) Match(r *http.Request) (interface{}, map[string]string) {
	l, captures := m.match(r)
	if l == nil {
		return nil, nil
	}

	return l.value, captures
}

func (ls leafMatchers) Len() int      { return len(ls) }
func (ls leafMatchers) Swap(i, j int) { ls[i], ls[j] = ls[j], ls[i] }

func leafWeight(l *leafMatcher) int {
	w := 0

	if l.method != "" {
		w++
	}

	w += len(l.hostRxs)
	w += len(l.headersExact)
	w += len(l.headersRegexps)

	return w
}

func (ls leafMatchers) Less(i, j int) bool {
	hasPathI, hasPathJ := ls[i].surlex != nil, ls[j].surlex != nil
	if hasPathI != hasPathJ {
		return hasPathI
	}

	return leafWeight(ls[i]) > leafWeight(ls[j])
}

func (err *DefinitionError) Error() string {
	if err.Index < 0 {
		return err.Original.Error()
	}

	return fmt.Sprintf("%d: %v", err.Index, err.Original)
}

func (err *DefinitionError) Unwrap() error {
	return err.Original
}
