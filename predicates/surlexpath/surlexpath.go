/*
Package surlexpath implements a skipper predicate and a skipper filter that
match the request path with surlex patterns.

The Surlex predicate matches the whole request path:

	articles: Surlex("/articles/<year:Y>/<slug:s>") -> "https://articles.example.org";

The SurlexPrefix predicate only needs to match the beginning of the path:

	docs: SurlexPrefix("/docs/<version=v\\d+>/") -> "https://docs.example.org";

The surlexCaptures filter matches the request path and stores the captured
values in the state bag of the filter context, under StateBagKey. With a
second argument, every captured value is also set as a request header, named
with the argument as prefix:

	users: Path("/users/*_") -> surlexCaptures("/users/<id:#>", "X-User-") -> "https://users.example.org";

The patterns are compiled through a compilecache.Cache, so the same pattern
used in many routes is compiled only once.
*/
package surlexpath

import (
	"errors"
	"net/http"

	"github.com/dimfeld/httppath"
	"github.com/zalando/skipper/filters"
	"github.com/zalando/skipper/routing"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/compilecache"
)

const (
	// PredicateName is the name of the exact path predicate in eskip.
	PredicateName = "Surlex"

	// PrefixPredicateName is the name of the path prefix predicate in eskip.
	PrefixPredicateName = "SurlexPrefix"

	// FilterName is the name of the captures filter in eskip.
	FilterName = "surlexCaptures"

	// StateBagKey is the key of the captured values, a map[string]string,
	// in the state bag.
	StateBagKey = "surlex:captures"
)

// ErrInvalidPredicateParameters is returned when the predicate is not
// created with a single string argument.
var ErrInvalidPredicateParameters = errors.New("invalid predicate parameters")

type (
	spec struct {
		cache  *compilecache.Cache
		prefix bool
	}

	predicate struct {
		surlex *surlex.Surlex
		prefix bool
	}

	filterSpec struct {
		cache *compilecache.Cache
	}

	filter struct {
		surlex       *surlex.Surlex
		headerPrefix string
	}
)

func cacheOrDefault(c *compilecache.Cache) *compilecache.Cache {
	if c == nil {
		return compilecache.Default()
	}

	return c
}

// New creates the spec of the Surlex predicate, matching the whole
// request path. When the cache is nil, compilecache.Default() is used.
func New(c *compilecache.Cache) routing.PredicateSpec {
	return &spec{cache: cacheOrDefault(c)}
}

// NewPrefix creates the spec of the SurlexPrefix predicate.
func NewPrefix(c *compilecache.Cache) routing.PredicateSpec {
	return &spec{cache: cacheOrDefault(c), prefix: true}
}

// NewCaptures creates the spec of the surlexCaptures filter.
func NewCaptures(c *compilecache.Cache) filters.Spec {
	return &filterSpec{cache: cacheOrDefault(c)}
}

func (s *spec) Name() string {
	if s.prefix {
		return PrefixPredicateName
	}

	return PredicateName
}

func (s *spec) Create(args []interface{}) (routing.Predicate, error) {
	if len(args) != 1 {
		return nil, ErrInvalidPredicateParameters
	}

	pattern, ok := args[0].(string)
	if !ok || pattern == "" {
		return nil, ErrInvalidPredicateParameters
	}

	sx, err := s.cache.Get(pattern)
	if err != nil {
		return nil, err
	}

	return &predicate{surlex: sx, prefix: s.prefix}, nil
}

func match(sx *surlex.Surlex, prefix bool, r *http.Request) (map[string]string, bool) {
	path := httppath.Clean(r.URL.Path)

	var (
		captures map[string]string
		ok       bool
		err      error
	)

	if prefix {
		captures, ok, err = sx.Match(path)
	} else {
		captures, ok, err = sx.MatchExact(path)
	}

	// compiled when created
	if err != nil {
		return nil, false
	}

	return captures, ok
}

func (p *predicate) Match(r *http.Request) bool {
	_, ok := match(p.surlex, p.prefix, r)
	return ok
}

func (s *filterSpec) Name() string { return FilterName }

func (s *filterSpec) CreateFilter(args []interface{}) (filters.Filter, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, filters.ErrInvalidFilterParameters
	}

	pattern, ok := args[0].(string)
	if !ok || pattern == "" {
		return nil, filters.ErrInvalidFilterParameters
	}

	var headerPrefix string
	if len(args) == 2 {
		if headerPrefix, ok = args[1].(string); !ok {
			return nil, filters.ErrInvalidFilterParameters
		}
	}

	sx, err := s.cache.Get(pattern)
	if err != nil {
		return nil, err
	}

	return &filter{surlex: sx, headerPrefix: headerPrefix}, nil
}

// Request stores the captured values in the state bag. It matches the
// beginning of the path, so it can be combined with any path predicate.
func (f *filter) Request(ctx filters.FilterContext) {
	r := ctx.Request()
	captures, ok := match(f.surlex, true, r)
	if !ok {
		return
	}

	ctx.StateBag()[StateBagKey] = captures
	if f.headerPrefix == "" {
		return
	}

	for name, value := range captures {
		r.Header.Set(f.headerPrefix+name, value)
	}
}

func (f *filter) Response(filters.FilterContext) {}

// Captures returns the values stored by the surlexCaptures filter, or nil.
func Captures(ctx filters.FilterContext) map[string]string {
	c, _ := ctx.StateBag()[StateBagKey].(map[string]string)
	return c
}
