package surlexpath

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/skipper/filters"
	"github.com/zalando/skipper/filters/filtertest"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/compilecache"
)

func TestPredicateArgs(t *testing.T) {
	for _, ti := range []struct {
		msg  string
		args []interface{}
		err  error
	}{{
		"no args",
		nil,
		ErrInvalidPredicateParameters,
	}, {
		"too many args",
		[]interface{}{"/a", "/b"},
		ErrInvalidPredicateParameters,
	}, {
		"not a string",
		[]interface{}{42.0},
		ErrInvalidPredicateParameters,
	}, {
		"empty pattern",
		[]interface{}{""},
		ErrInvalidPredicateParameters,
	}, {
		"unknown macro",
		[]interface{}{"/<a:UNKNOWN>"},
		surlex.ErrMacroNotFound,
	}, {
		"malformed",
		[]interface{}{"/<a"},
		surlex.ErrMalformedPattern,
	}} {
		t.Run(ti.msg, func(t *testing.T) {
			_, err := New(nil).Create(ti.args)
			if err == nil {
				t.Fatal("failed to fail")
			}

			if !errors.Is(err, ti.err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPredicate(t *testing.T) {
	for _, ti := range []struct {
		msg     string
		prefix  bool
		pattern string
		path    string
		match   bool
	}{{
		msg:     "exact",
		pattern: "/articles/<year:Y>/<slug:s>",
		path:    "/articles/2008/this-article",
		match:   true,
	}, {
		msg:     "exact, longer path",
		pattern: "/articles/<year:Y>/<slug:s>",
		path:    "/articles/2008/this-article/comments",
		match:   false,
	}, {
		msg:     "prefix, longer path",
		prefix:  true,
		pattern: "/articles/<year:Y>/<slug:s>",
		path:    "/articles/2008/this-article/comments",
		match:   true,
	}, {
		msg:     "macro mismatch",
		pattern: "/articles/<year:Y>",
		path:    "/articles/08",
		match:   false,
	}, {
		msg:     "optional group",
		pattern: "/things/edit/(<slug>/)",
		path:    "/things/edit/",
		match:   true,
	}, {
		msg:     "cleaned path",
		pattern: "/users/<id:#>",
		path:    "/groups/../users//42",
		match:   true,
	}} {
		t.Run(ti.msg, func(t *testing.T) {
			s := New(compilecache.New(compilecache.Options{}))
			if ti.prefix {
				s = NewPrefix(nil)
			}

			p, err := s.Create([]interface{}{ti.pattern})
			require.NoError(t, err)

			r := httptest.NewRequest("GET", "/", nil)
			r.URL.Path = ti.path
			assert.Equal(t, ti.match, p.Match(r))
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, PredicateName, New(nil).Name())
	assert.Equal(t, PrefixPredicateName, NewPrefix(nil).Name())
	assert.Equal(t, FilterName, NewCaptures(nil).Name())
}

func TestFilterArgs(t *testing.T) {
	for _, args := range [][]interface{}{
		nil,
		{42.0},
		{""},
		{"/a", 3.0},
		{"/a", "X-", "extra"},
	} {
		_, err := NewCaptures(nil).CreateFilter(args)
		if err != filters.ErrInvalidFilterParameters {
			t.Errorf("%v: unexpected error: %v", args, err)
		}
	}

	_, err := NewCaptures(nil).CreateFilter([]interface{}{"/<a:UNKNOWN>"})
	assert.ErrorIs(t, err, surlex.ErrMacroNotFound)
}

func TestFilterCaptures(t *testing.T) {
	c := compilecache.New(compilecache.Options{})
	f, err := NewCaptures(c).CreateFilter([]interface{}{"/users/<id:#>(/<action>)"})
	require.NoError(t, err)

	r, err := http.NewRequest("GET", "https://www.example.org/users/42/roles", nil)
	require.NoError(t, err)

	ctx := &filtertest.Context{FRequest: r, FStateBag: make(map[string]interface{})}
	f.Request(ctx)
	assert.Equal(t, map[string]string{"id": "42", "action": "roles"}, Captures(ctx))
	assert.Empty(t, r.Header.Get("X-User-id"))

	f.Response(ctx)
}

func TestFilterNoMatch(t *testing.T) {
	f, err := NewCaptures(nil).CreateFilter([]interface{}{"/users/<id:#>"})
	require.NoError(t, err)

	r, err := http.NewRequest("GET", "https://www.example.org/groups/42", nil)
	require.NoError(t, err)

	ctx := &filtertest.Context{FRequest: r, FStateBag: make(map[string]interface{})}
	f.Request(ctx)
	assert.Nil(t, Captures(ctx))
	_, ok := ctx.FStateBag[StateBagKey]
	assert.False(t, ok)
}

func TestFilterHeaders(t *testing.T) {
	f, err := NewCaptures(nil).CreateFilter([]interface{}{"/orders/<order:u>/items/<item:#>", "X-Order-"})
	require.NoError(t, err)

	r, err := http.NewRequest("GET", "https://www.example.org/orders/123e4567-e89b-12d3-a456-426614174000/items/7", nil)
	require.NoError(t, err)

	ctx := &filtertest.Context{FRequest: r, FStateBag: make(map[string]interface{})}
	f.Request(ctx)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", r.Header.Get("X-Order-Order"))
	assert.Equal(t, "7", r.Header.Get("X-Order-Item"))
}

func TestSharedCache(t *testing.T) {
	c := compilecache.New(compilecache.Options{})
	_, err := New(c).Create([]interface{}{"/a/<b>"})
	require.NoError(t, err)
	_, err = NewCaptures(c).CreateFilter([]interface{}{"/a/<b>"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}
