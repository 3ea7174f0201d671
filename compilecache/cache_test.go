package compilecache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/logging/loggingtest"
	"github.com/zalando/surlex/macros"
	"github.com/zalando/surlex/metrics"
	"github.com/zalando/surlex/metrics/metricstest"
)

func TestGetReturnsSameInstance(t *testing.T) {
	m := &metricstest.MockMetrics{}
	c := New(Options{Metrics: m})

	first, err := c.Get("/articles/<year:Y>/<slug:s>")
	require.NoError(t, err)

	second, err := c.Get("/articles/<year:Y>/<slug:s>")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())

	hits, _ := m.Counter(metrics.KeyCacheHit)
	misses, _ := m.Counter(metrics.KeyCacheMiss)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	entries, ok := m.Gauge(metrics.KeyCacheEntries)
	require.True(t, ok)
	assert.Equal(t, float64(1), entries)
}

func TestCompilesOnceConcurrently(t *testing.T) {
	m := &metricstest.MockMetrics{}
	c := New(Options{Metrics: m})

	const pattern = "/users/<id:#>(/<action>)"
	results := make([]*surlex.Surlex, 64)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			sx, err := c.Get(pattern)
			results[i] = sx
			return err
		})
	}

	require.NoError(t, g.Wait())
	for _, sx := range results {
		assert.Same(t, results[0], sx)
	}

	compiles, ok := m.Measure(metrics.KeyCompile)
	require.True(t, ok)
	assert.Len(t, compiles, 1)
}

func TestCompileErrorsAreNotCached(t *testing.T) {
	m := &metricstest.MockMetrics{}
	tl := loggingtest.New()
	defer tl.Close()

	c := New(Options{Metrics: m, Log: tl})

	for i := 0; i < 2; i++ {
		_, err := c.Get("/<year:UNKNOWN>")
		require.Error(t, err)
		assert.True(t, errors.Is(err, surlex.ErrMacroNotFound))
	}

	_, err := c.Get("/<unterminated")
	assert.ErrorIs(t, err, surlex.ErrMalformedPattern)

	assert.Equal(t, 0, c.Len())
	failed, _ := m.Counter(metrics.KeyCompileError)
	assert.Equal(t, int64(3), failed)
	require.NoError(t, tl.WaitForN("Failed to compile pattern", 3, time.Second))
}

func TestMatch(t *testing.T) {
	c := New(Options{})

	captures, ok, err := c.Match("/articles/<year>/<slug>/", "/articles/2008/this-article/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"year": "2008", "slug": "this-article"}, captures)

	_, ok, err = c.Match("/articles/<year:Y>/", "/articles/08/")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Match("/<x=(>", "/")
	assert.Error(t, err)
}

func TestOptionsReachCompiledPatterns(t *testing.T) {
	c := New(Options{
		Macros: map[string]string{"lang": "[a-z]{2}"},
		Escape: surlex.EscapeDot,
	})

	sx, err := c.Get("/<l:lang>/a+b.html")
	require.NoError(t, err)

	regex, err := sx.Translate()
	require.NoError(t, err)
	assert.Equal(t, `/(?P<l>[a-z]{2})/a+b\.html`, regex)
	assert.Same(t, c.Registry(), sx.Registry())

	r := macros.NewWithGlobal(nil, map[string]string{"v": "v[0-9]"})
	c = New(Options{Registry: r})
	sx, err = c.Get("/<version:v>")
	require.NoError(t, err)
	assert.Same(t, r, sx.Registry())
}

func TestMaxEntries(t *testing.T) {
	c := New(Options{MaxEntries: shardCount})
	for i := 0; i < 10*shardCount; i++ {
		_, err := c.Get(fmt.Sprintf("/items/%d/<id>", i))
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, c.Len(), shardCount)
	assert.Greater(t, c.Len(), 0)
}

func TestReset(t *testing.T) {
	m := &metricstest.MockMetrics{}
	c := New(Options{Metrics: m})
	first, err := c.Get("/<a>")
	require.NoError(t, err)
	_, err = c.Get("/<b>")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	entries, _ := m.Gauge(metrics.KeyCacheEntries)
	assert.Equal(t, float64(0), entries)

	again, err := c.Get("/<a>")
	require.NoError(t, err)
	assert.NotSame(t, first, again)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())

	sx, err := Default().Get("/<year:Y>")
	require.NoError(t, err)
	_, ok, err := sx.Match("/2024")
	require.NoError(t, err)
	assert.True(t, ok)
}
