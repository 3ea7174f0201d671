/*
Package compilecache implements a process-wide cache of compiled surlex
patterns.

Routing adapters see the same patterns again and again, in every route
update and in every request. The cache stores one compiled *surlex.Surlex
per distinct pattern and returns the same instance to every caller.
Concurrent first lookups of the same pattern compile it only once.

Patterns that fail to compile are not cached, every lookup returns the
compilation error.
*/
package compilecache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/zalando/surlex"
	"github.com/zalando/surlex/logging"
	"github.com/zalando/surlex/macros"
	"github.com/zalando/surlex/metrics"
)

const shardCount = 32

// Options for creating a cache.
type Options struct {

	// Registry used by every compiled pattern. When nil, a registry
	// with the Macros as instance overrides is created.
	Registry *macros.Registry

	// Instance macros, ignored when Registry is set.
	Macros map[string]string

	// Escape policy for the literal text of the patterns.
	Escape surlex.EscapePolicy

	// Maximum number of cached patterns. When reached, an arbitrary
	// entry of the same shard is evicted. 0 means unlimited.
	MaxEntries int

	// Metrics collector, defaults to metrics.Default.
	Metrics metrics.Metrics

	// Log for compilation failures, defaults to the logrus
	// standard logger.
	Log logging.Logger
}

type shard struct {
	mu    sync.RWMutex
	items map[string]*surlex.Surlex
}

// Cache of compiled patterns. It is safe for concurrent use.
type Cache struct {
	options  Options
	registry *macros.Registry
	shards   [shardCount]*shard
	group    singleflight.Group
	entries  atomic.Int64
	maxShard int
}

// New creates a cache.
func New(o Options) *Cache {
	if o.Metrics == nil {
		o.Metrics = metrics.Default
	}

	if o.Log == nil {
		o.Log = &logging.DefaultLog{}
	}

	r := o.Registry
	if r == nil {
		r = macros.New(o.Macros)
	}

	c := &Cache{options: o, registry: r}
	for i := range c.shards {
		c.shards[i] = &shard{items: make(map[string]*surlex.Surlex)}
	}

	if o.MaxEntries > 0 {
		c.maxShard = o.MaxEntries / shardCount
		if c.maxShard == 0 {
			c.maxShard = 1
		}
	}

	return c
}

var defaultCache = New(Options{})

// Default returns the process-wide cache that uses the global macros.
func Default() *Cache {
	return defaultCache
}

func (c *Cache) shardFor(pattern string) *shard {
	return c.shards[xxhash.Sum64String(pattern)%shardCount]
}

func (c *Cache) lookup(pattern string) (*surlex.Surlex, bool) {
	s := c.shardFor(pattern)
	s.mu.RLock()
	defer s.mu.RUnlock()
	sx, ok := s.items[pattern]
	return sx, ok
}

func (c *Cache) store(pattern string, sx *surlex.Surlex) {
	s := c.shardFor(pattern)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[pattern]; ok {
		return
	}

	if c.maxShard > 0 && len(s.items) >= c.maxShard {
		for k := range s.items {
			delete(s.items, k)
			c.entries.Add(-1)
			break
		}
	}

	s.items[pattern] = sx
	c.options.Metrics.UpdateCacheEntries(int(c.entries.Add(1)))
}

func (c *Cache) compile(pattern string) (*surlex.Surlex, error) {
	start := time.Now()
	sx := surlex.NewWithOptions(pattern, surlex.Options{
		Registry: c.registry,
		Escape:   c.options.Escape,
	})

	if _, err := sx.Compile(); err != nil {
		c.options.Metrics.IncCompileErrors()
		c.options.Log.Errorf("Failed to compile pattern %q: %v", pattern, err)
		return nil, fmt.Errorf("failed to compile %q: %w", pattern, err)
	}

	c.options.Metrics.MeasureCompile(start)
	return sx, nil
}

// Get returns the compiled pattern, compiling and storing it on the
// first call.
func (c *Cache) Get(pattern string) (*surlex.Surlex, error) {
	if sx, ok := c.lookup(pattern); ok {
		c.options.Metrics.IncCacheHit()
		return sx, nil
	}

	c.options.Metrics.IncCacheMiss()
	v, err, _ := c.group.Do(pattern, func() (interface{}, error) {
		if sx, ok := c.lookup(pattern); ok {
			return sx, nil
		}

		sx, err := c.compile(pattern)
		if err != nil {
			return nil, err
		}

		c.store(pattern, sx)
		return sx, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*surlex.Surlex), nil
}

// Match compiles the pattern through the cache and matches the subject
// as a prefix.
func (c *Cache) Match(pattern, subject string) (map[string]string, bool, error) {
	sx, err := c.Get(pattern)
	if err != nil {
		return nil, false, err
	}

	return sx.Match(subject)
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	return int(c.entries.Load())
}

// Reset drops every cached pattern. Needed after changing a global
// macro that cached patterns already use.
func (c *Cache) Reset() {
	for _, s := range c.shards {
		s.mu.Lock()
		c.entries.Add(-int64(len(s.items)))
		s.items = make(map[string]*surlex.Surlex)
		s.mu.Unlock()
	}

	c.options.Metrics.UpdateCacheEntries(c.Len())
}

// Registry returns the macro registry shared by the compiled patterns.
func (c *Cache) Registry() *macros.Registry {
	return c.registry
}
