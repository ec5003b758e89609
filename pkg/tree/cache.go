package tree

import (
	"reflect"
	"sync"

	"github.com/go-drift/flow/pkg/core"
)

// RenderCache memoizes renders of equal component values within one pass.
//
// Entries are bucketed by variant and matched with core.Equal. The cache
// admits at most capacity entries between resets; once full, further misses
// render without being stored. The tree resets it at the start of every pass,
// so a hit never outlives the pass that stored it.
type RenderCache struct {
	mu       sync.Mutex
	capacity int
	size     int
	buckets  map[reflect.Type][]cacheEntry
	hits     int
	misses   int
}

type cacheEntry struct {
	component core.Component
	output    core.Output
}

// NewRenderCache creates an empty cache admitting up to capacity entries.
func NewRenderCache(capacity int) *RenderCache {
	return &RenderCache{
		capacity: capacity,
		buckets:  make(map[reflect.Type][]cacheEntry),
	}
}

// Get returns the cached output for a component equal to c, or calls render
// and caches its result.
//
// If the cache is nil, render is invoked directly. The lock is not held while
// render runs.
func (c *RenderCache) Get(comp core.Component, render func() core.Output) core.Output {
	if c == nil {
		return render()
	}
	key := reflect.TypeOf(comp)

	c.mu.Lock()
	if out, ok := c.lookupLocked(key, comp); ok {
		c.hits++
		c.mu.Unlock()
		return out
	}
	c.misses++
	c.mu.Unlock()

	out := render()

	c.mu.Lock()
	if _, ok := c.lookupLocked(key, comp); !ok && c.size < c.capacity {
		c.buckets[key] = append(c.buckets[key], cacheEntry{component: core.Duplicate(comp), output: out})
		c.size++
	}
	c.mu.Unlock()
	return out
}

func (c *RenderCache) lookupLocked(key reflect.Type, comp core.Component) (core.Output, bool) {
	for _, e := range c.buckets[key] {
		if core.Equal(e.component, comp) {
			return e.output, true
		}
	}
	return core.Output{}, false
}

// Reset drops every entry and zeroes the counters.
func (c *RenderCache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	clear(c.buckets)
	c.size = 0
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()
}

// Len returns the number of stored entries.
func (c *RenderCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counts since the last reset.
func (c *RenderCache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
