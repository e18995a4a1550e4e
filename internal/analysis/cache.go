package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an analysis report stays fresh.
const DefaultTTL = time.Hour

// CacheObserver receives cache hit and miss events. *metrics.Registry
// satisfies it.
type CacheObserver interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// Cache memoizes analysis reports per keyword. Concurrent misses for the
// same keyword share one compute.
type Cache struct {
	items    *gocache.Cache
	group    singleflight.Group
	gen      atomic.Uint64
	observer CacheObserver

	mu     sync.Mutex
	keyGen map[string]uint64
}

// NewCache creates a cache with the fixed DefaultTTL.
func NewCache(observer CacheObserver) *Cache {
	return newCache(DefaultTTL, observer)
}

func newCache(ttl time.Duration, observer CacheObserver) *Cache {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &Cache{
		items:    gocache.New(ttl, cleanup),
		observer: observer,
		keyGen:   make(map[string]uint64),
	}
}

// GetOrCompute returns the fresh report for keyword, calling compute only
// on a miss. Errors are returned to every waiter and never cached.
func (c *Cache) GetOrCompute(ctx context.Context, keyword string, compute func(context.Context) (*Report, error)) (*Report, error) {
	if r, ok := c.get(keyword); ok {
		c.hit()
		return r, nil
	}
	c.miss()

	v, err, _ := c.group.Do(keyword, func() (any, error) {
		if r, ok := c.get(keyword); ok {
			return r, nil
		}
		gen, keyGen := c.gen.Load(), c.keyGeneration(keyword)
		r, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		// A flush or invalidation while computing means the report may be
		// stale; hand it back but do not keep it.
		c.mu.Lock()
		if c.gen.Load() == gen && c.keyGen[keyword] == keyGen {
			c.items.SetDefault(keyword, r)
		}
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (c *Cache) get(keyword string) (*Report, bool) {
	v, ok := c.items.Get(keyword)
	if !ok {
		return nil, false
	}
	return v.(*Report), true
}

func (c *Cache) keyGeneration(keyword string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyGen[keyword]
}

// Invalidate drops the cached report for keyword. A compute already in
// flight for it finishes for its callers but is not stored, and later
// callers start a fresh one.
func (c *Cache) Invalidate(keyword string) {
	c.mu.Lock()
	c.keyGen[keyword]++
	c.items.Delete(keyword)
	c.mu.Unlock()
	c.group.Forget(keyword)
}

// Flush drops every cached report.
func (c *Cache) Flush() {
	c.gen.Add(1)
	c.items.Flush()
}

// Len returns the number of cached reports, expired ones included until
// the janitor removes them.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

func (c *Cache) hit() {
	if c.observer != nil {
		c.observer.RecordCacheHit("analysis")
	}
}

func (c *Cache) miss() {
	if c.observer != nil {
		c.observer.RecordCacheMiss("analysis")
	}
}
