package nasa

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedSource wraps a NASASource with an in-memory LRU cache whose entries
// expire after a fixed TTL.
type CachedSource struct {
	inner   domain.NASASource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a NASA source.
func NewCachedSource(inner domain.NASASource, ttl time.Duration, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedSource) WaterQuality(ctx context.Context, river domain.River) (domain.WaterQuality, error) {
	return cached(ctx, c, domain.DatasetWater, fmt.Sprintf("water_quality_%s", river), func() (domain.WaterQuality, error) {
		return c.inner.WaterQuality(ctx, river)
	})
}

func (c *CachedSource) Satellite(ctx context.Context, river domain.River) (domain.SatelliteData, error) {
	return cached(ctx, c, domain.DatasetSatellite, fmt.Sprintf("satellite_%s", river), func() (domain.SatelliteData, error) {
		return c.inner.Satellite(ctx, river)
	})
}

func (c *CachedSource) Weather(ctx context.Context, river domain.River) (domain.WeatherData, error) {
	return cached(ctx, c, domain.DatasetWeather, fmt.Sprintf("weather_%s", river), func() (domain.WeatherData, error) {
		return c.inner.Weather(ctx, river)
	})
}

// cached serves key from the cache or loads and stores it. Errors are never cached.
func cached[V any](ctx context.Context, c *CachedSource, dataset domain.Dataset, key string, load func() (V, error)) (V, error) {
	if v, ok := c.cache.get(key); ok {
		if typed, ok := v.(V); ok {
			c.metrics.NASACache.WithLabelValues(string(dataset), "hit").Inc()
			return typed, nil
		}
	}
	c.metrics.NASACache.WithLabelValues(string(dataset), "miss").Inc()

	if err := ctx.Err(); err != nil {
		var zero V
		return zero, err
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.cache.put(key, v)
	return v, nil
}

// lruCache is a thread-safe LRU cache with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
