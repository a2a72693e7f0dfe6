package cache

import (
	"context"
	"sync"
	"time"
)

// Cache defines a minimal key-value cache API with optional TTL per entry.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. If ttl <= 0, the entry does not expire.
	Set(key K, value V, ttl time.Duration)

	Delete(key K)

	// Len returns the number of non-expired items currently stored.
	Len() int

	Clear()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// TTLCache is a map-backed, goroutine-safe cache with per-item expiry.
// There is no background janitor; expired entries are dropped lazily.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	now   func() time.Time
}

// New returns an empty TTLCache.
func New[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: make(map[K]entry[V]),
		now:   time.Now,
	}
}

func (c *TTLCache[K, V]) live(e entry[V]) bool {
	return e.expiresAt.IsZero() || c.now().Before(e.expiresAt)
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || !c.live(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: exp}
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if !c.live(e) {
			delete(c.items, k)
		}
	}
	return len(c.items)
}

func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
}

var _ Cache[string, int] = (*TTLCache[string, int])(nil)

// Loader memoizes the result of a fetch function for ttl. Failed loads are
// not cached. Concurrent Get calls on a miss share one load.
type Loader[V any] struct {
	mu    sync.Mutex
	cache *TTLCache[struct{}, V]
	ttl   time.Duration
	load  func(ctx context.Context) (V, error)
}

// NewLoader returns a Loader around load. A ttl <= 0 caches until Invalidate.
func NewLoader[V any](ttl time.Duration, load func(ctx context.Context) (V, error)) *Loader[V] {
	return &Loader[V]{
		cache: New[struct{}, V](),
		ttl:   ttl,
		load:  load,
	}
}

// Get returns the cached value or loads a fresh one.
func (l *Loader[V]) Get(ctx context.Context) (V, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.cache.Get(struct{}{}); ok {
		return v, nil
	}
	v, err := l.load(ctx)
	if err != nil {
		return v, err
	}
	l.cache.Set(struct{}{}, v, l.ttl)
	return v, nil
}

// Invalidate forces the next Get to load.
func (l *Loader[V]) Invalidate() {
	l.cache.Clear()
}
