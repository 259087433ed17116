package cache

import "sort"

// Cache is a generic LRU cache with soft limit and eviction callback.
type Cache[K comparable, V any] struct {
	entries   map[K]*cacheEntry[V]
	softLimit int
	tick      int64 // Monotonic access counter
	onEvict   func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// cacheEntry holds a cached value with its access time.
type cacheEntry[V any] struct {
	value V
	atime int64 // Access time (tick value)
}

// New creates a new cache with the given soft limit.
// A softLimit of 0 means unlimited. onEvict may be nil.
func New[K comparable, V any](softLimit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*cacheEntry[V]),
		softLimit: softLimit,
		onEvict:   onEvict,
	}
}

// Get retrieves a value and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	entry.atime = c.tick
	return entry.value, true
}

// Peek retrieves a value without touching its access time or the
// hit counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores a value. A previous value under key is replaced silently.
// If the cache exceeds softLimit after insertion, oldest entries are
// evicted through the eviction callback. The entry just stored is never
// among them.
func (c *Cache[K, V]) Set(key K, value V) {
	c.tick++
	c.entries[key] = &cacheEntry[V]{value: value, atime: c.tick}

	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// Delete removes an entry and returns its value.
func (c *Cache[K, V]) Delete(key K) (V, bool) {
	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.entries, key)
	return entry.value, true
}

// Clear removes all entries and returns their values.
func (c *Cache[K, V]) Clear() []V {
	values := make([]V, 0, len(c.entries))
	for _, entry := range c.entries {
		values = append(values, entry.value)
	}
	c.entries = make(map[K]*cacheEntry[V])
	c.tick = 0
	return values
}

// Keys returns the keys ordered from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	type keyed struct {
		key   K
		atime int64
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{k, e.atime})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].atime < all[j].atime })
	keys := make([]K, len(all))
	for i, k := range all {
		keys[i] = k.key
	}
	return keys
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Capacity returns the soft limit of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.softLimit
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictOldest removes entries until the cache is at 75% of softLimit.
func (c *Cache[K, V]) evictOldest() {
	targetSize := c.softLimit * 3 / 4
	if targetSize < 1 {
		targetSize = 1
	}
	toEvict := len(c.entries) - targetSize
	if toEvict <= 0 {
		return
	}

	keys := c.Keys()
	for _, key := range keys[:toEvict] {
		entry := c.entries[key]
		delete(c.entries, key)
		c.evictions++
		if c.onEvict != nil {
			c.onEvict(key, entry.value)
		}
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit, 0 when unlimited.
	Capacity int
	// Hits is the number of Get calls that found an entry.
	Hits uint64
	// Misses is the number of Get calls that found nothing.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries removed by the soft limit.
	Evictions uint64
}
