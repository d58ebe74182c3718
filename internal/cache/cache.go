package cache

// Cache maps content keys to values created on first lookup.
type Cache[K comparable, V any] struct {
	entries map[K]V

	hits   uint64
	misses uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// GetOrCreate returns the cached value for key, or calls create once and
// stores its result when create reports ok. A value create rejects is
// returned but not stored, so the next lookup calls create again.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, bool)) V {
	if v, ok := c.entries[key]; ok {
		c.hits++
		return v
	}
	c.misses++
	v, ok := create()
	if ok {
		c.entries[key] = v
	}
	return v
}

// Clear removes all entries. Counters are kept.
func (c *Cache[K, V]) Clear() {
	clear(c.entries)
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	s := Stats{Len: len(c.entries), Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups served from the cache.
	Hits uint64
	// Misses is the number of lookups that called create.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
}
