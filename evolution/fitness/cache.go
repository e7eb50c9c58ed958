package fitness

import "sync"

// Cache memoizes fitness results keyed by bytecode hash. Identical
// bytecode always scores identically under the same evaluator, so a
// hit skips the whole simulation batch. Eviction is FIFO with a fixed
// capacity; the population revisits recent genomes far more often than
// old ones, so insertion order is a good enough recency proxy.
type Cache struct {
	mu       sync.RWMutex
	entries  map[uint64]*FitnessMetrics
	order    []uint64
	capacity int

	hits   uint64
	misses uint64
}

// DefaultCacheSize bounds memory at roughly one generation of history.
const DefaultCacheSize = 4096

// NewCache creates a bounded fitness cache.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		entries:  make(map[uint64]*FitnessMetrics, capacity),
		order:    make([]uint64, 0, capacity),
		capacity: capacity,
	}
}

// Get returns the cached metrics for a bytecode hash.
func (c *Cache) Get(key uint64) (*FitnessMetrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return m, ok
}

// Put stores metrics, evicting the oldest entry at capacity.
func (c *Cache) Put(key uint64, m *FitnessMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = m
		return
	}
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = m
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*FitnessMetrics, c.capacity)
	c.order = c.order[:0]
	c.hits = 0
	c.misses = 0
}
