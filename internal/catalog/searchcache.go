package catalog

import (
	"strings"
	"sync"
)

// QueryCache is the small bounded cache in front of the manual search path.
// It suppresses duplicate round trips while the user types; capacity is
// fixed and the oldest entry is evicted first. It is owned by the handler
// instance, never process-wide.
type QueryCache struct {
	mu      sync.Mutex
	cap     int
	order   []string
	entries map[string][]ScoredItem
}

func NewQueryCache(capacity int) *QueryCache {
	if capacity <= 0 {
		capacity = 32
	}
	return &QueryCache{
		cap:     capacity,
		entries: make(map[string][]ScoredItem, capacity),
	}
}

func (c *QueryCache) Get(term string) ([]ScoredItem, bool) {
	key := cacheKey(term)
	c.mu.Lock()
	defer c.mu.Unlock()
	results, ok := c.entries[key]
	return results, ok
}

func (c *QueryCache) Put(term string, results []ScoredItem) {
	key := cacheKey(term)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = results
		return
	}
	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = results
}

// Len reports the number of cached queries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
