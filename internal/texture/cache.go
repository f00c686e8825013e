package texture

import "sync"

// Cache memoizes Results by normalized source path. A texture referenced
// by several materials is decoded once.
type Cache struct {
	mu      sync.Mutex
	results map[string]Result
	hits    int
	misses  int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{results: make(map[string]Result)}
}

// Lookup returns the Result stored for key, calling resolve to fill it on
// the first request. resolve runs with the cache locked.
func (c *Cache) Lookup(key string, resolve func(string) Result) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.results[key]; ok {
		c.hits++
		return r
	}
	c.misses++
	r := resolve(key)
	c.results[key] = r
	return r
}

// Len returns the number of distinct textures seen.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Stats returns how many lookups were served from and added to the cache.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
