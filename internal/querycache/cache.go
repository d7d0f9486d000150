package querycache

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds read results keyed by collection and parameter tuple.
// Entries are only ever dropped (invalidate-and-refetch), never patched in place.
type Cache struct {
	items *gocache.Cache

	mu      sync.Mutex
	pending map[string]int
}

// New creates a cache whose entries expire after ttl
func New(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{
		items:   gocache.New(ttl, cleanupInterval),
		pending: make(map[string]int),
	}
}

// Key joins a collection name and a parameter tuple
func Key(collection, params string) string {
	return collection + "|" + params
}

// Get returns a cached value
func (c *Cache) Get(collection, params string) (interface{}, bool) {
	return c.items.Get(Key(collection, params))
}

// Set stores a value with the default TTL
func (c *Cache) Set(collection, params string, value interface{}) {
	c.items.SetDefault(Key(collection, params), value)
}

// Fetch returns the cached value or loads, stores and returns it.
// Loader errors are not cached.
func Fetch[V any](c *Cache, collection, params string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(collection, params); ok {
		if typed, ok := v.(V); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(collection, params, v)
	return v, nil
}

// Invalidate drops every entry of the given collections
func (c *Cache) Invalidate(collections ...string) {
	for key := range c.items.Items() {
		for _, collection := range collections {
			if strings.HasPrefix(key, collection+"|") {
				c.items.Delete(key)
				break
			}
		}
	}
}

// Flush drops everything
func (c *Cache) Flush() {
	c.items.Flush()
}

// ItemCount returns the number of live entries
func (c *Cache) ItemCount() int {
	return c.items.ItemCount()
}

// Begin marks a mutation as in flight. The returned func clears the mark.
// Overlapping mutations with the same key are counted, not serialized.
func (c *Cache) Begin(mutationKey string) (done func()) {
	c.mu.Lock()
	c.pending[mutationKey]++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.pending[mutationKey]--
			if c.pending[mutationKey] <= 0 {
				delete(c.pending, mutationKey)
			}
		})
	}
}

// Pending reports whether a mutation with this key is in flight
func (c *Cache) Pending(mutationKey string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[mutationKey] > 0
}
