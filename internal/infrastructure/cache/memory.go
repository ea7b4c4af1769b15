package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nutrigrade/backend/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a thread-safe in-memory cache with TTL support
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache.
// Expired entries are purged every cleanupInterval; a zero interval disables the janitor.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	value, found := c.items.Get(key)
	if !found {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value in the cache with TTL; a zero TTL uses the cache default
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// Serialize to JSON and back so readers see the same shape a Redis backend would return
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var storedValue interface{}
	if err := json.Unmarshal(jsonData, &storedValue); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, storedValue, ttl)

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found := c.items.Get(key)
	return found, nil
}

// Size returns the current number of items in the cache, including expired ones not yet purged
func (c *MemoryCache) Size() int {
	return c.items.ItemCount()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.items.Flush()
}
