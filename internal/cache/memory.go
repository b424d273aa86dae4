package cache

import (
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCache is the in-process L1. Expiry is checked lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	metrics *CacheMetrics
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		metrics: NewCacheMetrics(),
	}
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	c.metrics.RecordSet()
}

func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found {
		c.metrics.RecordMiss()
		return nil, false
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.metrics.RecordMiss()
		return nil, false
	}

	c.metrics.RecordHit()
	return entry.value, true
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.metrics.RecordDelete()
}

func (c *MemoryCache) DeletePattern(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if matched, err := path.Match(pattern, key); err == nil && matched {
			delete(c.entries, key)
		}
	}
	c.metrics.RecordDelete()
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *MemoryCache) Stats() map[string]interface{} {
	metrics := c.metrics.GetStats()

	return map[string]interface{}{
		"entries":  c.Len(),
		"hits":     metrics.Hits,
		"misses":   metrics.Misses,
		"sets":     metrics.Sets,
		"deletes":  metrics.Deletes,
		"hit_rate": c.metrics.HitRate(),
	}
}
