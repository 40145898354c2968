package llm

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/tendnotes/tend/internal/service"
)

// cacheEntry represents a cached classification result.
type cacheEntry struct {
	expiry time.Time
	result service.TinyClassification
}

// classificationCache provides thread-safe caching for remote tiny-task
// classifications, keyed by a hash of the classified text.
type classificationCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// cacheKey hashes the classified text so raw captures never sit in memory
// as map keys.
func cacheKey(title, context string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + context))
	return fmt.Sprintf("%x", sum)
}

// newClassificationCache creates a new cache with the specified TTL.
func newClassificationCache(ttl time.Duration) *classificationCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &classificationCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a result from the cache if it exists and hasn't expired.
func (c *classificationCache) get(key string) (service.TinyClassification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return service.TinyClassification{}, false
	}

	if time.Now().After(entry.expiry) {
		return service.TinyClassification{}, false
	}

	return entry.result, true
}

// set stores a result in the cache.
func (c *classificationCache) set(key string, result service.TinyClassification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result: result,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *classificationCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *classificationCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *classificationCache) Close() {
	close(c.stopCh)
}
