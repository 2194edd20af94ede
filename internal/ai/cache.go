package ai

import (
	"sync"
	"time"

	"github.com/lekanlabs/taxmata/internal/model"
)

// cacheEntry represents a cached AI verdict.
type cacheEntry struct {
	expiry  time.Time
	verdict model.ClassificationVerdict
}

// verdictCache provides thread-safe caching for AI verdicts keyed by
// transaction hash. Advisory only: entries are rebuildable and never a
// source of truth.
type verdictCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newVerdictCache creates a new cache with the specified TTL.
func newVerdictCache(ttl time.Duration) *verdictCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &verdictCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a verdict from the cache if it exists and hasn't expired.
func (c *verdictCache) get(key string) (model.ClassificationVerdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return model.ClassificationVerdict{}, false
	}

	if time.Now().After(entry.expiry) {
		return model.ClassificationVerdict{}, false
	}

	return entry.verdict, true
}

// set stores a verdict in the cache.
func (c *verdictCache) set(key string, verdict model.ClassificationVerdict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		verdict: verdict,
		expiry:  time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *verdictCache) cleanup() {
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
func (c *verdictCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *verdictCache) Close() {
	close(c.stopCh)
}
