// Package cache holds transcription results in memory, keyed by
// normalized URL, with lazy TTL expiration.
package cache

import (
	"sync"
	"time"

	"github.com/viettran1502/vidscribe/models"
)

type entry struct {
	result   models.ExtractionResult
	storedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached result for key. Entries older than the TTL are
// treated as absent and removed on the spot; there is no background
// sweeper.
func (c *Cache) Get(key string) (models.ExtractionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return models.ExtractionResult{}, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return models.ExtractionResult{}, false
	}
	return e.result, true
}

func (c *Cache) Put(key string, result models.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{result: result, storedAt: c.now()}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetClock overrides the time source. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
