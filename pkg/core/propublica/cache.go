package propublica

import (
	"sync"
	"time"

	"grantintel/pkg/models"
)

// ttlCache is a simple mutex-guarded TTL cache keyed on EIN, mirroring the
// teacher's ticker-cache locking pattern (pkg/core/edgar/parser.go's
// tickerCache/tickerMutex) rather than pulling in a third-party cache
// library for what is a handful of map operations.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	record    models.EnrichmentRecord
	expiresAt time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *ttlCache) get(ein string) (models.EnrichmentRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ein]
	if !ok {
		return models.EnrichmentRecord{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, ein)
		return models.EnrichmentRecord{}, false
	}
	return e.record, true
}

func (c *ttlCache) set(ein string, rec models.EnrichmentRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[ein] = cacheEntry{
		record:    rec,
		expiresAt: c.now().Add(c.ttl),
	}
}
