package store

import (
	"container/list"
	"sync"
	"time"

	"grantintel/pkg/models"
)

// ToolResultCache is C10's Fingerprint-keyed tool-result cache: LRU
// eviction within a configured size cap, per-tool TTL, and a per-tool
// minimum retention count so a high-traffic tool cannot evict every cached
// result of a low-traffic one.
type ToolResultCache struct {
	mu sync.Mutex

	maxEntries    int
	minRetention  int
	defaultTTL    time.Duration
	now           func() time.Time

	order     *list.List // front = most recently used
	elements  map[models.Fingerprint]*list.Element
	toolCount map[string]int // ToolID -> number of cached entries
}

type cacheEntry struct {
	fingerprint models.Fingerprint
	result      models.ToolResult
	expiresAt   time.Time
}

// NewToolResultCache constructs a cache bounded by maxEntries, evicting the
// least-recently-used entry first but never below minRetention entries for
// any single ToolID. defaultTTL applies when a ToolResult carries no
// per-tool override (the registry's Metadata.CacheTTL is applied by the
// caller before Put, not read from here).
func NewToolResultCache(maxEntries, minRetention int, defaultTTL time.Duration, now func() time.Time) *ToolResultCache {
	if now == nil {
		now = time.Now
	}
	return &ToolResultCache{
		maxEntries:   maxEntries,
		minRetention: minRetention,
		defaultTTL:   defaultTTL,
		now:          now,
		order:        list.New(),
		elements:     make(map[models.Fingerprint]*list.Element),
		toolCount:    make(map[string]int),
	}
}

// Get returns the cached ToolResult for fp if present and not expired,
// promoting it to most-recently-used.
func (c *ToolResultCache) Get(fp models.Fingerprint) (models.ToolResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.elements[fp]
	if !ok {
		return models.ToolResult{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.removeElement(elem)
		return models.ToolResult{}, false
	}

	c.order.MoveToFront(elem)
	return entry.result, true
}

// Put inserts or refreshes a cached ToolResult, using ttl if positive and
// falling back to the cache's configured default TTL otherwise.
func (c *ToolResultCache) Put(result models.ToolResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.elements[result.Fingerprint]; exists {
		entry := elem.Value.(*cacheEntry)
		entry.result = result
		entry.expiresAt = c.now().Add(ttl)
		c.order.MoveToFront(elem)
		return
	}

	entry := &cacheEntry{fingerprint: result.Fingerprint, result: result, expiresAt: c.now().Add(ttl)}
	elem := c.order.PushFront(entry)
	c.elements[result.Fingerprint] = elem
	c.toolCount[result.ToolID]++

	c.evictIfNeeded()
}

// evictIfNeeded drops least-recently-used entries until the cache is back
// within maxEntries, skipping any tool already at its minimum retention
// floor. Caller must hold c.mu.
func (c *ToolResultCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.elements) > c.maxEntries {
		victim := c.findEvictionCandidate()
		if victim == nil {
			return // every remaining tool is at its retention floor
		}
		c.removeElement(victim)
	}
}

func (c *ToolResultCache) findEvictionCandidate() *list.Element {
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		entry := elem.Value.(*cacheEntry)
		if c.toolCount[entry.result.ToolID] > c.minRetention {
			return elem
		}
	}
	return nil
}

// removeElement drops a cache entry. Caller must hold c.mu.
func (c *ToolResultCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.elements, entry.fingerprint)
	c.toolCount[entry.result.ToolID]--
	if c.toolCount[entry.result.ToolID] <= 0 {
		delete(c.toolCount, entry.result.ToolID)
	}
}

// Size reports the current entry count.
func (c *ToolResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elements)
}
