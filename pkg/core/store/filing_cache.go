package store

import (
	"fmt"
	"sync"

	"grantintel/pkg/models"
)

// filingKey is the C10 filing-cache key: (EIN, tax year, form variant).
type filingKey struct {
	EIN     string
	TaxYear int
	Variant models.FormVariant
}

// FilingCache stores parsed Filing records keyed by (EIN, tax year,
// variant). Parsed filings are immutable once stored — per §4.10 eviction
// never removes a parsed Filing, only the raw XML provenance it was parsed
// from may be re-fetched — so Put enforces write-once semantics rather than
// overwrite, the document-level compare-and-set §4.10 asks for at the
// single-writer-per-key granularity.
type FilingCache struct {
	mu    sync.RWMutex
	byKey map[filingKey]models.Filing
}

// NewFilingCache returns an empty filing cache.
func NewFilingCache() *FilingCache {
	return &FilingCache{byKey: make(map[filingKey]models.Filing)}
}

// Put stores a parsed Filing. A second Put for the same (EIN, tax year,
// variant) is rejected rather than silently overwriting, since parsed
// filings are immutable once recorded.
func (c *FilingCache) Put(f models.Filing) error {
	key := filingKey{EIN: f.EIN, TaxYear: f.TaxYear, Variant: f.Variant}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byKey[key]; exists {
		return fmt.Errorf("filing cache: (%s, %d, %s) already recorded", f.EIN, f.TaxYear, f.Variant)
	}
	c.byKey[key] = f
	return nil
}

// Get retrieves a previously parsed Filing by its natural key.
func (c *FilingCache) Get(ein string, taxYear int, variant models.FormVariant) (models.Filing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.byKey[filingKey{EIN: ein, TaxYear: taxYear, Variant: variant}]
	return f, ok
}

// Size reports how many filings are currently cached.
func (c *FilingCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
