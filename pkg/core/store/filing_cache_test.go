package store

import (
	"testing"
	"time"

	"grantintel/pkg/models"
)

func TestFilingCachePutThenGet(t *testing.T) {
	c := NewFilingCache()
	f := models.Filing{EIN: "123456789", TaxYear: 2024, Variant: models.Form990PF, ParsedAt: time.Now()}

	if err := c.Put(f); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := c.Get("123456789", 2024, models.Form990PF)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.EIN != f.EIN {
		t.Fatalf("unexpected EIN: %s", got.EIN)
	}
}

func TestFilingCacheRejectsDuplicatePut(t *testing.T) {
	c := NewFilingCache()
	f := models.Filing{EIN: "123456789", TaxYear: 2024, Variant: models.Form990PF}

	if err := c.Put(f); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := c.Put(f); err == nil {
		t.Fatalf("expected second put for same key to fail (immutable once parsed)")
	}
}

func TestFilingCacheDistinctTaxYearsAreDistinctKeys(t *testing.T) {
	c := NewFilingCache()
	_ = c.Put(models.Filing{EIN: "123456789", TaxYear: 2023, Variant: models.Form990PF})
	_ = c.Put(models.Filing{EIN: "123456789", TaxYear: 2024, Variant: models.Form990PF})

	if c.Size() != 2 {
		t.Fatalf("expected 2 distinct cached filings, got %d", c.Size())
	}
}

func TestFilingCacheMissReturnsFalse(t *testing.T) {
	c := NewFilingCache()
	_, ok := c.Get("000000000", 2024, models.Form990)
	if ok {
		t.Fatalf("expected miss for unknown key")
	}
}
