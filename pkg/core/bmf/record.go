// Package bmf implements the indexed predicate filter over the IRS Business
// Master File named in C3: indexes on state and NTEE code plus a direct EIN
// lookup, with evaluation ordered by estimated predicate selectivity. There
// is no combined (state, revenue) index: the state index does not keep its
// entries in revenue order.
package bmf

// Organization is one row of the Business Master File, projected to the
// columns this core filters and scores on.
type Organization struct {
	EIN            string
	Name           string
	State          string
	NTEECode       string
	Revenue        float64
	Assets         float64
	IsFoundation   bool
	FoundationCode string
}

// Criteria is a predicate set over Organization columns. A zero-value field
// (nil slice, zero float) means "no restriction on this column" except where
// noted; States combined with Nationwide=true means no state restriction
// even when States is non-empty (the wider of the two wins).
type Criteria struct {
	States         []string
	NTEEPrefixes   []string
	RevenueMin     float64
	RevenueMax     float64
	HasRevenueMax  bool
	AssetMin       float64
	AssetMax       float64
	HasAssetMax    bool
	FoundationOnly bool
	NameSubstring  string
	Nationwide     bool
}

// empty reports whether c restricts nothing at all — C3's "empty criteria
// returns an empty result, not the whole file" edge case hinges on this.
func (c Criteria) empty() bool {
	return len(c.States) == 0 && len(c.NTEEPrefixes) == 0 &&
		c.RevenueMin == 0 && !c.HasRevenueMax &&
		c.AssetMin == 0 && !c.HasAssetMax &&
		!c.FoundationOnly && c.NameSubstring == "" && !c.Nationwide
}

// PerformanceRecord reports how a Query call did its work, for the caller's
// own observability (spec.md S1's elapsed/scanned assertions).
type PerformanceRecord struct {
	RowsScanned int
	RowsMatched int
	Elapsed     int64 // nanoseconds, caller formats as needed
}

// Result is the outcome of a Query call.
type Result struct {
	Organizations []Organization
	Performance   PerformanceRecord
}
