package bmf

import (
	"sort"
	"strings"
	"time"
)

// Query evaluates criteria against the index. Empty criteria returns an
// empty result rather than the whole file (C3's edge case). Evaluation
// picks the most selective available indexed predicate as the candidate
// set, then streams the remainder through in-memory predicate evaluation;
// results are ordered (revenue desc, EIN asc).
func (idx *Index) Query(c Criteria) Result {
	start := time.Now()

	if c.empty() {
		return Result{Performance: PerformanceRecord{Elapsed: time.Since(start).Nanoseconds()}}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates, scanned := idx.candidateSet(c)

	matched := make([]Organization, 0, len(candidates))
	for _, i := range candidates {
		org := idx.all[i]
		if matchesRemaining(org, c) {
			matched = append(matched, org)
		}
	}

	sort.Slice(matched, func(a, b int) bool {
		if matched[a].Revenue != matched[b].Revenue {
			return matched[a].Revenue > matched[b].Revenue
		}
		return matched[a].EIN < matched[b].EIN
	})

	return Result{
		Organizations: matched,
		Performance: PerformanceRecord{
			RowsScanned: scanned,
			RowsMatched: len(matched),
			Elapsed:     time.Since(start).Nanoseconds(),
		},
	}
}

// candidateSet picks the most selective indexed predicate and returns the
// row indexes it admits, along with how many rows that candidate set holds
// (the "rows scanned" figure — everything streamed through in-memory
// evaluation afterward). Selectivity is approximated by candidate-set size:
// smaller is assumed more selective, mirroring a cardinality-estimate-driven
// planner without needing persisted table statistics.
func (idx *Index) candidateSet(c Criteria) ([]int, int) {
	type plan struct {
		indexes []int
		size    int
	}

	var plans []plan

	if len(c.NTEEPrefixes) > 0 {
		plans = append(plans, plan{indexes: idx.nteePrefixCandidates(c.NTEEPrefixes)})
	}
	if len(c.States) > 0 && !c.Nationwide {
		plans = append(plans, plan{indexes: idx.stateCandidates(c.States)})
	}

	for i := range plans {
		plans[i].size = len(plans[i].indexes)
	}

	if len(plans) == 0 {
		// No indexed predicate narrows the set (e.g. revenue/asset-only
		// criteria, or nationwide=true with no NTEE restriction): fall back
		// to a full scan.
		all := make([]int, len(idx.all))
		for i := range idx.all {
			all[i] = i
		}
		return all, len(all)
	}

	best := plans[0]
	for _, p := range plans[1:] {
		if p.size < best.size {
			best = p
		}
	}
	return best.indexes, best.size
}

func (idx *Index) stateCandidates(states []string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, s := range states {
		for _, i := range idx.byState[strings.ToUpper(s)] {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	return out
}

// nteePrefixCandidates resolves prefix matches against the full-code index.
// The index is keyed on the complete NTEE code, so a prefix predicate scans
// index keys rather than doing an O(1) lookup — still bounded by the number
// of distinct codes, not the number of organizations.
func (idx *Index) nteePrefixCandidates(prefixes []string) []int {
	seen := make(map[int]bool)
	var out []int
	for code, rows := range idx.byNTEE {
		for _, p := range prefixes {
			if strings.HasPrefix(code, strings.ToUpper(p)) {
				for _, i := range rows {
					if !seen[i] {
						seen[i] = true
						out = append(out, i)
					}
				}
				break
			}
		}
	}
	return out
}

// matchesRemaining evaluates every predicate not already guaranteed by the
// candidate set selection (cheap to re-check the indexed ones too, since a
// row may satisfy the chosen index predicate without satisfying another
// predicate that was not used to build the candidate set).
func matchesRemaining(org Organization, c Criteria) bool {
	if len(c.States) > 0 && !c.Nationwide {
		if !containsFold(c.States, org.State) {
			return false
		}
	}
	if len(c.NTEEPrefixes) > 0 {
		if !hasAnyPrefix(org.NTEECode, c.NTEEPrefixes) {
			return false
		}
	}
	if c.RevenueMin != 0 && org.Revenue < c.RevenueMin {
		return false
	}
	if c.HasRevenueMax && org.Revenue > c.RevenueMax {
		return false
	}
	if c.AssetMin != 0 && org.Assets < c.AssetMin {
		return false
	}
	if c.HasAssetMax && org.Assets > c.AssetMax {
		return false
	}
	if c.FoundationOnly && !org.IsFoundation {
		return false
	}
	if c.NameSubstring != "" && !strings.Contains(strings.ToUpper(org.Name), strings.ToUpper(c.NameSubstring)) {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(code, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
