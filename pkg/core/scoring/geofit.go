package scoring

// AdjacencyTable maps a state code to its bordering states. A nil table
// disables the "adjacent" tier entirely — §4.6 names this tier as
// conditional ("if adjacency table supplied"), which Open Question 1
// (geographic adjacency) resolves by making the table an injected
// dependency: callers without one still get exact/national/mismatch
// grading, just never the 0.75 middle tier.
type AdjacencyTable map[string][]string

// GeographicFit scores how well an opportunity's geographic scope matches a
// profile's operating states, per §4.6's four-tier rule: exact state
// overlap scores 1.0, a nationwide opportunity scores 0.5 (broad but
// untargeted), an adjacent-state overlap (when adjacency is supplied)
// scores 0.75, anything else scores 0 (mismatch).
func GeographicFit(profileStates []string, oppStates []string, oppNationwide bool, adjacency AdjacencyTable) float64 {
	if oppNationwide {
		return 0.5
	}

	oppSet := make(map[string]bool, len(oppStates))
	for _, s := range oppStates {
		oppSet[s] = true
	}

	for _, ps := range profileStates {
		if oppSet[ps] {
			return 1.0
		}
	}

	if adjacency != nil {
		for _, ps := range profileStates {
			for _, neighbor := range adjacency[ps] {
				if oppSet[neighbor] {
					return 0.75
				}
			}
		}
	}

	return 0
}

// BorderProximityMismatch reports whether a profile's service area falls
// entirely outside a foundation's geographic focus — the hard flag named
// by the border-proximity reliability safeguard in §4.6. This is stricter
// than "fit below threshold": it only fires when GeographicFit is the
// 0 mismatch tier exactly (no exact, adjacent, or national-focus credit at
// all).
func BorderProximityMismatch(profileStates []string, oppStates []string, oppNationwide bool, adjacency AdjacencyTable) bool {
	return GeographicFit(profileStates, oppStates, oppNationwide, adjacency) == 0
}
