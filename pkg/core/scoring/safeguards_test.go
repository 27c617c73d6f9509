package scoring

import "testing"

func TestEvaluateSafeguardsFlagsStaleFiling(t *testing.T) {
	flags := EvaluateSafeguards(SafeguardInput{
		MostRecentFilingYear: 2018,
		CurrentYear:          2026,
		FilingRecencyYears:   3,
	})
	if !containsFlag(flags, SafeguardStaleFiling) {
		t.Fatalf("expected stale-filing flag, got %v", flags)
	}
}

func TestEvaluateSafeguardsNoFlagForRecentFiling(t *testing.T) {
	flags := EvaluateSafeguards(SafeguardInput{
		MostRecentFilingYear: 2025,
		CurrentYear:          2026,
		FilingRecencyYears:   3,
	})
	if containsFlag(flags, SafeguardStaleFiling) {
		t.Fatalf("expected no stale-filing flag for recent filing, got %v", flags)
	}
}

func TestEvaluateSafeguardsFlagsInactiveFoundation(t *testing.T) {
	flags := EvaluateSafeguards(SafeguardInput{
		GrantYearsPresent: []int{2015},
		CurrentYear:       2026,
		LookbackYears:     5,
	})
	if !containsFlag(flags, SafeguardInactiveFoundation) {
		t.Fatalf("expected grant-history flag for sporadic giving, got %v", flags)
	}
}

func TestEvaluateSafeguardsNoFlagForActiveFoundation(t *testing.T) {
	flags := EvaluateSafeguards(SafeguardInput{
		GrantYearsPresent: []int{2022, 2023, 2024, 2025, 2026},
		CurrentYear:       2026,
		LookbackYears:     5,
	})
	if containsFlag(flags, SafeguardInactiveFoundation) {
		t.Fatalf("expected no grant-history flag for consistently active foundation, got %v", flags)
	}
}

func TestEvaluateSafeguardsFlagsBorderMismatch(t *testing.T) {
	flags := EvaluateSafeguards(SafeguardInput{
		ProfileStates: []string{"VA"},
		OppStates:     []string{"CA"},
	})
	if !containsFlag(flags, SafeguardBorderMismatch) {
		t.Fatalf("expected border-proximity flag, got %v", flags)
	}
}

func containsFlag(flags []SafeguardFlag, target SafeguardFlag) bool {
	for _, f := range flags {
		if f == target {
			return true
		}
	}
	return false
}
