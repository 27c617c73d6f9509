package scoring

import "testing"

func TestGeographicFitExactStateMatch(t *testing.T) {
	fit := GeographicFit([]string{"VA"}, []string{"VA", "DC"}, false, nil)
	if fit != 1.0 {
		t.Fatalf("expected exact match 1.0, got %f", fit)
	}
}

func TestGeographicFitNationalFocus(t *testing.T) {
	fit := GeographicFit([]string{"VA"}, nil, true, nil)
	if fit != 0.5 {
		t.Fatalf("expected national-focus 0.5, got %f", fit)
	}
}

func TestGeographicFitAdjacentWithTableSupplied(t *testing.T) {
	adjacency := AdjacencyTable{"VA": {"DC", "MD", "NC"}}
	fit := GeographicFit([]string{"VA"}, []string{"MD"}, false, adjacency)
	if fit != 0.75 {
		t.Fatalf("expected adjacent 0.75, got %f", fit)
	}
}

func TestGeographicFitMismatchWithoutAdjacencyTable(t *testing.T) {
	fit := GeographicFit([]string{"VA"}, []string{"MD"}, false, nil)
	if fit != 0 {
		t.Fatalf("expected mismatch 0 when no adjacency table supplied, got %f", fit)
	}
}

func TestGeographicFitMismatchUnrelatedStates(t *testing.T) {
	adjacency := AdjacencyTable{"VA": {"DC", "MD", "NC"}}
	fit := GeographicFit([]string{"VA"}, []string{"CA"}, false, adjacency)
	if fit != 0 {
		t.Fatalf("expected mismatch 0, got %f", fit)
	}
}

func TestBorderProximityMismatchTrueOnlyAtZeroFit(t *testing.T) {
	if !BorderProximityMismatch([]string{"VA"}, []string{"CA"}, false, nil) {
		t.Fatalf("expected border mismatch true for unrelated states")
	}
	if BorderProximityMismatch([]string{"VA"}, nil, true, nil) {
		t.Fatalf("expected no mismatch for nationwide opportunity")
	}
}
