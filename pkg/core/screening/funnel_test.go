package screening

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"grantintel/internal/config"
	"grantintel/pkg/core/budget"
	"grantintel/pkg/models"
)

func testCfg() config.ScreeningConfig {
	return config.ScreeningConfig{
		FastThreshold:    0.5,
		MaxBatchSize:     100,
		FastPassCost:     0.01,
		ThoroughPassCost: 0.05,
	}
}

func scorerFromScores(scores map[string]float64) Scorer {
	return func(_ context.Context, _ models.Profile, opp models.Opportunity) (models.CompositeScore, error) {
		v, ok := scores[opp.ID]
		if !ok {
			return models.CompositeScore{}, fmt.Errorf("no fixture score for %s", opp.ID)
		}
		return models.CompositeScore{OpportunityID: opp.ID, Overall: v}, nil
	}
}

func opps(ids ...string) []models.Opportunity {
	out := make([]models.Opportunity, len(ids))
	for i, id := range ids {
		out[i] = models.Opportunity{ID: id}
	}
	return out
}

func TestScreenFastModeFiltersByThreshold(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	fast := scorerFromScores(map[string]float64{"a": 0.9, "b": 0.3, "c": 0.5})
	f := New(testCfg(), 4, tracker, fast, nil)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("a", "b", "c"), ModeFast)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors) != 2 || res.Survivors[0].OpportunityID != "a" || res.Survivors[1].OpportunityID != "c" {
		t.Fatalf("expected 'a' (0.9) and 'c' (0.5, at the threshold) to survive the 0.5 threshold, got %v", res.Survivors)
	}
}

func TestScreenDeterministicOrderingDescendingWithIDTiebreak(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	fast := scorerFromScores(map[string]float64{"z": 0.8, "a": 0.8, "m": 0.9})
	f := New(testCfg(), 4, tracker, fast, nil)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("z", "a", "m"), ModeFast)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors) != 3 {
		t.Fatalf("expected all 3 to survive, got %d", len(res.Survivors))
	}
	got := []string{res.Survivors[0].OpportunityID, res.Survivors[1].OpportunityID, res.Survivors[2].OpportunityID}
	want := []string{"m", "a", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestScreenBothModeRunsThoroughOnlyOnFastSurvivors(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	fast := scorerFromScores(map[string]float64{"a": 0.9, "b": 0.1})
	thorough := func(_ context.Context, _ models.Profile, opp models.Opportunity) (models.CompositeScore, error) {
		if opp.ID == "b" {
			t.Fatalf("thorough pass must not be invoked on fast-pass failure 'b'")
		}
		return models.CompositeScore{OpportunityID: opp.ID, Overall: 0.7}, nil
	}
	f := New(testCfg(), 4, tracker, fast, thorough)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("a", "b"), ModeBoth)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors) != 1 || res.Survivors[0].OpportunityID != "a" {
		t.Fatalf("expected only 'a' to survive both passes, got %v", res.Survivors)
	}
}

func TestScreenThoroughModeSkipsFastFiltering(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	thorough := scorerFromScores(map[string]float64{"a": 0.1, "b": 0.2})
	f := New(testCfg(), 4, tracker, nil, thorough)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("a", "b"), ModeThorough)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors) != 2 {
		t.Fatalf("expected both items through thorough-only mode (no threshold), got %d", len(res.Survivors))
	}
}

func TestScreenBudgetExhaustionDefersRemaining(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 0.02}, nil)
	fast := scorerFromScores(map[string]float64{"a": 0.9, "b": 0.9, "c": 0.9, "d": 0.9})
	cfg := testCfg()
	cfg.FastPassCost = 0.01
	f := New(cfg, 1, tracker, fast, nil)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("a", "b", "c", "d"), ModeFast)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors)+len(res.Deferred) != 4 {
		t.Fatalf("expected every item accounted for across survivors+deferred, got %d survivors, %d deferred",
			len(res.Survivors), len(res.Deferred))
	}
	if len(res.Deferred) == 0 {
		t.Fatalf("expected at least one item deferred once the $0.02 run ceiling was exhausted")
	}
}

func TestScreenPartialFailureDoesNotAbortBatch(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	fast := func(_ context.Context, _ models.Profile, opp models.Opportunity) (models.CompositeScore, error) {
		if opp.ID == "bad" {
			return models.CompositeScore{}, errors.New("boom")
		}
		return models.CompositeScore{OpportunityID: opp.ID, Overall: 0.9}, nil
	}
	f := New(testCfg(), 4, tracker, fast, nil)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("good", "bad"), ModeFast)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors) != 1 || res.Survivors[0].OpportunityID != "good" {
		t.Fatalf("expected 'good' to survive despite 'bad' failing, got %v", res.Survivors)
	}
	if len(res.PartialFailures) != 1 || res.PartialFailures[0].OpportunityID != "bad" {
		t.Fatalf("expected 'bad' recorded as a partial failure, got %v", res.PartialFailures)
	}
}

func TestScreenMaxBatchSizeDefersOverflow(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	fast := scorerFromScores(map[string]float64{"a": 0.9, "b": 0.9, "c": 0.9})
	cfg := testCfg()
	cfg.MaxBatchSize = 2
	f := New(cfg, 4, tracker, fast, nil)

	res, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("a", "b", "c"), ModeFast)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(res.Survivors) != 2 {
		t.Fatalf("expected only the first 2 (max batch size) to be scored, got %d", len(res.Survivors))
	}
	if len(res.Deferred) != 1 || res.Deferred[0] != "c" {
		t.Fatalf("expected 'c' deferred as batch overflow, got %v", res.Deferred)
	}
}

func TestScreenUnknownModeErrors(t *testing.T) {
	tracker := budget.New(budget.Config{RunCeiling: 100}, nil)
	f := New(testCfg(), 4, tracker, nil, nil)

	if _, err := f.Screen(context.Background(), "run-1", models.Profile{}, opps("a"), Mode("bogus")); err == nil {
		t.Fatalf("expected an error for an unrecognized mode")
	}
}
