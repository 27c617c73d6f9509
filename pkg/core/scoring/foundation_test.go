package scoring

import (
	"math"
	"testing"
)

func TestScoreFoundationWeightsSumToOne(t *testing.T) {
	sum := weightMission + weightGeographic + weightFinancial + weightStrategic + weightTiming
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expected foundation dimension weights to sum to 1.0, got %f", sum)
	}
}

func TestScoreFoundationFullMarksProducesOverallOne(t *testing.T) {
	in := FoundationInput{
		OpportunityID:            "opp-f1",
		NTEEMajorMatch:           1.0,
		NTEELeafMatch:            1.0,
		GeographicFit:            1.0,
		AssetCapacityScore:       1.0,
		GrantToRevenueRatioScore: 1.0,
		ApplicationsOpenScore:    1.0,
		ScheduleICoherence:       1.0,
		FilingRecencyScore:       1.0,
		OperatingPreferenceScore: 1.0,
	}

	cs := ScoreFoundation(in)
	if cs.Overall != 1.0 {
		t.Fatalf("expected overall clamped to 1.0 at full marks, got %f", cs.Overall)
	}
	if cs.StageOrTrack != "Foundation" {
		t.Fatalf("unexpected stage-or-track label: %s", cs.StageOrTrack)
	}
}

func TestScoreFoundationZeroMarksProducesOverallZero(t *testing.T) {
	cs := ScoreFoundation(FoundationInput{OpportunityID: "opp-f2"})
	if cs.Overall != 0 {
		t.Fatalf("expected overall 0 at zero marks, got %f", cs.Overall)
	}
}

func TestScoreFoundationConfidenceIncludesEnhancementBonus(t *testing.T) {
	base := FoundationInput{OpportunityID: "opp-f3"}
	withEnhancements := base
	withEnhancements.EnhancementsAvailable = 2

	baseCS := ScoreFoundation(base)
	enhancedCS := ScoreFoundation(withEnhancements)

	if enhancedCS.Confidence <= baseCS.Confidence {
		t.Fatalf("expected enhancement bonus to raise confidence: base=%f enhanced=%f", baseCS.Confidence, enhancedCS.Confidence)
	}
	if math.Abs(enhancedCS.Confidence-(baseCS.Confidence+0.10)) > 1e-9 {
		t.Fatalf("expected +0.05 per enhancement (2 enhancements = +0.10), got delta %f", enhancedCS.Confidence-baseCS.Confidence)
	}
}

func TestScoreFoundationStrategicBoostRecorded(t *testing.T) {
	cs := ScoreFoundation(FoundationInput{OpportunityID: "opp-f4", ScheduleICoherence: 0.8})

	found := false
	for _, b := range cs.AppliedBoosts {
		if b == "schedule-i-coherence→strategic" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected strategic boost to be recorded, got %v", cs.AppliedBoosts)
	}
}

func TestScoreFoundationMissionWeighting(t *testing.T) {
	cs := ScoreFoundation(FoundationInput{
		OpportunityID:  "opp-f5",
		NTEEMajorMatch: 1.0,
		NTEELeafMatch:  0.0,
	})

	for _, d := range cs.Dimensions {
		if d.Dimension == "mission" {
			if math.Abs(d.Raw-0.40) > 1e-9 {
				t.Fatalf("expected mission raw 0.40 (major-only match), got %f", d.Raw)
			}
		}
	}
}
