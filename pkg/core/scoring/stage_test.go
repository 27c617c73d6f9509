package scoring

import (
	"math"
	"testing"

	"grantintel/internal/config"
)

func TestValidateWeightsAcceptsDefaultConfig(t *testing.T) {
	cfg := config.Default()
	if err := ValidateWeights(cfg.Scoring.Stages); err != nil {
		t.Fatalf("expected default stage weights to validate, got %v", err)
	}
}

func TestValidateWeightsRejectsNonUnitSum(t *testing.T) {
	stages := map[string]map[string]float64{
		"Discover": {"mission": 0.5, "geographic": 0.3},
	}
	if err := ValidateWeights(stages); err == nil {
		t.Fatalf("expected error for weights not summing to 1.0")
	}
}

func TestScoreStageWeightedSumMatchesOverall(t *testing.T) {
	cfg := config.Default()
	weights := cfg.Scoring.Stages["Discover"]

	in := StageInput{
		OpportunityID: "opp-1",
		Raw: map[string]float64{
			"mission": 0.8, "geographic": 0.6, "financial": 0.9,
			"eligibility": 1.0, "timing": 0.5,
		},
		DataQuality: map[string]float64{
			"mission": 0.9, "geographic": 1.0, "financial": 0.8,
			"eligibility": 1.0, "timing": 0.7,
		},
	}

	cs := ScoreStage(TrackNonprofit, "Discover", weights, in)

	var sum float64
	for _, d := range cs.Dimensions {
		sum += d.Weighted
	}
	if math.Abs(sum-cs.Overall) > 1e-9 {
		t.Fatalf("expected overall %f to equal sum of weighted dims %f", cs.Overall, sum)
	}
	if cs.StageOrTrack != "Nonprofit/Discover" {
		t.Fatalf("unexpected stage-or-track label: %s", cs.StageOrTrack)
	}
}

func TestScoreStageAppliesCappedBoost(t *testing.T) {
	cfg := config.Default()
	weights := cfg.Scoring.Stages["Plan"]

	in := StageInput{
		OpportunityID: "opp-2",
		Raw: map[string]float64{
			"success-probability": 0.5, "capacity": 0.5, "financial-viability": 0.5,
			"network-leverage": 0.5, "compliance": 0.5,
		},
		Boosts: BoostInputs{
			FinancialDataAvailable:  true,
			NetworkDataAvailable:    true,
			HistoricalDataAvailable: true,
		},
	}

	cs := ScoreStage(TrackFederal, "Plan", weights, in)

	var financialDim, networkDim, successDim *float64
	for _, d := range cs.Dimensions {
		switch d.Dimension {
		case "financial-viability":
			v := d.Boost
			financialDim = &v
		case "network-leverage":
			v := d.Boost
			networkDim = &v
		case "success-probability":
			v := d.Boost
			successDim = &v
		}
	}

	if financialDim == nil || *financialDim <= 0 {
		t.Fatalf("expected financial-viability to receive a boost")
	}
	if networkDim == nil || *networkDim > maxBoostPerDimension {
		t.Fatalf("expected network-leverage boost capped at %f, got %v", maxBoostPerDimension, networkDim)
	}
	if successDim == nil || *successDim <= 0 {
		t.Fatalf("expected success-probability to receive historical-data boost")
	}
	if len(cs.AppliedBoosts) == 0 {
		t.Fatalf("expected applied boosts to be recorded")
	}
}

func TestScoreStageDefaultsMissingDataQualityToOne(t *testing.T) {
	cfg := config.Default()
	weights := cfg.Scoring.Stages["Examine"]

	in := StageInput{
		OpportunityID: "opp-3",
		Raw: map[string]float64{
			"depth-quality": 0.5, "relationships": 0.5, "strategic-fit": 0.5,
			"partnership": 0.5, "innovation": 0.5,
		},
	}

	cs := ScoreStage(TrackState, "Examine", weights, in)
	if math.Abs(cs.Confidence-1.0) > 1e-9 {
		t.Fatalf("expected confidence 1.0 when no data-quality supplied, got %f", cs.Confidence)
	}
}
