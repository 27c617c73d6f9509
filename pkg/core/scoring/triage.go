package scoring

import (
	"math"

	"grantintel/pkg/models"
)

const (
	passThreshold = 0.58
	failThreshold = 0.45
)

// AbstainTriggerInput is the set of hard-trigger facts §4.6 names:
// abstain forces regardless of the composite's numeric score.
type AbstainTriggerInput struct {
	MissingNTEECodes    bool
	NTEEAlignmentScore  float64 // the raw mission/NTEE sub-score, not the weighted dimension
	ExplicitGeoMismatch bool
	SafeguardFlags      []SafeguardFlag
}

const minNTEEAlignment = 0.20

// EvaluateAbstainTriggers returns the human-readable trigger names that
// fired, in the order §4.6 lists them.
func EvaluateAbstainTriggers(in AbstainTriggerInput) []string {
	var triggers []string

	if in.MissingNTEECodes {
		triggers = append(triggers, "missing-ntee-codes")
	}
	if in.NTEEAlignmentScore < minNTEEAlignment {
		triggers = append(triggers, "ntee-alignment-below-threshold")
	}
	if in.ExplicitGeoMismatch {
		triggers = append(triggers, "explicit-geographic-mismatch")
	}
	for _, f := range in.SafeguardFlags {
		triggers = append(triggers, "safeguard:"+string(f))
	}

	return triggers
}

// Decide applies §4.6's decision thresholds and abstain triggers to a
// scored composite, setting its Recommendation and AbstainTriggers in
// place. Trigger-based abstain overrides the numeric thresholds entirely.
func Decide(cs *models.CompositeScore, triggers []string) {
	cs.AbstainTriggers = triggers

	switch {
	case len(triggers) > 0:
		cs.Recommendation = models.RecommendAbstain
	case cs.Overall >= passThreshold:
		cs.Recommendation = models.RecommendPass
	case cs.Overall < failThreshold:
		cs.Recommendation = models.RecommendFail
	default:
		cs.Recommendation = models.RecommendAbstain
	}
}

// TriagePriorityInput is the input to the Triage Queue priority formula:
// a weighted combination of proximity-to-threshold, data quality, and
// opportunity amount, per §4.6 and Open Question 3 (resolved by
// internal/config.TriageConfig's configurable weights).
type TriagePriorityInput struct {
	Overall        float64
	Confidence     float64
	Amount         float64
	BatchMaxAmount float64 // normalizes Amount into [0,1]; 0 disables the amount term

	ProximityWeight   float64
	DataQualityWeight float64
	AmountWeight      float64
}

// TriagePriority computes the priority score stored on a TriageItem: items
// closer to the Pass/Abstain boundary, with higher data quality, and larger
// dollar amounts are prioritized for manual review first.
func TriagePriority(in TriagePriorityInput) float64 {
	proximity := 1 - math.Min(math.Abs(in.Overall-passThreshold)/passThreshold, 1)

	var amountScore float64
	if in.BatchMaxAmount > 0 {
		amountScore = clamp01(in.Amount / in.BatchMaxAmount)
	}

	priority := in.ProximityWeight*proximity + in.DataQualityWeight*clamp01(in.Confidence) + in.AmountWeight*amountScore
	return clamp01(priority)
}
