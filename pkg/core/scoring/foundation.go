package scoring

import "grantintel/pkg/models"

// Foundation dimension weights are fixed by §4.6's table, not configured —
// unlike the stage regime, a 990-PF composite has exactly one shape.
const (
	weightMission    = 0.30
	weightGeographic = 0.20
	weightFinancial  = 0.28
	weightStrategic  = 0.12
	weightTiming     = 0.10
)

// FoundationInput is the eight underlying sub-components §4.6 composites
// into five dimensions for a 990-PF opportunity. All *Score/*Match fields
// are pre-normalized to [0,1] by the caller (the screening/intelligence
// layer owns translating raw filing/profile facts into these numbers); this
// package owns only the weighting and rollup arithmetic.
type FoundationInput struct {
	OpportunityID string

	// Mission alignment (0.30): NTEE two-part match, major 40% + leaf 60%.
	NTEEMajorMatch float64
	NTEELeafMatch  float64

	// Geographic fit (0.20): pre-computed via GeographicFit.
	GeographicFit float64

	// Financial match (0.28): weighted 10/10/8 within the dimension.
	AssetCapacityScore       float64
	GrantToRevenueRatioScore float64
	ApplicationsOpenScore    float64

	// Strategic alignment (0.12): entropy-derived coherence of top-N
	// recipient NTEE codes on Schedule I / Part XV, already converted to a
	// [0,1] coherence score (higher = more concentrated/coherent giving).
	// The same signal additionally confers a 0.0-0.15 boost per §4.6.
	ScheduleICoherence float64

	// Timing (0.10): filing-recency decay and operating-vs-non-operating
	// preference, averaged evenly within the dimension.
	FilingRecencyScore       float64
	OperatingPreferenceScore float64

	// DataQuality is keyed by dimension name; a missing entry defaults to
	// 1.0 (fully observed) the same as stage scoring.
	DataQuality map[string]float64

	// EnhancementsAvailable counts optional enrichment sources that
	// contributed to this score (e.g. ProPublica enrichment, Schedule I
	// parse), feeding the +0.05-per-enhancement confidence term.
	EnhancementsAvailable int
}

const scheduleICoherenceBoostCap = 0.15

// ScoreFoundation computes the single-pass composite for a 990-PF
// opportunity per §4.6's foundation-track table.
func ScoreFoundation(in FoundationInput) models.CompositeScore {
	missionRaw := clamp01(0.40*in.NTEEMajorMatch + 0.60*in.NTEELeafMatch)
	geoRaw := clamp01(in.GeographicFit)
	financialRaw := clamp01((10*in.AssetCapacityScore + 10*in.GrantToRevenueRatioScore + 8*in.ApplicationsOpenScore) / 28)
	strategicRaw := clamp01(in.ScheduleICoherence)
	timingRaw := clamp01(0.5*in.FilingRecencyScore + 0.5*in.OperatingPreferenceScore)

	strategicBoost := clamp01(in.ScheduleICoherence) * scheduleICoherenceBoostCap
	strategicWeighted := clamp01(strategicRaw*(1+strategicBoost)) * weightStrategic

	dims := []models.DimensionalScore{
		{Dimension: "mission", Raw: missionRaw, Weight: weightMission, Weighted: missionRaw * weightMission, DataQuality: dq(in.DataQuality, "mission")},
		{Dimension: "geographic", Raw: geoRaw, Weight: weightGeographic, Weighted: geoRaw * weightGeographic, DataQuality: dq(in.DataQuality, "geographic")},
		{Dimension: "financial", Raw: financialRaw, Weight: weightFinancial, Weighted: financialRaw * weightFinancial, DataQuality: dq(in.DataQuality, "financial")},
		{Dimension: "strategic", Raw: strategicRaw, Weight: weightStrategic, Boost: strategicBoost, Weighted: strategicWeighted, DataQuality: dq(in.DataQuality, "strategic")},
		{Dimension: "timing", Raw: timingRaw, Weight: weightTiming, Weighted: timingRaw * weightTiming, DataQuality: dq(in.DataQuality, "timing")},
	}

	var overall, qualitySum float64
	for _, d := range dims {
		overall += d.Weighted
		qualitySum += d.DataQuality
	}

	confidence := clamp01(qualitySum/float64(len(dims)) + 0.05*float64(in.EnhancementsAvailable))

	var appliedBoosts []string
	if strategicBoost > 0 {
		appliedBoosts = append(appliedBoosts, "schedule-i-coherence→strategic")
	}

	return models.CompositeScore{
		OpportunityID: in.OpportunityID,
		Overall:       clamp01(overall),
		Confidence:    confidence,
		Dimensions:    dims,
		StageOrTrack:  "Foundation",
		AppliedBoosts: appliedBoosts,
	}
}

func dq(m map[string]float64, dimension string) float64 {
	if v, ok := m[dimension]; ok {
		return v
	}
	return 1
}
