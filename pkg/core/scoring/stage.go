// Package scoring implements C6: the stage-based scoring regime shared by
// all four tracks (Nonprofit, Federal, State, Commercial) and the
// foundation-specific single-pass composite for 990-PF opportunities, both
// built over the common models.DimensionalScore/CompositeScore shape.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"grantintel/pkg/models"
)

// Track is the funding-source category a CompositeScore was computed for.
type Track string

const (
	TrackNonprofit  Track = "Nonprofit"
	TrackFederal    Track = "Federal"
	TrackState      Track = "State"
	TrackCommercial Track = "Commercial"
)

// BoostInputs reports which optional enrichment signals were available for
// this scoring pass; each present signal unlocks a capped multiplicative
// boost on the dimensions it names per §4.6.
type BoostInputs struct {
	FinancialDataAvailable  bool
	NetworkDataAvailable    bool
	HistoricalDataAvailable bool
	CompletedRiskAssessment bool
}

const maxBoostPerDimension = 0.15

// boostFor returns the capped boost fraction applicable to a named
// dimension given which enrichment signals are present, and the label to
// record in CompositeScore.AppliedBoosts when it fires.
func boostFor(dimension string, b BoostInputs) (float64, string) {
	var total float64
	var labels []string

	lower := strings.ToLower(dimension)
	if b.FinancialDataAvailable && strings.Contains(lower, "financial") {
		total += 0.10
		labels = append(labels, "financial-data")
	}
	if b.NetworkDataAvailable && strings.Contains(lower, "network") {
		total += 0.15
		labels = append(labels, "network-data")
	}
	if b.HistoricalDataAvailable && strings.Contains(lower, "success") {
		total += 0.12
		labels = append(labels, "historical-data")
	}
	if b.CompletedRiskAssessment && lower == "viability" {
		total += 0.08
		labels = append(labels, "completed-risk-assessment")
	}

	if total > maxBoostPerDimension {
		total = maxBoostPerDimension
	}
	if len(labels) == 0 {
		return 0, ""
	}
	return total, fmt.Sprintf("%s→%s", strings.Join(labels, "+"), dimension)
}

// StageInput is the per-call raw material for stage-based scoring: a raw
// score and a data-quality estimate per dimension name, keyed to match the
// configured weight table for the stage being scored.
type StageInput struct {
	OpportunityID string
	Raw           map[string]float64
	DataQuality   map[string]float64
	Boosts        BoostInputs
}

// ScoreStage computes a CompositeScore for one (track, stage) pair. weights
// must sum to 1.0 within tolerance; ScoreStage does not validate this
// itself — callers load weights once at startup via internal/config and are
// expected to validate there (see ValidateWeights).
func ScoreStage(track Track, stage string, weights map[string]float64, in StageInput) models.CompositeScore {
	dims := make([]models.DimensionalScore, 0, len(weights))
	var appliedBoosts []string
	var overall float64
	var qualitySum float64

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		weight := weights[name]
		raw := clamp01(in.Raw[name])
		dq := in.DataQuality[name]
		if dq == 0 {
			dq = 1 // unset data-quality defaults to "fully observed" for sub-scores supplied directly
		}

		boost, label := boostFor(name, in.Boosts)
		boosted := clamp01(raw * (1 + boost))
		weighted := boosted * weight

		dims = append(dims, models.DimensionalScore{
			Dimension:   name,
			Raw:         raw,
			Weight:      weight,
			Boost:       boost,
			Weighted:    weighted,
			DataQuality: dq,
		})

		if label != "" {
			appliedBoosts = append(appliedBoosts, label)
		}
		overall += weighted
		qualitySum += dq
	}

	confidence := clamp01(qualitySum / float64(len(names)))

	cs := models.CompositeScore{
		OpportunityID: in.OpportunityID,
		Overall:       overall,
		Confidence:    confidence,
		Dimensions:    dims,
		StageOrTrack:  fmt.Sprintf("%s/%s", track, stage),
		AppliedBoosts: appliedBoosts,
	}
	return cs
}

// ValidateWeights fails startup (per spec.md §4.5's "fail startup on
// invalid schema" posture, applied here to the analogous weight-table
// config) when a stage's dimension weights do not sum to 1.0 within
// tolerance.
func ValidateWeights(stages map[string]map[string]float64) error {
	const tolerance = 1e-6
	for stage, weights := range stages {
		var sum float64
		for _, w := range weights {
			sum += w
		}
		if diff := sum - 1.0; diff > tolerance || diff < -tolerance {
			return fmt.Errorf("stage %s dimension weights sum to %f, want 1.0", stage, sum)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
