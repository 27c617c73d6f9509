package filing

import "grantintel/pkg/models"

// assessQuality computes the per-filing QualityAssessment named in spec §4.2:
// overall-success, schema-validation-rate, per-category completeness, and a
// freshness figure derived from tax year. A single missing section does not
// fail the filing — it only depresses that category's completeness score.
func assessQuality(taxYear int, currentYear int, f *models.Filing, warnings []string) models.QualityAssessment {
	completeness := map[string]float64{
		"officer":    presence(len(f.Officers) > 0),
		"grant":      presence(len(f.Grants) > 0),
		"investment": presence(len(f.Investments) > 0),
		"financial":  presence(f.Financials.TotalRevenue != 0 || f.Financials.TotalAssets != 0),
		"governance": presence(f.Governance.ConflictOfInterestPolicy || f.Governance.WhistleblowerPolicy || f.Governance.DocumentRetentionPolicy),
	}

	var sum float64
	for _, v := range completeness {
		sum += v
	}
	overall := sum / float64(len(completeness))

	schemaRate := 1.0
	if len(warnings) > 0 {
		// Each parse warning depresses the schema-validation-rate; floors at 0.
		schemaRate = 1.0 - float64(len(warnings))*0.05
		if schemaRate < 0 {
			schemaRate = 0
		}
	}

	freshness := dataFreshness(taxYear, currentYear)

	return models.QualityAssessment{
		OverallSuccess:       overall,
		SchemaValidationRate: schemaRate,
		CategoryCompleteness: completeness,
		DataFreshness:        freshness,
		ParseWarnings:        warnings,
	}
}

func presence(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// dataFreshness decays linearly from 1.0 (current tax year) to 0.0 at 10
// years stale, clamped to [0,1]. The decay horizon is a core-local choice:
// the spec names "data-freshness derived from tax year" without fixing a
// curve. The horizon is fixed here and independent of the reliability
// safeguard's configurable filing-recency window (scoring/safeguards.go).
func dataFreshness(taxYear, currentYear int) float64 {
	if taxYear <= 0 {
		return 0
	}
	age := currentYear - taxYear
	if age <= 0 {
		return 1.0
	}
	if age >= 10 {
		return 0.0
	}
	return 1.0 - float64(age)/10.0
}
