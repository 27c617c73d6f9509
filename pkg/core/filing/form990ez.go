package filing

import (
	"time"

	"grantintel/pkg/models"

	"grantintel/pkg/core/normalize"
)

// parseForm990EZ handles the small-organization variant. 990-EZ filers do
// not complete a grants schedule or an investment holdings part, so those
// fields are always empty rather than attempted.
func parseForm990EZ(root *node) (*models.Filing, error) {
	ein, _ := root.childText("EIN")
	taxYear, _ := root.childInt("TaxYr")

	var warnings []string
	warn := func(w string) { warnings = append(warnings, w) }

	officers := extractOfficers(root, officerGroupFields{wrapperLocalName: "Form990EZPartIVGrp"}, normalize.DefaultInfluenceFlagSet())
	governance := extractGovernance(root)
	financials := extractFinancials(root, warn)

	filing := &models.Filing{
		EIN:         ein,
		TaxYear:     taxYear,
		Variant:     models.Form990EZ,
		Officers:    officers,
		Grants:      nil,
		Investments: nil,
		Governance:  governance,
		Financials:  financials,
		ParsedAt:    time.Now(),
	}
	filing.Quality = assessQuality(taxYear, time.Now().Year(), filing, warnings)

	return filing, nil
}
