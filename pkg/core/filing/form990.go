package filing

import (
	"time"

	"grantintel/pkg/models"

	"grantintel/pkg/core/normalize"
)

func parseForm990(root *node) (*models.Filing, error) {
	ein, _ := root.childText("EIN")
	taxYear, _ := root.childInt("TaxYr")

	var warnings []string
	warn := func(w string) { warnings = append(warnings, w) }

	officers := extractOfficers(root, officerGroupFields{wrapperLocalName: "Form990PartVIISectionAGrp"}, normalize.DefaultInfluenceFlagSet())
	grants := extractGrants(root, grantGroupFields{wrapperLocalName: "RecipientTable", taxYear: taxYear})
	governance := extractGovernance(root)
	financials := extractFinancials(root, warn)

	filing := &models.Filing{
		EIN:         ein,
		TaxYear:     taxYear,
		Variant:     models.Form990,
		Officers:    officers,
		Grants:      grants,
		Investments: nil, // Form 990 Part II/Schedule I does not report investment holdings.
		Governance:  governance,
		Financials:  financials,
		ParsedAt:    time.Now(),
	}
	filing.Quality = assessQuality(taxYear, time.Now().Year(), filing, warnings)

	return filing, nil
}
