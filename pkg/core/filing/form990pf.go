package filing

import (
	"time"

	"grantintel/pkg/models"

	"grantintel/pkg/core/normalize"
)

func parseForm990PF(root *node) (*models.Filing, error) {
	ein, _ := root.childText("EIN")
	taxYear, _ := root.childInt("TaxYr")

	var warnings []string
	warn := func(w string) { warnings = append(warnings, w) }

	officers := extractOfficers(root, officerGroupFields{wrapperLocalName: "OfficerDirTrusteeKeyEmplGrp"}, normalize.DefaultInfluenceFlagSet())
	// Part XV: grants paid during the year.
	grants := extractGrants(root, grantGroupFields{wrapperLocalName: "SupplementaryInformationGrp", taxYear: taxYear})
	investments := extractInvestments(root)
	governance := extractGovernance(root)
	financials := extractFinancials(root, warn)

	filing := &models.Filing{
		EIN:         ein,
		TaxYear:     taxYear,
		Variant:     models.Form990PF,
		Officers:    officers,
		Grants:      grants,
		Investments: investments,
		Governance:  governance,
		Financials:  financials,
		ParsedAt:    time.Now(),
	}
	filing.Quality = assessQuality(taxYear, time.Now().Year(), filing, warnings)

	return filing, nil
}
