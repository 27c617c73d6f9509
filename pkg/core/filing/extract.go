package filing

import (
	"grantintel/pkg/models"

	"grantintel/pkg/core/normalize"
)

// officerGroupFields names the child elements of one officer/director/key-
// employee row. The wrapper element's local name differs per form variant
// (each variant has its own "Part VII"-equivalent section), but the row
// shape is the same across 990, 990-PF, and 990-EZ.
type officerGroupFields struct {
	wrapperLocalName string
}

func extractOfficers(root *node, fields officerGroupFields, flagSet normalize.InfluenceFlagSet) []models.Officer {
	groups := root.findAll(fields.wrapperLocalName)
	officers := make([]models.Officer, 0, len(groups))

	for _, g := range groups {
		name, _ := g.childText("PersonNm")
		if name == "" {
			name, _ = g.childText("BusinessNamePersonNm")
		}
		title, _ := g.childText("TitleTxt")
		compensation, _, _ := g.childFloat("ReportableCompFromOrgAmt")
		hours, _, _ := g.childFloat("AverageHoursPerWeekRt")

		in := normalize.RoleInput{
			Title:        title,
			IsOfficer:    g.childBool("OfficerInd"),
			IsDirector:   g.childBool("IndividualTrusteeOrDirectorInd"),
			Compensation: compensation,
			HoursPerWeek: hours,
			VotingMember: g.childBool("VotingMemberInd"),
			PolicyMaker:  g.childBool("PolicyMakerInd"),
		}
		role := normalize.RoleCategory(in)

		officers = append(officers, models.Officer{
			RawName:        name,
			CanonicalName:  normalize.CanonicalPersonName(name),
			Title:          title,
			Role:           models.RoleCategory(role),
			Compensation:   compensation,
			HoursPerWeek:   hours,
			IsOfficer:      in.IsOfficer,
			IsDirector:     in.IsDirector,
			VotingMember:   in.VotingMember,
			PolicyMaker:    in.PolicyMaker,
			InfluenceScore: normalize.InfluenceScore(in, role, flagSet),
		})
	}

	return officers
}

func extractGovernance(root *node) models.GovernanceIndicator {
	return models.GovernanceIndicator{
		ConflictOfInterestPolicy: root.childBool("ConflictOfInterestPolicyInd"),
		WhistleblowerPolicy:      root.childBool("WhistleblowerPolicyInd"),
		DocumentRetentionPolicy:  root.childBool("DocumentRetentionPolicyInd"),
	}
}

// extractFinancials reads the top-line monetary elements; every variant uses
// the same local names for the figures this core tracks even though their
// position within the document's Part structure differs.
func extractFinancials(root *node, warn func(string)) models.FinancialSummary {
	get := func(localName string) float64 {
		v, present, err := root.childFloat(localName)
		if err != nil {
			warn("malformed numeric value for " + localName + ": " + err.Error())
			return 0
		}
		_ = present
		return v
	}

	return models.FinancialSummary{
		TotalRevenue:       get("CYTotalRevenueAmt"),
		TotalExpenses:      get("CYTotalExpensesAmt"),
		TotalAssets:        get("TotalAssetsEOYAmt"),
		NetAssets:          get("NetAssetsOrFundBalancesEOYAmt"),
		Contributions:      get("CYContributionsGrantsAmt"),
		ProgramExpense:     get("TotalProgramServiceExpensesAmt"),
		AdminExpense:       get("TotalManagementAndGeneralExpensesAmt"),
		FundraisingExpense: get("TotalFundraisingExpensesAmt"),
	}
}

type grantGroupFields struct {
	wrapperLocalName string
	taxYear          int
}

func extractGrants(root *node, fields grantGroupFields) []models.Grant {
	groups := root.findAll(fields.wrapperLocalName)
	grants := make([]models.Grant, 0, len(groups))

	for _, g := range groups {
		name, _ := g.childText("RecipientBusinessName")
		if name == "" {
			name, _ = g.childText("RecipientPersonNm")
		}
		ein, _ := g.childText("RecipientEIN")
		amount, _, _ := g.childFloat("CashGrantAmt")
		if amount == 0 {
			if alt, present, _ := g.childFloat("GrantOrContributionPaidAmt"); present {
				amount = alt
			}
		}
		purpose, _ := g.childText("PurposeOfGrantTxt")

		grants = append(grants, models.Grant{
			RecipientRawName:       name,
			RecipientCanonicalName: normalize.CanonicalOrgName(name),
			RecipientEIN:           ein,
			Amount:                 amount,
			Purpose:                purpose,
			TaxYear:                fields.taxYear,
		})
	}

	return grants
}

func extractInvestments(root *node) []models.Investment {
	groups := root.findAll("InvestmentCorporateStockGrp")
	investments := make([]models.Investment, 0, len(groups))

	for _, g := range groups {
		desc, _ := g.childText("Desc")
		book, _, _ := g.childFloat("BookValueAmt")
		market, _, _ := g.childFloat("FMVAmt")

		investments = append(investments, models.Investment{
			Description: desc,
			BookValue:   book,
			MarketValue: market,
		})
	}

	return investments
}
