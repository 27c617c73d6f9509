package propublica

import (
	"strconv"
	"time"

	"grantintel/pkg/models"
)

// apiResponse mirrors the subset of the Nonprofit Explorer API v2 payload
// this client consumes. Unmapped fields are intentionally dropped.
type apiResponse struct {
	Organization struct {
		Name           string `json:"name"`
		NTEECode       string `json:"ntee_code"`
		SubsectionCode string `json:"subseccd"`
		RulingDate     string `json:"ruling_date"`
	} `json:"organization"`
	Filings []struct {
		TaxPeriod     int     `json:"tax_prd_yr"`
		FormTypeCode  string  `json:"formtype"`
		TotalRevenue  float64 `json:"totrevenue"`
		TotalExpenses float64 `json:"totfuncexpns"`
		PDFURL        string  `json:"pdf_url"`
	} `json:"filings_with_data"`
}

func (r apiResponse) toRecord(ein string, fetchedAt time.Time) models.EnrichmentRecord {
	var rulingYear int
	if len(r.Organization.RulingDate) >= 4 {
		if y, err := strconv.Atoi(r.Organization.RulingDate[:4]); err == nil {
			rulingYear = y
		}
	}

	summaries := make([]models.FilingSummary, 0, len(r.Filings))
	for _, f := range r.Filings {
		summaries = append(summaries, models.FilingSummary{
			TaxYear:       f.TaxPeriod,
			FormType:      f.FormTypeCode,
			TotalRevenue:  f.TotalRevenue,
			TotalExpenses: f.TotalExpenses,
			PDFURL:        f.PDFURL,
		})
	}

	return models.EnrichmentRecord{
		EIN:            ein,
		Status:         models.EnrichmentOK,
		OrgName:        r.Organization.Name,
		NTEECode:       r.Organization.NTEECode,
		SubsectionCode: r.Organization.SubsectionCode,
		RulingYear:     rulingYear,
		LatestFilings:  summaries,
		FetchedAt:      fetchedAt,
		Source:         "api",
	}
}
