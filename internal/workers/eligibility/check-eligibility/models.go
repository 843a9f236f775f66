// internal/workers/eligibility/check-eligibility/models.go
package checkeligibility

import "scheme-workers/pkg/eligibility"

type Input struct {
	CitizenProfile eligibility.Profile `json:"citizenProfile"`
	// SchemeIDs narrows evaluation to a subset of the catalog.
	SchemeIDs []string `json:"schemeIds,omitempty"`
}

type Output struct {
	TotalSchemesChecked int                   `json:"totalSchemesChecked"`
	EligibleSchemes     int                   `json:"eligibleSchemes"`
	Results             []eligibility.Outcome `json:"results"`
	CatalogVersion      string                `json:"catalogVersion"`
	CatalogSource       string                `json:"catalogSource"` // cache, database or file
}
