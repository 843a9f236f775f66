// internal/workers/catalog/query-schemes/models.go
package queryschemes

import "scheme-workers/internal/models"

type Input struct {
	QueryType string   `json:"queryType"`
	SchemeID  string   `json:"schemeId,omitempty"`
	SchemeIDs []string `json:"schemeIds,omitempty"`
	Category  string   `json:"category,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeSchemeFullDetails = models.QueryTypeSchemeFullDetails
	QueryTypeSchemeRules       = models.QueryTypeSchemeRules
	QueryTypeSchemesByCategory = models.QueryTypeSchemesByCategory
	QueryTypeSchemeStats       = models.QueryTypeSchemeStats
	QueryTypeActiveCatalog     = models.QueryTypeActiveCatalog
)
