// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeSchemeFullDetails QueryType = "scheme_full_details"
	QueryTypeSchemeRules       QueryType = "scheme_rules"
	QueryTypeSchemesByCategory QueryType = "schemes_by_category"
	QueryTypeSchemeStats       QueryType = "scheme_stats"
	QueryTypeActiveCatalog     QueryType = "active_catalog"
)
