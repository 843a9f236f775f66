// internal/workers/eligibility/rank-schemes/models.go
package rankschemes

import "scheme-workers/pkg/eligibility"

type Input struct {
	EligibilityResults []eligibility.Outcome `json:"eligibilityResults"`
	SearchResults      []SearchResult        `json:"searchResults"`
}

type SearchResult struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"` // Elasticsearch _score
	Source map[string]interface{} `json:"_source"`
}

type Output struct {
	RankedSchemes []RankedScheme `json:"rankedSchemes"`
}

type RankedScheme struct {
	SchemeID         string   `json:"schemeId"`
	SchemeName       string   `json:"schemeName"`
	FinalScore       float64  `json:"finalScore"`
	EligibilityScore float64  `json:"eligibilityScore"`
	RelevanceScore   float64  `json:"relevanceScore"`
	Eligible         bool     `json:"isEligible"`
	Reasons          []string `json:"reasons,omitempty"`
}
