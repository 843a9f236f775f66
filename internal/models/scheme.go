// internal/models/scheme.go
package models

// Scheme is the storage-level record for a government scheme.
type Scheme struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Ministry          string   `json:"ministry"`
	Category          string   `json:"category"`
	Description       string   `json:"description"`
	BenefitOutline    string   `json:"benefitOutline"`
	RequiredDocuments []string `json:"requiredDocuments"`
	NextSteps         []string `json:"nextSteps"`
	RulesVersion      string   `json:"rulesVersion"`
	Active            bool     `json:"active"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

// SchemeDocument is the searchable projection stored in Elasticsearch.
type SchemeDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ministry    string   `json:"ministry"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Score       float64  `json:"score,omitempty"`
}

// SchemeStats carries usage counters surfaced alongside a scheme.
type SchemeStats struct {
	SchemeID       string `json:"schemeId"`
	EvaluationRuns int    `json:"evaluationRuns"`
	EligibleCount  int    `json:"eligibleCount"`
}
