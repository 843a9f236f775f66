// pkg/rules/schema.go
package rules

import "scheme-workers/pkg/eligibility"

// Catalog is the serialized scheme-rule catalog the platform distributes:
// the output of the rule-extraction pipeline, the content of the
// scheme_rules store, and the input to the eligibility engine.
type Catalog struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated,omitempty"`
	Schemes     []SchemeRules `json:"schemes"`
}

// SchemeRules is one scheme's rules plus its descriptive metadata.
type SchemeRules struct {
	SchemeID          string           `json:"scheme_id"`
	SchemeName        string           `json:"scheme_name"`
	Eligibility       eligibility.Rule `json:"eligibility"`
	RequiredInputs    []string         `json:"required_inputs,omitempty"`
	RequiredDocuments []string         `json:"required_documents,omitempty"`
	BenefitOutline    string           `json:"benefit_outline,omitempty"`
	NextSteps         string           `json:"next_steps,omitempty"`
}

// Meta extracts the descriptive portion of the scheme document.
func (s SchemeRules) Meta() eligibility.SchemeMeta {
	return eligibility.SchemeMeta{
		SchemeID:          s.SchemeID,
		SchemeName:        s.SchemeName,
		RequiredInputs:    s.RequiredInputs,
		RequiredDocuments: s.RequiredDocuments,
		BenefitOutline:    s.BenefitOutline,
		NextSteps:         s.NextSteps,
	}
}

// Entry pairs the scheme's rule and metadata for the engine.
func (s SchemeRules) Entry() eligibility.CatalogEntry {
	return eligibility.CatalogEntry{Meta: s.Meta(), Rule: s.Eligibility}
}

// Entries converts the whole catalog for EvaluateCatalog, preserving
// catalog order.
func (c *Catalog) Entries() []eligibility.CatalogEntry {
	entries := make([]eligibility.CatalogEntry, 0, len(c.Schemes))
	for _, s := range c.Schemes {
		entries = append(entries, s.Entry())
	}
	return entries
}
