// pkg/eligibility/catalog.go
package eligibility

import "sort"

// EvaluateCatalog evaluates one profile against every scheme in the
// catalog. Every scheme yields an outcome (malformed rules included), so
// len(Results) always equals len(catalog). Results are sorted by descending
// score; ties keep the original catalog order.
func (e *Evaluator) EvaluateCatalog(profile Profile, catalog []CatalogEntry) Report {
	results := make([]Outcome, 0, len(catalog))
	eligible := 0

	for _, entry := range catalog {
		outcome := e.EvaluateOne(profile, entry.Rule, entry.Meta)
		if outcome.Eligible {
			eligible++
		}
		results = append(results, outcome)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return Report{
		TotalSchemesChecked: len(catalog),
		EligibleSchemes:     eligible,
		Results:             results,
	}
}
