// internal/workers/catalog/query-schemes/queries/scheme.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

func SchemeFullDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	schemeID, ok := params["schemeId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, ministry, category, description, benefitOutline string
	var requiredDocuments, nextSteps []string
	var rulesVersion string
	var active bool
	var createdAt, updatedAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, name, ministry, category, description, benefit_outline,
		       required_documents, next_steps, rules_version, active,
		       created_at, updated_at
		FROM schemes
		WHERE id = $1`, schemeID).Scan(
		&id, &name, &ministry, &category, &description, &benefitOutline,
		pq.Array(&requiredDocuments), pq.Array(&nextSteps),
		&rulesVersion, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                id,
		"name":              name,
		"ministry":          ministry,
		"category":          category,
		"description":       description,
		"benefitOutline":    benefitOutline,
		"requiredDocuments": requiredDocuments,
		"nextSteps":         nextSteps,
		"rulesVersion":      rulesVersion,
		"active":            active,
		"createdAt":         createdAt,
		"updatedAt":         updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func SchemeRules(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	schemeID, ok := params["schemeId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, rulesJSON, version, updatedAt string
	err := db.QueryRowContext(ctx, `
		SELECT scheme_id, rules_json, version, updated_at
		FROM scheme_rules
		WHERE scheme_id = $1`, schemeID).Scan(
		&id, &rulesJSON, &version, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"schemeId":  id,
		"rulesJson": rulesJSON,
		"version":   version,
		"updatedAt": updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func SchemesByCategory(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	category, ok := params["category"].(string)
	if !ok || category == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, ministry, category, description, rules_version
		FROM schemes
		WHERE category = $1 AND active = true
		ORDER BY name`, category)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, name, ministry, cat, description, rulesVersion string
		if err := rows.Scan(&id, &name, &ministry, &cat, &description, &rulesVersion); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":           id,
			"name":         name,
			"ministry":     ministry,
			"category":     cat,
			"description":  description,
			"rulesVersion": rulesVersion,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func SchemeStats(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	schemeIDs, ok := params["schemeIds"].([]string)
	if !ok || len(schemeIDs) == 0 {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	placeholders := make([]string, len(schemeIDs))
	args := make([]interface{}, len(schemeIDs))
	for i, id := range schemeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT scheme_id, evaluation_runs, eligible_count
		FROM scheme_stats
		WHERE scheme_id IN (%s)`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var schemeID string
		var evaluationRuns, eligibleCount int
		if err := rows.Scan(&schemeID, &evaluationRuns, &eligibleCount); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"schemeId":       schemeID,
			"evaluationRuns": evaluationRuns,
			"eligibleCount":  eligibleCount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

// ActiveCatalog returns the most recently published rule catalog
// document as raw JSON text, ready for the rule parser.
func ActiveCatalog(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	var document, version, publishedAt string
	err := db.QueryRowContext(ctx, `
		SELECT document, version, published_at
		FROM rule_catalogs
		WHERE active = true
		ORDER BY published_at DESC
		LIMIT 1`).Scan(&document, &version, &publishedAt)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"document":    document,
		"version":     version,
		"publishedAt": publishedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
