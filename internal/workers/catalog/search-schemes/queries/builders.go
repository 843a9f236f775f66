// internal/workers/catalog/search-schemes/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// SchemeQuery defines the structure of a search request against the
// scheme index.
type SchemeQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	SchemeID   string
	Category   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, sq SchemeQuery) (*esapi.SearchRequest, error) {
	if sq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch sq.QueryType {
	case "scheme_search":
		queryBody = buildSchemeSearchQuery(sq)
	case "related_schemes":
		queryBody = buildRelatedSchemesQuery(sq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, sq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{sq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &sq.Pagination.From,
		Size:   &sq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildSchemeSearchQuery builds the main scheme search query dynamically
func buildSchemeSearchQuery(sq SchemeQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Free-text search over the citizen-facing fields
	if keywords, ok := sq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "description^2", "keywords"},
				"type":   "best_fields",
			},
		})
	}

	// Category filter
	if category, ok := sq.Filters["category"].(string); ok && category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		})
	} else if sq.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": sq.Category},
		})
	}

	// Ministry filter
	if ministry, ok := sq.Filters["ministry"].(string); ok && ministry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"ministry": ministry},
		})
	}

	// State filter: schemes tagged with states they apply in
	if states, ok := sq.Filters["states"].([]interface{}); ok && len(states) > 0 {
		terms := make([]string, 0, len(states))
		for _, st := range states {
			if s, ok := st.(string); ok {
				terms = append(terms, s)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"states": terms},
			})
		}
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := sq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "name":
			query["sort"] = []map[string]interface{}{{"name": "asc"}}
		case "ministry":
			query["sort"] = []map[string]interface{}{{"ministry": "asc"}}
		}
	}

	return query
}

// buildRelatedSchemesQuery builds a "similar schemes" query
func buildRelatedSchemesQuery(sq SchemeQuery) map[string]interface{} {
	if sq.SchemeID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "description", "keywords"},
				"like": []map[string]interface{}{
					{"_index": sq.Index, "_id": sq.SchemeID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}
