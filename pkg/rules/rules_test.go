// pkg/rules/rules_test.go
package rules

import (
	"testing"

	"scheme-workers/pkg/eligibility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog("testdata/catalog.json")
	require.NoError(t, err)

	assert.Equal(t, "1.0", catalog.Version)
	require.Len(t, catalog.Schemes, 3)

	kisan := catalog.Schemes[0]
	assert.Equal(t, "pm-kisan", kisan.SchemeID)
	assert.Len(t, kisan.Eligibility.All, 2)
	assert.Len(t, kisan.Eligibility.Disqualifiers, 1)
	assert.Equal(t, []string{"aadhaar", "land_record", "bank_passbook"}, kisan.RequiredDocuments)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog("testdata/does-not-exist.json")
	assert.Error(t, err)
}

func TestParse_RejectsUnknownOperator(t *testing.T) {
	doc := `{
		"version": "1.0",
		"schemes": [{
			"scheme_id": "s1",
			"scheme_name": "Scheme One",
			"eligibility": {"all": [{"attribute": "age", "op": "regex", "value": ".*"}]}
		}]
	}`

	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog document")
}

func TestParse_RejectsMissingSchemeFields(t *testing.T) {
	doc := `{
		"version": "1.0",
		"schemes": [{"scheme_name": "No ID", "eligibility": {}}]
	}`

	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme_id")
}

func TestParse_RejectsDuplicateSchemeIDs(t *testing.T) {
	doc := `{
		"version": "1.0",
		"schemes": [
			{"scheme_id": "s1", "scheme_name": "One", "eligibility": {}},
			{"scheme_id": "s1", "scheme_name": "Two", "eligibility": {}}
		]
	}`

	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate scheme_id")
}

func TestParse_RejectsBetweenWithoutBounds(t *testing.T) {
	doc := `{
		"version": "1.0",
		"schemes": [{
			"scheme_id": "s1",
			"scheme_name": "Scheme One",
			"eligibility": {"all": [{"attribute": "age", "op": "between", "value": 18}]}
		}]
	}`

	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[low, high]")
}

func TestParseLenient_AcceptsMalformedScheme(t *testing.T) {
	// A bad operator fails strict validation but must still decode so
	// evaluation can isolate the broken scheme instead of losing the catalog.
	doc := `{
		"version": "1.0",
		"schemes": [
			{"scheme_id": "good", "scheme_name": "Good", "eligibility": {"all": [{"attribute": "age", "op": ">=", "value": 18}]}},
			{"scheme_id": "bad", "scheme_name": "Bad", "eligibility": {"all": [{"attribute": "age", "op": "~=", "value": 18}]}}
		]
	}`

	_, err := Parse([]byte(doc))
	require.Error(t, err)

	catalog, err := ParseLenient([]byte(doc))
	require.NoError(t, err)
	assert.Len(t, catalog.Schemes, 2)
}

func TestParseLenient_RejectsInvalidJSON(t *testing.T) {
	_, err := ParseLenient([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseLenient_RejectsEmptyCatalog(t *testing.T) {
	_, err := ParseLenient([]byte(`{"version": "1.0", "schemes": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schemes")
}

func TestCatalog_Entries(t *testing.T) {
	catalog, err := LoadCatalog("testdata/catalog.json")
	require.NoError(t, err)

	entries := catalog.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "pm-kisan", entries[0].Meta.SchemeID)
	assert.Equal(t, "old-age-pension", entries[1].Meta.SchemeID)

	// The loaded catalog evaluates end to end.
	report := eligibility.NewEvaluator().EvaluateCatalog(eligibility.Profile{
		"is_farmer":          eligibility.Bool(true),
		"land_size_acres":    eligibility.Number(2),
		"has_government_job": eligibility.Bool(false),
		"age":                eligibility.Number(45),
		"income":             eligibility.Number(300000),
		"is_student":         eligibility.Bool(false),
	}, entries)

	assert.Equal(t, 3, report.TotalSchemesChecked)
	assert.Equal(t, 1, report.EligibleSchemes)
	assert.Equal(t, "pm-kisan", report.Results[0].SchemeID)
}
