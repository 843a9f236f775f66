// internal/workers/catalog/query-schemes/handler_test.go
package queryschemes

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"scheme-workers/internal/common/logger"
	"scheme-workers/internal/models"
	"scheme-workers/internal/workers/catalog/query-schemes/queries"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createValidInput(queryType models.QueryType) *Input {
	input := &Input{
		QueryType: string(queryType),
	}

	switch queryType {
	case models.QueryTypeSchemeFullDetails:
		input.SchemeID = "scheme-old-age-pension"
	case models.QueryTypeSchemeRules:
		input.SchemeID = "scheme-old-age-pension"
	case models.QueryTypeSchemesByCategory:
		input.Category = "pension"
	case models.QueryTypeSchemeStats:
		input.SchemeIDs = []string{"scheme-old-age-pension", "scheme-crop-insurance"}
	}

	return input
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		queryType      models.QueryType
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:      "scheme full details",
			queryType: models.QueryTypeSchemeFullDetails,
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "name", "ministry", "category", "description", "benefit_outline",
					"required_documents", "next_steps", "rules_version", "active",
					"created_at", "updated_at",
				}).AddRow(
					"scheme-old-age-pension", "Old Age Pension", "Ministry of Rural Development",
					"pension", "Monthly pension for senior citizens", "Rs 1000 per month",
					"{aadhaar,age-proof}", "{apply-at-panchayat}", "v3", true,
					"2023-01-01", "2023-12-01",
				)
				mock.ExpectQuery(`SELECT id, name, ministry, category, description, benefit_outline, required_documents, next_steps, rules_version, active, created_at, updated_at FROM schemes WHERE id = \$1`).
					WithArgs("scheme-old-age-pension").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)
				assert.GreaterOrEqual(t, output.QueryExecutionTime, int64(0))

				data := output.Data.(map[string]interface{})
				assert.Equal(t, "scheme-old-age-pension", data["id"])
				assert.Equal(t, "Old Age Pension", data["name"])
				assert.Equal(t, "pension", data["category"])
				assert.Equal(t, []string{"aadhaar", "age-proof"}, data["requiredDocuments"])
				assert.Equal(t, true, data["active"])
			},
		},
		{
			name:      "scheme rules",
			queryType: models.QueryTypeSchemeRules,
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"scheme_id", "rules_json", "version", "updated_at",
				}).AddRow(
					"scheme-old-age-pension", `{"all":[{"attribute":"age","op":">=","value":60}]}`,
					"v3", "2023-12-01",
				)
				mock.ExpectQuery(`SELECT scheme_id, rules_json, version, updated_at FROM scheme_rules WHERE scheme_id = \$1`).
					WithArgs("scheme-old-age-pension").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				data := output.Data.(map[string]interface{})
				assert.Equal(t, "scheme-old-age-pension", data["schemeId"])
				assert.Equal(t, "v3", data["version"])
				assert.Contains(t, data["rulesJson"], `"attribute":"age"`)
			},
		},
		{
			name:      "schemes by category",
			queryType: models.QueryTypeSchemesByCategory,
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "name", "ministry", "category", "description", "rules_version",
				}).AddRow(
					"scheme-old-age-pension", "Old Age Pension", "Ministry of Rural Development",
					"pension", "Monthly pension for senior citizens", "v3",
				).AddRow(
					"scheme-widow-pension", "Widow Pension", "Ministry of Rural Development",
					"pension", "Monthly pension for widows", "v2",
				)
				mock.ExpectQuery(`SELECT id, name, ministry, category, description, rules_version FROM schemes WHERE category = \$1 AND active = true ORDER BY name`).
					WithArgs("pension").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, 2, len(data))
				assert.Equal(t, "scheme-old-age-pension", data[0]["id"])
				assert.Equal(t, "scheme-widow-pension", data[1]["id"])
			},
		},
		{
			name:      "scheme stats",
			queryType: models.QueryTypeSchemeStats,
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"scheme_id", "evaluation_runs", "eligible_count",
				}).AddRow(
					"scheme-old-age-pension", 1042, 388,
				).AddRow(
					"scheme-crop-insurance", 512, 97,
				)
				mock.ExpectQuery(`SELECT scheme_id, evaluation_runs, eligible_count FROM scheme_stats WHERE scheme_id IN \(\$1, \$2\)`).
					WithArgs("scheme-old-age-pension", "scheme-crop-insurance").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, 1042, data[0]["evaluationRuns"])
				assert.Equal(t, 97, data[1]["eligibleCount"])
			},
		},
		{
			name:      "active catalog",
			queryType: models.QueryTypeActiveCatalog,
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"document", "version", "published_at",
				}).AddRow(
					`{"schemes":[]}`, "2023-12", "2023-12-01",
				)
				mock.ExpectQuery(`SELECT document, version, published_at FROM rule_catalogs WHERE active = true ORDER BY published_at DESC LIMIT 1`).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				data := output.Data.(map[string]interface{})
				assert.Equal(t, `{"schemes":[]}`, data["document"])
				assert.Equal(t, "2023-12", data["version"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			input := createValidInput(tt.queryType)

			output, err := handler.execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())

			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, ministry, category, description, benefit_outline, required_documents, next_steps, rules_version, active, created_at, updated_at FROM schemes WHERE id = \$1`).
		WithArgs("scheme-old-age-pension").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("scheme-old-age-pension"))

	config := createTestConfig()
	config.Timeout = 50 * time.Millisecond

	handler := NewHandler(config, db, createTestLogger(t))
	input := createValidInput(models.QueryTypeSchemeFullDetails)

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	output, err := handler.execute(ctx, input)

	if err != nil {
		assert.True(t, errors.Is(err, ErrQueryTimeout) ||
			errors.Is(err, context.DeadlineExceeded) ||
			ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline"))
	} else {
		assert.Nil(t, output)
	}
}

func TestHandler_Execute_QueryErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		mockQuery     func(mock sqlmock.Sqlmock)
		expectedErr   error
		errorContains string
	}{
		{
			name: "unknown query type",
			input: &Input{
				QueryType: "unknown_query",
			},
			mockQuery:     func(mock sqlmock.Sqlmock) {},
			expectedErr:   ErrInvalidQueryType,
			errorContains: "INVALID_QUERY_TYPE",
		},
		{
			name:  "database error",
			input: createValidInput(models.QueryTypeSchemeFullDetails),
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, ministry, category, description, benefit_outline, required_documents, next_steps, rules_version, active, created_at, updated_at FROM schemes WHERE id = \$1`).
					WithArgs("scheme-old-age-pension").
					WillReturnError(errors.New("connection reset by peer"))
			},
			expectedErr:   ErrQueryExecutionFailed,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name: "missing scheme ID",
			input: &Input{
				QueryType: string(models.QueryTypeSchemeFullDetails),
			},
			mockQuery:     func(mock sqlmock.Sqlmock) {},
			expectedErr:   queries.ErrMissingParam,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name:  "no rows found",
			input: createValidInput(models.QueryTypeSchemeRules),
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT scheme_id, rules_json, version, updated_at FROM scheme_rules WHERE scheme_id = \$1`).
					WithArgs("scheme-old-age-pension").
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr:   ErrQueryExecutionFailed,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))

			output, err := handler.execute(context.Background(), tt.input)

			assert.Error(t, err)
			assert.Nil(t, output)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))

	output, err := handler.execute(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, output)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkExecute_SchemeRules(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	for i := 0; i < b.N; i++ {
		rows := sqlmock.NewRows([]string{
			"scheme_id", "rules_json", "version", "updated_at",
		}).AddRow("scheme-old-age-pension", `{"all":[]}`, "v3", "2023-12-01")
		mock.ExpectQuery(`SELECT scheme_id, rules_json, version, updated_at FROM scheme_rules WHERE scheme_id = \$1`).
			WithArgs("scheme-old-age-pension").
			WillReturnRows(rows)
	}

	handler := NewHandler(createTestConfig(), db, logger.NewNoOpLogger())
	input := createValidInput(models.QueryTypeSchemeRules)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.execute(context.Background(), input)
	}
}
