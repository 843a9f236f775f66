// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCatalogFetchFailedError(fmt.Errorf("connection refused"))
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "CATALOG_FETCH_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Equal(t, "CATALOG_FETCH_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableGetsZeroRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewRuleMalformedError("old-age-pension", fmt.Errorf("unknown op")))

	assert.Equal(t, "RULE_MALFORMED", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Contains(t, bpmnErr.Details, "old-age-pension")
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeCatalogFetchFailed, 3},
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeInvalidProfileFormat, 0},
		{ErrCodeCatalogEmpty, 0},
		{ErrCodeInvalidQueryType, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retries, GetRetryCount(tt.code))
			assert.Equal(t, tt.retries > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PROFILE", GetErrorCategory(ErrCodeInvalidProfileFormat))
	assert.Equal(t, "RULES", GetErrorCategory(ErrCodeUnknownOperator))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeCatalogEmpty))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrorCode("SOMETHING_ELSE")))
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewSearchTimeoutError("scheme_search"))
	vars := bpmnErr.ToErrorVariables()

	require.Equal(t, "SEARCH_TIMEOUT", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	assert.NotEmpty(t, vars["timestamp"])
}
