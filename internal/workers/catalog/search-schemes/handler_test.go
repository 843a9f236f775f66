// internal/workers/catalog/search-schemes/handler_test.go
package searchschemes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"scheme-workers/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultIndex: "schemes",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	return esClient
}

func TestHandler_ErrorMapping(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"index not found", ErrIndexNotFound, "INDEX_NOT_FOUND"},
		{"search timeout", ErrSearchTimeout, "SEARCH_TIMEOUT"},
		{"search query failed", ErrSearchQueryFailed, "SEARCH_QUERY_FAILED"},
		{"connection failed", ErrElasticsearchConnectionFailed, "ELASTICSEARCH_CONNECTION_FAILED"},
		{"unknown error", errors.New("random error"), "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := handler.mapErrorToCode(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestHandler_RetryCounts(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	assert.Equal(t, int32(3), handler.getRetryCount(ErrSearchQueryFailed))
	assert.Equal(t, int32(3), handler.getRetryCount(ErrElasticsearchConnectionFailed))
	assert.Equal(t, int32(2), handler.getRetryCount(ErrSearchTimeout))
	assert.Equal(t, int32(0), handler.getRetryCount(ErrIndexNotFound))
	assert.Equal(t, int32(0), handler.getRetryCount(errors.New("random error")))
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	output, err := handler.execute(context.Background(), nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be nil")
	assert.Nil(t, output)
}

func TestHandler_Execute_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	t.Run("scheme search with keywords", func(t *testing.T) {
		input := &Input{
			QueryType: "scheme_search",
			Filters: map[string]interface{}{
				"keywords": "pension",
			},
			Pagination: Pagination{From: 0, Size: 10},
		}

		output, err := handler.execute(context.Background(), input)
		if err != nil {
			t.Skipf("scheme index unavailable: %v", err)
			return
		}

		assert.NotNil(t, output)
		assert.GreaterOrEqual(t, output.TotalHits, int64(0))
	})

	t.Run("invalid query type", func(t *testing.T) {
		input := &Input{
			QueryType: "invalid_query_type",
			Filters:   map[string]interface{}{},
		}

		output, err := handler.execute(context.Background(), input)
		assert.Error(t, err)
		assert.Nil(t, output)
	})

	t.Run("missing index falls back to default", func(t *testing.T) {
		input := &Input{
			IndexName: "",
			QueryType: "scheme_search",
			Filters:   map[string]interface{}{},
		}

		// with an empty index name the configured default is used, so
		// this must not fail with INDEX_NOT_FOUND from the builder
		_, err := handler.execute(context.Background(), input)
		assert.NotErrorIs(t, err, ErrIndexNotFound)
	})
}
