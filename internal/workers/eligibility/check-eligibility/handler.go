// internal/workers/eligibility/check-eligibility/handler.go
package checkeligibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"scheme-workers/internal/common/logger"
	"scheme-workers/internal/common/metrics"
	"scheme-workers/pkg/eligibility"
	"scheme-workers/pkg/rules"
)

const (
	TaskType = "check-eligibility"

	catalogCacheKey = "rules:catalog:active"
)

var (
	ErrInvalidProfileFormat = errors.New("INVALID_PROFILE_FORMAT")
	ErrCatalogFetchFailed   = errors.New("CATALOG_FETCH_FAILED")
	ErrCatalogParseFailed   = errors.New("CATALOG_PARSE_FAILED")
	ErrCatalogEmpty         = errors.New("CATALOG_EMPTY")
)

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	evaluator *eligibility.Evaluator
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		redis:     redisClient,
		evaluator: eligibility.NewEvaluator(eligibility.WithScoreWeights(config.Weights)),
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "INVALID_PROFILE_FORMAT", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "ELIGIBILITY_CHECK_FAILED"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrInvalidProfileFormat):
			errorCode = "INVALID_PROFILE_FORMAT"
		case errors.Is(err, ErrCatalogFetchFailed):
			errorCode = "CATALOG_FETCH_FAILED"
			retries = 3
		case errors.Is(err, ErrCatalogParseFailed):
			errorCode = "CATALOG_PARSE_FAILED"
		case errors.Is(err, ErrCatalogEmpty):
			errorCode = "CATALOG_EMPTY"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.CitizenProfile == nil {
		return nil, fmt.Errorf("%w: citizen profile is required", ErrInvalidProfileFormat)
	}

	catalog, source, err := h.getCatalog(ctx)
	if err != nil {
		return nil, err
	}

	entries := catalog.Entries()
	if len(input.SchemeIDs) > 0 {
		entries = filterEntries(entries, input.SchemeIDs)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no schemes to evaluate", ErrCatalogEmpty)
	}

	report := h.evaluator.EvaluateCatalog(input.CitizenProfile, entries)

	for _, outcome := range report.Results {
		result := "ineligible"
		if outcome.Eligible {
			result = "eligible"
		}
		metrics.SchemesEvaluated.WithLabelValues(result).Inc()
		if isMalformedOutcome(outcome) {
			metrics.MalformedRules.Inc()
			h.logger.Warn("scheme rule malformed, isolated from batch", map[string]interface{}{
				"schemeId": outcome.SchemeID,
			})
		}
	}

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"schemesChecked":  report.TotalSchemesChecked,
		"eligibleSchemes": report.EligibleSchemes,
		"catalogVersion":  catalog.Version,
		"catalogSource":   source,
	})

	return &Output{
		TotalSchemesChecked: report.TotalSchemesChecked,
		EligibleSchemes:     report.EligibleSchemes,
		Results:             report.Results,
		CatalogVersion:      catalog.Version,
		CatalogSource:       source,
	}, nil
}

// getCatalog resolves the active rule catalog: Redis first, then the
// rule_catalogs table, then the configured file path as a last resort.
func (h *Handler) getCatalog(ctx context.Context) (*rules.Catalog, string, error) {
	if h.redis != nil {
		if val, err := h.redis.Get(ctx, catalogCacheKey).Result(); err == nil {
			catalog, err := rules.ParseLenient([]byte(val))
			if err == nil {
				metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
				return catalog, "cache", nil
			}
			// stale or corrupt cache entry, fall through to the store
			h.redis.Del(ctx, catalogCacheKey)
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	if h.db != nil {
		document, err := h.fetchActiveCatalog(ctx)
		if err == nil {
			catalog, perr := rules.ParseLenient([]byte(document))
			if perr != nil {
				return nil, "", fmt.Errorf("%w: %v", ErrCatalogParseFailed, perr)
			}
			if h.redis != nil {
				h.redis.Set(ctx, catalogCacheKey, document, h.config.CacheTTL)
			}
			return catalog, "database", nil
		}
		if h.config.CatalogPath == "" {
			return nil, "", fmt.Errorf("%w: %v", ErrCatalogFetchFailed, err)
		}
		h.logger.Warn("catalog store unavailable, using file fallback", map[string]interface{}{
			"error": err,
		})
	}

	if h.config.CatalogPath != "" {
		catalog, err := rules.LoadCatalog(h.config.CatalogPath)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrCatalogParseFailed, err)
		}
		return catalog, "file", nil
	}

	return nil, "", fmt.Errorf("%w: no catalog source configured", ErrCatalogFetchFailed)
}

func (h *Handler) fetchActiveCatalog(ctx context.Context) (string, error) {
	var document string
	err := h.db.QueryRowContext(ctx, `
		SELECT document
		FROM rule_catalogs
		WHERE active = true
		ORDER BY published_at DESC
		LIMIT 1`).Scan(&document)
	if err != nil {
		return "", err
	}
	return document, nil
}

func filterEntries(entries []eligibility.CatalogEntry, schemeIDs []string) []eligibility.CatalogEntry {
	wanted := make(map[string]bool, len(schemeIDs))
	for _, id := range schemeIDs {
		wanted[id] = true
	}

	filtered := make([]eligibility.CatalogEntry, 0, len(schemeIDs))
	for _, entry := range entries {
		if wanted[entry.Meta.SchemeID] {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func isMalformedOutcome(outcome eligibility.Outcome) bool {
	return len(outcome.Reasons) == 1 &&
		strings.HasPrefix(outcome.Reasons[0], "scheme rule is malformed")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
