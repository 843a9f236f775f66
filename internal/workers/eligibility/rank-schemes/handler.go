// internal/workers/eligibility/rank-schemes/handler.go
package rankschemes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"scheme-workers/internal/common/logger"
	"scheme-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-schemes"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "RANKING_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()

	// relevance by scheme ID, normalized 0-100
	relevance := make(map[string]float64, len(input.SearchResults))
	for _, sr := range input.SearchResults {
		score := math.Min(math.Max(sr.Score*10.0, 0.0), 100.0)
		// keep the best score when the same scheme appears twice
		if prev, seen := relevance[sr.ID]; !seen || score > prev {
			relevance[sr.ID] = score
		}
	}

	seen := make(map[string]bool, len(input.EligibilityResults))
	var ranked []RankedScheme

	for _, outcome := range input.EligibilityResults {
		if seen[outcome.SchemeID] {
			continue
		}
		seen[outcome.SchemeID] = true

		relevanceScore := relevance[outcome.SchemeID]
		finalScore := outcome.Score*h.config.EligibilityWeight +
			relevanceScore*h.config.RelevanceWeight

		ranked = append(ranked, RankedScheme{
			SchemeID:         outcome.SchemeID,
			SchemeName:       outcome.SchemeName,
			FinalScore:       finalScore,
			EligibilityScore: outcome.Score,
			RelevanceScore:   relevanceScore,
			Eligible:         outcome.Eligible,
			Reasons:          outcome.Reasons,
		})
	}

	// eligible schemes always rank above ineligible ones, then by score
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Eligible != ranked[j].Eligible {
			return ranked[i].Eligible
		}
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if h.config.MaxItems > 0 && len(ranked) > h.config.MaxItems {
		ranked = ranked[:h.config.MaxItems]
	}

	duration := time.Since(start).Milliseconds()
	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(input.EligibilityResults),
		"outputCount": len(ranked),
		"durationMs":  duration,
	})

	return &Output{RankedSchemes: ranked}, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
