// internal/workers/profile/parse-profile/handler.go
package parseprofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"scheme-workers/internal/common/logger"
	"scheme-workers/internal/common/metrics"
	"scheme-workers/pkg/eligibility"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "parse-profile"

var (
	ErrInvalidProfileFormat    = errors.New("INVALID_PROFILE_FORMAT")
	ErrProfileValidationFailed = errors.New("PROFILE_VALIDATION_FAILED")
)

// profileSchema bounds what a raw citizen profile may contain: a flat
// object whose values are numbers, strings, booleans, nulls, or arrays
// of strings. Nested objects are rejected outright.
const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "oneOf": [
      {"type": "number"},
      {"type": "string"},
      {"type": "boolean"},
      {"type": "null"},
      {"type": "array", "items": {"type": "string"}}
    ]
  }
}`

var compiledProfileSchema = gojsonschema.NewStringLoader(profileSchema)

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "PROFILE_VALIDATION_FAILED"
		if errors.Is(err, ErrInvalidProfileFormat) {
			errorCode = "INVALID_PROFILE_FORMAT"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.RawProfile == nil {
		return nil, fmt.Errorf("%w: profile is missing or not a JSON object", ErrInvalidProfileFormat)
	}

	result, err := gojsonschema.Validate(compiledProfileSchema, gojsonschema.NewGoLoader(input.RawProfile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfileFormat, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrProfileValidationFailed, strings.Join(details, "; "))
	}

	profile := make(eligibility.Profile, len(input.RawProfile))
	var dropped []string

	for attr, raw := range input.RawProfile {
		scalar, ok := coerceValue(raw)
		if !ok {
			dropped = append(dropped, attr)
			continue
		}
		profile[attr] = scalar
	}
	sort.Strings(dropped)

	if len(dropped) > 0 {
		h.logger.Warn("dropped unusable profile attributes", map[string]interface{}{
			"attributes": dropped,
		})
	}

	h.logger.Info("profile parsed", map[string]interface{}{
		"attributeCount": len(profile),
		"droppedCount":   len(dropped),
	})

	return &Output{
		CitizenProfile:    profile,
		AttributeCount:    len(profile),
		DroppedAttributes: dropped,
	}, nil
}

// coerceValue normalizes a raw profile value into a Scalar. Numeric
// strings such as "45000" arrive from form sources and are promoted to
// numbers so ordering comparisons behave as users expect.
func coerceValue(raw interface{}) (eligibility.Scalar, bool) {
	if raw == nil {
		return eligibility.Scalar{}, false
	}

	if s, ok := raw.(string); ok {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" {
			if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return eligibility.Number(n), true
			}
		}
		return eligibility.Str(trimmed), true
	}

	scalar, err := eligibility.ScalarFromInterface(raw)
	if err != nil {
		return eligibility.Scalar{}, false
	}
	return scalar, true
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
