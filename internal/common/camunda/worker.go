// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"scheme-workers/internal/common/metrics"
)

// HandlerFunc is the job callback signature expected by the Zeebe client.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// CamundaWorker owns a single opened job worker subscription.
type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker subscription for the given task type.
func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handlerFunc HandlerFunc,
	logger *zap.Logger,
) *CamundaWorker {
	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		_, span := otel.Tracer("scheme-workers").Start(context.Background(), taskType)
		span.SetAttributes(
			attribute.Int64("zeebe.job.key", job.Key),
			attribute.String("zeebe.process.id", job.BpmnProcessId),
		)
		defer span.End()

		start := time.Now()
		handlerFunc(jobClient, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Close drains and stops the subscription.
func (w *CamundaWorker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
