// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"teamfit-workers/internal/common/config"
	"teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/metrics"
	"teamfit-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// StartWorker opens a job worker for taskType. Every job is counted in the
// active gauge and timed.
func StartWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler worker.JobHandler,
	log logger.Logger,
) worker.JobWorker {
	wrapped := func(jc worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		started := time.Now()
		handler(jc, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	}

	w := client.NewJobWorker().
		JobType(taskType).
		Handler(wrapped).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": cfg.MaxJobsActive,
		"timeoutMs":     cfg.Timeout,
	})
	return w
}

// JobResponder completes or fails jobs for one task type and keeps the
// outcome metrics and spans.
type JobResponder struct {
	taskType     string
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	retry        *RetryConfig
}

// NewJobResponder builds a responder. obs may be nil.
func NewJobResponder(taskType string, log logger.Logger, obs *observability.Observability) *JobResponder {
	return &JobResponder{
		taskType:     taskType,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		obs:          obs,
		retry:        DefaultRetryConfig,
	}
}

// Begin starts the job's span. The returned func must be called with the
// job's final error once it has been completed or failed.
func (r *JobResponder) Begin(ctx context.Context, job entities.Job) (context.Context, func(error)) {
	if r.obs == nil {
		return ctx, func(error) {}
	}
	started := time.Now()
	spanCtx, span := r.obs.StartJobSpan(ctx, r.taskType, job.Key)
	return spanCtx, func(err error) {
		r.obs.EndJobSpan(spanCtx, span, r.taskType, started, err)
	}
}

// Complete sends the job's output variables, retrying transient gateway errors.
func (r *JobResponder) Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		r.Fail(ctx, client, job, errors.NewInvalidInputError(err.Error()))
		return
	}

	err = Retry(ctx, r.retry, r.logger, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}

// Fail reports err through the shared error handler.
func (r *JobResponder) Fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := r.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(r.taskType, bpmnErr.Code).Inc()
}
