// internal/workers/data-access/query-activities/handler.go
package queryactivities

import (
	"context"
	"encoding/json"
	"time"

	"edumatch-workers/internal/catalog"
	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "query-activities"

// Handler fetches a filtered candidate set from the configured catalog store
// so downstream workflow steps can rank or score against it.
type Handler struct {
	config       *Config
	catalog      catalog.Store
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store catalog.Store, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		catalog:      store,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, errors.NewInvalidInputError("parse input: "+err.Error()))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeInvalidInput)).Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		code := "INTERNAL_ERROR"
		if se, ok := errors.AsStandardError(err); ok {
			code = string(se.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}
	if input.Query.Limit < 0 {
		return nil, errors.NewInvalidInputError("query limit cannot be negative")
	}

	activities, err := h.catalog.Find(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	h.logger.Info("catalog queried", map[string]interface{}{
		"category": input.Query.Category,
		"season":   input.Query.Season,
		"count":    len(activities),
	})

	return &Output{
		Activities: activities,
		Count:      len(activities),
	}, nil
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
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
