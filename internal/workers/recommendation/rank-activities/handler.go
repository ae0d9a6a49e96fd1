// internal/workers/recommendation/rank-activities/handler.go
package rankactivities

import (
	"context"
	"encoding/json"
	"time"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/common/metrics"
	"edumatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "rank-activities"

// Handler ranks an inline candidate list against an inline profile using
// only the deterministic local scorer. Workflows use it where the external
// provider path is not wanted, e.g. re-ranking after a manual filter step.
type Handler struct {
	config       *Config
	params       matching.Params
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, params matching.Params, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		params:       params,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	limit, err := h.params.ResolveLimit(input.Limit)
	if err != nil {
		return nil, err
	}

	profile := matching.NormalizeProfile(input.Profile)
	results, err := matching.Rank(profile, input.Activities, limit, h.params)
	if err != nil {
		return nil, err
	}

	h.logger.Info("activities ranked", map[string]interface{}{
		"candidates": len(input.Activities),
		"results":    len(results),
	})
	return &Output{Results: results}, nil
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
