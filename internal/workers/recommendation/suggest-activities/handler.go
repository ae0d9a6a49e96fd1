// internal/workers/recommendation/suggest-activities/handler.go
package suggestactivities

import (
	"context"
	"encoding/json"
	"time"

	"edumatch-workers/internal/catalog"
	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/common/metrics"
	"edumatch-workers/internal/common/observability"
	"edumatch-workers/internal/matching"
	"edumatch-workers/internal/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "suggest-activities"

// Handler runs the full recommendation pipeline for one process instance:
// resolve the profile, resolve the candidate set, then hand both to the
// orchestrator, which tries the external provider and falls back to local
// ranking on any provider failure.
type Handler struct {
	config       *Config
	orchestrator *matching.Orchestrator
	profiles     *profile.Store
	catalog      catalog.Store
	tracing      *observability.Tracing
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, orchestrator *matching.Orchestrator, profiles *profile.Store, store catalog.Store, tracing *observability.Tracing, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		orchestrator: orchestrator,
		profiles:     profiles,
		catalog:      store,
		tracing:      tracing,
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

// Execute resolves inputs and produces a recommendation. Exported so callers
// outside the Zeebe loop (and tests) can run the pipeline directly.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	if h.tracing != nil {
		var end func()
		ctx, end = h.tracing.StartSpan(ctx, TaskType)
		defer end()
	}

	raw := h.resolveProfile(ctx, input)

	candidates := input.Activities
	if len(candidates) == 0 {
		if h.catalog == nil {
			return nil, errors.NewInvalidInputError("no activities supplied and no catalog configured")
		}
		q := catalog.Query{}
		if input.Query != nil {
			q = *input.Query
		}
		found, err := h.catalog.Find(ctx, q)
		if err != nil {
			return nil, err
		}
		candidates = found
	}

	rec, err := h.orchestrator.Recommend(ctx, raw, candidates, input.Limit)
	if err != nil {
		return nil, err
	}

	h.logger.Info("recommendation produced", map[string]interface{}{
		"requestId":  rec.RequestID,
		"source":     rec.Source,
		"candidates": len(candidates),
		"results":    len(rec.Results),
	})

	return &Output{
		RequestID:       rec.RequestID,
		Source:          rec.Source,
		Recommendations: rec.Results,
	}, nil
}

// resolveProfile prefers the inline profile, then the store. A store failure
// degrades to an empty profile so the request still ranks on activity-side
// criteria.
func (h *Handler) resolveProfile(ctx context.Context, input *Input) matching.RawProfile {
	if input.Profile != nil {
		return *input.Profile
	}
	if input.UserID == "" || h.profiles == nil {
		return matching.RawProfile{}
	}

	raw, err := h.profiles.Get(ctx, input.UserID)
	if err != nil {
		h.logger.Warn("failed to fetch user profile", map[string]interface{}{
			"userId": input.UserID,
			"error":  err.Error(),
		})
		return matching.RawProfile{}
	}
	return *raw
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
