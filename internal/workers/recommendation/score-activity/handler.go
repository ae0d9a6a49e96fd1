// internal/workers/recommendation/score-activity/handler.go
package scoreactivity

import (
	"context"
	"encoding/json"
	"time"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/common/metrics"
	"edumatch-workers/internal/matching"
	"edumatch-workers/internal/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "score-activity"

// Handler scores a single (profile, activity) pair and reports the
// per-criterion breakdown, for workflows that gate on one activity rather
// than ranking a whole candidate set.
type Handler struct {
	config       *Config
	params       matching.Params
	profiles     *profile.Store
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, params matching.Params, profiles *profile.Store, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		params:       params,
		profiles:     profiles,
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
	if err := matching.ValidateActivity(input.Activity); err != nil {
		return nil, err
	}

	var raw matching.RawProfile
	switch {
	case input.Profile != nil:
		raw = *input.Profile
	case input.UserID != "" && h.profiles != nil:
		fetched, err := h.profiles.Get(ctx, input.UserID)
		if err != nil {
			h.logger.Warn("failed to fetch user profile", map[string]interface{}{
				"userId": input.UserID,
				"error":  err.Error(),
			})
		} else {
			raw = *fetched
		}
	}

	p := matching.NormalizeProfile(raw)
	score, contribs := matching.ScoreDetailed(p, input.Activity, h.params)

	reasons := make([]string, 0, len(contribs))
	for _, c := range contribs {
		reasons = append(reasons, c.Reason)
	}

	h.logger.Info("activity scored", map[string]interface{}{
		"activityId": input.Activity.ID,
		"score":      score,
		"criteria":   len(contribs),
	})

	return &Output{
		ActivityID:   input.Activity.ID,
		Score:        score,
		Reasons:      reasons,
		MatchFactors: contribs,
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
