// internal/matching/orchestrator.go
package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/common/metrics"
	"edumatch-workers/internal/common/observability"

	"github.com/google/uuid"
)

// Result sources reported on recommendations and metrics.
const (
	SourceExternal = "external"
	SourceLocal    = "local"
)

// SuggestionProvider is the pluggable external ranking strategy. The HTTP
// implementation lives in internal/genai; anything returning an error here is
// absorbed by the orchestrator and downgraded to local scoring.
type SuggestionProvider interface {
	Suggest(ctx context.Context, profile UserProfile, candidates []Activity, limit int) ([]MatchResult, error)
}

// Recommendation is one completed ranking request.
type Recommendation struct {
	RequestID string        `json:"requestId"`
	Source    string        `json:"source"`
	Results   []MatchResult `json:"results"`
}

// Orchestrator runs the per-request state machine: try the external provider
// when configured, validate what it returns, and fall back to the local
// ranker on any failure. The local path cannot fail once inputs are
// validated, so callers always get a result (possibly empty).
type Orchestrator struct {
	provider SuggestionProvider // nil means local-only
	params   Params
	timeout  time.Duration
	obs      *observability.Observability
	logger   logger.Logger
}

func NewOrchestrator(provider SuggestionProvider, params Params, timeout time.Duration, log logger.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Orchestrator{
		provider: provider,
		params:   params,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// WithObservability attaches the OTel recorder so requests are counted there
// as well as in the prometheus collectors.
func (o *Orchestrator) WithObservability(obs *observability.Observability) *Orchestrator {
	o.obs = obs
	return o
}

// Recommend produces a ranked recommendation for the raw profile over the
// candidate set. Only input-contract violations return an error; provider
// failures never surface to the caller.
func (o *Orchestrator) Recommend(ctx context.Context, raw RawProfile, candidates []Activity, limit int) (*Recommendation, error) {
	limit, err := o.params.ResolveLimit(limit)
	if err != nil {
		return nil, err
	}
	for _, a := range candidates {
		if err := ValidateActivity(a); err != nil {
			return nil, err
		}
	}

	requestID := uuid.NewString()
	profile := NormalizeProfile(raw)
	start := time.Now()

	if o.provider != nil {
		results, err := o.tryExternal(ctx, profile, candidates, limit)
		if err == nil {
			o.record(ctx, SourceExternal, time.Since(start))
			o.logger.Info("recommendation served by external provider", map[string]interface{}{
				"requestId": requestID,
				"results":   len(results),
			})
			return &Recommendation{RequestID: requestID, Source: SourceExternal, Results: results}, nil
		}

		metrics.ProviderFailures.WithLabelValues(failureReason(err)).Inc()
		metrics.FallbacksTotal.Inc()
		o.logger.Warn("external provider failed, falling back to local ranking", map[string]interface{}{
			"requestId": requestID,
			"reason":    failureReason(err),
			"error":     err.Error(),
		})
	}

	// Local path: inputs were already validated, so Rank cannot fail here.
	results, err := Rank(profile, candidates, limit, o.params)
	if err != nil {
		return nil, err
	}

	o.record(ctx, SourceLocal, time.Since(start))
	o.logger.Info("recommendation served by local ranker", map[string]interface{}{
		"requestId": requestID,
		"results":   len(results),
	})
	return &Recommendation{RequestID: requestID, Source: SourceLocal, Results: results}, nil
}

// tryExternal calls the provider under its own deadline. The call runs in a
// goroutine with a buffered channel so a response arriving after the deadline
// is discarded rather than applied to a request that already fell back.
func (o *Orchestrator) tryExternal(ctx context.Context, profile UserProfile, candidates []Activity, limit int) ([]MatchResult, error) {
	pctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type outcome struct {
		results []MatchResult
		err     error
	}
	ch := make(chan outcome, 1)

	go func() {
		results, err := o.provider.Suggest(pctx, profile, candidates, limit)
		ch <- outcome{results: results, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return o.acceptExternal(out.results, candidates, limit)
	case <-pctx.Done():
		return nil, errors.NewProviderTimeoutError(o.timeout)
	}
}

// acceptExternal validates a provider response against the candidate set and
// maps it onto the engine's invariants. Any violation rejects the entire
// response; it is never partially trusted.
func (o *Orchestrator) acceptExternal(results []MatchResult, candidates []Activity, limit int) ([]MatchResult, error) {
	known := make(map[string]Activity, len(candidates))
	for _, a := range candidates {
		known[a.ID] = a
	}

	seen := make(map[string]bool, len(results))
	accepted := make([]MatchResult, 0, len(results))
	for _, r := range results {
		a, ok := known[r.ActivityID]
		if !ok {
			return nil, errors.NewProviderMalformedError(fmt.Sprintf("unknown activity id %q", r.ActivityID))
		}
		if seen[r.ActivityID] {
			return nil, errors.NewProviderMalformedError(fmt.Sprintf("duplicate activity id %q", r.ActivityID))
		}
		seen[r.ActivityID] = true

		if r.Score < 0 || r.Score > 1 {
			return nil, errors.NewProviderMalformedError(fmt.Sprintf("score %v out of range for %q", r.Score, r.ActivityID))
		}
		if r.Score > 0 && len(r.Reasons) == 0 {
			return nil, errors.NewProviderMalformedError(fmt.Sprintf("missing reasons for scored activity %q", r.ActivityID))
		}
		if r.Score == 0 {
			continue
		}

		if r.Name == "" {
			r.Name = a.Name
		}
		accepted = append(accepted, r)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}
	return accepted, nil
}

func (o *Orchestrator) record(ctx context.Context, source string, elapsed time.Duration) {
	metrics.RecommendationsServed.WithLabelValues(source).Inc()
	metrics.RecommendationDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if o.obs != nil {
		o.obs.RecordRequest(ctx, source)
		o.obs.RecordDuration(ctx, elapsed, source)
	}
}

// failureReason maps absorbed provider errors onto metric labels.
func failureReason(err error) string {
	se, ok := errors.AsStandardError(err)
	if !ok {
		return "http_error"
	}
	switch se.Code {
	case errors.ErrCodeProviderTimeout:
		return "timeout"
	case errors.ErrCodeProviderMalformed:
		return "malformed"
	case errors.ErrCodeProviderUnavailable:
		return "unavailable"
	default:
		return "http_error"
	}
}
