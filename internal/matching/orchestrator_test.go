// internal/matching/orchestrator_test.go
package matching

import (
	"context"
	"fmt"
	"testing"
	"time"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

// fakeProvider scripts the external suggestion service for orchestrator tests.
type fakeProvider struct {
	results []MatchResult
	err     error
	delay   time.Duration
	calls   int
}

func (f *fakeProvider) Suggest(ctx context.Context, _ UserProfile, _ []Activity, _ int) ([]MatchResult, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, errors.NewProviderTimeoutError(f.delay)
		}
	}
	return f.results, f.err
}

func orchestratorCandidates() []Activity {
	return []Activity{
		{ID: "act-1", Name: "Pottery", Category: "arts", SkillTags: []string{"pottery"}, DurationMinutes: 60, SafetyLevel: 1, IsFeatured: true},
		{ID: "act-2", Name: "Kayaking", Category: "outdoors", DurationMinutes: 150, SafetyLevel: 3},
		{ID: "act-3", Name: "Robotics", Category: "stem", DurationMinutes: 120, SafetyLevel: 2},
	}
}

func orchestratorProfile() RawProfile {
	return RawProfile{
		Skills:      []string{"Pottery"},
		Preferences: []string{"arts"},
	}
}

func TestOrchestrator_ExternalSuccess(t *testing.T) {
	provider := &fakeProvider{
		results: []MatchResult{
			{ActivityID: "act-2", Score: 0.9, Reasons: []string{"great seasonal fit"}},
			{ActivityID: "act-1", Score: 0.7, Reasons: []string{"matches pottery"}},
		},
	}
	o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

	assert.NoError(t, err)
	assert.Equal(t, SourceExternal, rec.Source)
	assert.NotEmpty(t, rec.RequestID)
	assert.Len(t, rec.Results, 2)
	assert.Equal(t, "act-2", rec.Results[0].ActivityID)
	assert.Equal(t, 1, provider.calls)
}

func TestOrchestrator_ExternalNameBackfill(t *testing.T) {
	provider := &fakeProvider{
		results: []MatchResult{
			{ActivityID: "act-1", Score: 0.8, Reasons: []string{"fits"}},
		},
	}
	o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

	assert.NoError(t, err)
	assert.Equal(t, "Pottery", rec.Results[0].Name)
}

func TestOrchestrator_ProviderErrorFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.NewProviderFailedError(fmt.Errorf("status 500"))}
	o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

	assert.NoError(t, err)
	assert.Equal(t, SourceLocal, rec.Source)
	assert.NotEmpty(t, rec.Results)
	assert.Equal(t, "act-1", rec.Results[0].ActivityID)
}

func TestOrchestrator_ProviderTimeoutFallsBack(t *testing.T) {
	provider := &fakeProvider{
		delay:   300 * time.Millisecond,
		results: []MatchResult{{ActivityID: "act-1", Score: 0.9, Reasons: []string{"late"}}},
	}
	o := NewOrchestrator(provider, DefaultParams(), 20*time.Millisecond, logger.NewTestLogger(t))

	start := time.Now()
	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

	assert.NoError(t, err)
	assert.Equal(t, SourceLocal, rec.Source)
	assert.Less(t, time.Since(start), 250*time.Millisecond, "late provider response must not block the fallback")
}

func TestOrchestrator_MalformedResponsesFallBack(t *testing.T) {
	tests := []struct {
		name    string
		results []MatchResult
	}{
		{
			name:    "unknown activity id",
			results: []MatchResult{{ActivityID: "act-999", Score: 0.5, Reasons: []string{"?"}}},
		},
		{
			name:    "score above one",
			results: []MatchResult{{ActivityID: "act-1", Score: 1.5, Reasons: []string{"!"}}},
		},
		{
			name:    "negative score",
			results: []MatchResult{{ActivityID: "act-1", Score: -0.1, Reasons: []string{"!"}}},
		},
		{
			name:    "positive score without reasons",
			results: []MatchResult{{ActivityID: "act-1", Score: 0.5}},
		},
		{
			name: "duplicate activity id",
			results: []MatchResult{
				{ActivityID: "act-1", Score: 0.5, Reasons: []string{"a"}},
				{ActivityID: "act-1", Score: 0.4, Reasons: []string{"b"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{results: tt.results}
			o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

			rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

			assert.NoError(t, err)
			assert.Equal(t, SourceLocal, rec.Source, "a single violation must reject the whole response")
		})
	}
}

func TestOrchestrator_ExternalZeroScoresDropped(t *testing.T) {
	provider := &fakeProvider{
		results: []MatchResult{
			{ActivityID: "act-1", Score: 0.6, Reasons: []string{"good"}},
			{ActivityID: "act-2", Score: 0},
		},
	}
	o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

	assert.NoError(t, err)
	assert.Equal(t, SourceExternal, rec.Source)
	assert.Len(t, rec.Results, 1)
	assert.Equal(t, "act-1", rec.Results[0].ActivityID)
}

func TestOrchestrator_ExternalTruncatedToLimit(t *testing.T) {
	provider := &fakeProvider{
		results: []MatchResult{
			{ActivityID: "act-1", Score: 0.9, Reasons: []string{"a"}},
			{ActivityID: "act-2", Score: 0.8, Reasons: []string{"b"}},
			{ActivityID: "act-3", Score: 0.7, Reasons: []string{"c"}},
		},
	}
	o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 2)

	assert.NoError(t, err)
	assert.Len(t, rec.Results, 2)
}

func TestOrchestrator_InputErrorsPropagate(t *testing.T) {
	provider := &fakeProvider{
		results: []MatchResult{{ActivityID: "act-1", Score: 0.9, Reasons: []string{"a"}}},
	}
	o := NewOrchestrator(provider, DefaultParams(), time.Second, logger.NewTestLogger(t))

	_, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), -3)
	assert.Error(t, err)
	se, ok := errors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidLimit, se.Code)

	bad := append(orchestratorCandidates(), Activity{DurationMinutes: 60, SafetyLevel: 1})
	_, err = o.Recommend(context.Background(), orchestratorProfile(), bad, 5)
	assert.Error(t, err)
	assert.Equal(t, 0, provider.calls, "input validation happens before the provider call")
}

func TestOrchestrator_ZeroLimitUsesDefault(t *testing.T) {
	o := NewOrchestrator(nil, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 0)

	assert.NoError(t, err)
	assert.Equal(t, SourceLocal, rec.Source)
	assert.LessOrEqual(t, len(rec.Results), DefaultLimit)
}

func TestOrchestrator_ConfiguredLimitBounds(t *testing.T) {
	// Availability makes every candidate score, so only the limit bounds
	// decide how many come back.
	profile := orchestratorProfile()
	profile.Availability = []string{"weekends"}

	params := DefaultParams()
	params.DefaultLimit = 1
	params.MaxLimit = 2
	o := NewOrchestrator(nil, params, time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), profile, orchestratorCandidates(), 0)
	assert.NoError(t, err)
	assert.Len(t, rec.Results, 1, "zero limit resolves to the configured default")

	rec, err = o.Recommend(context.Background(), profile, orchestratorCandidates(), 10)
	assert.NoError(t, err)
	assert.Len(t, rec.Results, 2, "oversized requests clamp to the configured maximum")
}

func TestOrchestrator_NilProviderServesLocally(t *testing.T) {
	o := NewOrchestrator(nil, DefaultParams(), time.Second, logger.NewTestLogger(t))

	rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)

	assert.NoError(t, err)
	assert.Equal(t, SourceLocal, rec.Source)
	assert.NotEmpty(t, rec.Results)
}

func TestOrchestrator_FallbackNeverFailsOnProviderTrouble(t *testing.T) {
	// Whatever the provider does, a request with valid inputs gets an answer.
	providers := []*fakeProvider{
		{err: errors.NewProviderTimeoutError(time.Second)},
		{err: errors.NewProviderMalformedError("garbage")},
		{err: fmt.Errorf("plain transport error")},
		{results: nil},
	}

	for _, p := range providers {
		o := NewOrchestrator(p, DefaultParams(), 50*time.Millisecond, logger.NewTestLogger(t))
		rec, err := o.Recommend(context.Background(), orchestratorProfile(), orchestratorCandidates(), 5)
		assert.NoError(t, err)
		assert.NotNil(t, rec)
	}
}
