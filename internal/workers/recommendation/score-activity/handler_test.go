// internal/workers/recommendation/score-activity/handler_test.go
package scoreactivity

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/matching"
	"edumatch-workers/internal/profile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, profiles *profile.Store) *Handler {
	t.Helper()
	return NewHandler(
		&Config{Timeout: 5 * time.Second, CacheTTL: time.Minute},
		matching.DefaultParams(),
		profiles,
		logger.NewTestLogger(t),
	)
}

func potteryActivity() matching.Activity {
	return matching.Activity{
		ID:              "act-1",
		Name:            "Pottery",
		Category:        "arts",
		SkillTags:       []string{"pottery"},
		DurationMinutes: 60,
		SafetyLevel:     1,
		IsFeatured:      true,
	}
}

func TestHandler_Execute_WithInlineProfile(t *testing.T) {
	handler := newTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{
		Profile:  &matching.RawProfile{Skills: []string{"pottery"}, Preferences: []string{"arts"}},
		Activity: potteryActivity(),
	})

	assert.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "act-1", output.ActivityID)
	// 0.15 skill + 0.20 category + 0.10 short + 0.10 safety + 0.05 featured
	assert.InDelta(t, 0.60, output.Score, 1e-9)
	assert.Len(t, output.Reasons, 5)
	assert.Len(t, output.MatchFactors, 5)
	for _, f := range output.MatchFactors {
		assert.NotEmpty(t, f.Criterion)
		assert.NotEmpty(t, f.Reason)
	}
}

func TestHandler_Execute_FetchesProfileFromStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	profiles := profile.NewStore(db, rdb, time.Minute, logger.NewTestLogger(t))

	skills, _ := json.Marshal([]string{"pottery"})
	prefs, _ := json.Marshal([]string{"arts"})
	avail, _ := json.Marshal([]string{})
	mock.ExpectQuery("SELECT skills, preferences, availability, location").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"skills", "preferences", "availability", "location"}).
			AddRow(skills, prefs, avail, ""))

	handler := newTestHandler(t, profiles)

	output, err := handler.Execute(context.Background(), &Input{
		UserID:   "user-1",
		Activity: potteryActivity(),
	})

	assert.NoError(t, err)
	assert.InDelta(t, 0.60, output.Score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileFetchFailureDegrades(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	profiles := profile.NewStore(db, nil, time.Minute, logger.NewTestLogger(t))
	mock.ExpectQuery("SELECT skills, preferences, availability, location").
		WillReturnError(context.DeadlineExceeded)

	handler := newTestHandler(t, profiles)

	output, err := handler.Execute(context.Background(), &Input{
		UserID:   "user-1",
		Activity: potteryActivity(),
	})

	// The pair still scores on activity-side criteria.
	assert.NoError(t, err)
	// 0.10 short + 0.10 safety (empty profile counts as novice) + 0.05 featured
	assert.InDelta(t, 0.25, output.Score, 1e-9)
}

func TestHandler_Execute_InvalidActivity(t *testing.T) {
	handler := newTestHandler(t, nil)

	_, err := handler.Execute(context.Background(), &Input{
		Profile:  &matching.RawProfile{},
		Activity: matching.Activity{Name: "missing id", DurationMinutes: 60, SafetyLevel: 1},
	})

	assert.Error(t, err)
}

func TestHandler_Execute_ZeroScorePair(t *testing.T) {
	handler := newTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{
		Profile: &matching.RawProfile{Skills: []string{"a", "b", "c"}},
		Activity: matching.Activity{
			ID:              "act-x",
			Category:        "history",
			DurationMinutes: 240,
			SafetyLevel:     5,
		},
	})

	assert.NoError(t, err)
	assert.Zero(t, output.Score)
	assert.Empty(t, output.Reasons)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := newTestHandler(t, nil)

	_, err := handler.Execute(context.Background(), nil)

	assert.Error(t, err)
}
