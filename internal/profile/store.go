// internal/profile/store.go
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/matching"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "user:profile:"

// Store loads stored learner profiles, redis first, postgres on a miss.
// Profiles are sparse on disk; callers normalize before scoring.
type Store struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Store{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "profile-store"}),
	}
}

// Get fetches the raw profile for a user. A cache miss falls through to
// postgres and repopulates the cache; sql.ErrNoRows surfaces as a
// PROFILE_FETCH_FAILED so callers can decide whether to degrade.
func (s *Store) Get(ctx context.Context, userID string) (*matching.RawProfile, error) {
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	cacheKey := cacheKeyPrefix + userID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var raw matching.RawProfile
			if err := json.Unmarshal([]byte(val), &raw); err == nil {
				return &raw, nil
			}
			// Corrupt cache entry, drop it and refetch.
			s.redis.Del(ctx, cacheKey)
		}
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT skills, preferences, availability, location
		FROM user_profiles WHERE user_id = $1`, userID)

	var raw matching.RawProfile
	var skills, preferences, availability []byte
	var location sql.NullString
	if err := row.Scan(&skills, &preferences, &availability, &location); err != nil {
		return nil, errors.NewProfileFetchFailedError(userID, err)
	}

	if err := json.Unmarshal(skills, &raw.Skills); err != nil {
		raw.Skills = nil
	}
	if err := json.Unmarshal(preferences, &raw.Preferences); err != nil {
		raw.Preferences = nil
	}
	if err := json.Unmarshal(availability, &raw.Availability); err != nil {
		raw.Availability = nil
	}
	if location.Valid {
		raw.Location = location.String
	}

	if s.redis != nil {
		if data, err := json.Marshal(raw); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache profile", map[string]interface{}{
					"userId": userID,
					"error":  err.Error(),
				})
			}
		}
	}

	return &raw, nil
}
