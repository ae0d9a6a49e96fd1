// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/matching"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "catalog:activities:"

// PostgresStore reads active activities from postgres, with a per-query
// redis snapshot so repeated process instances don't hammer the table.
type PostgresStore struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewPostgresStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *PostgresStore {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &PostgresStore{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog-postgres"}),
	}
}

func (s *PostgresStore) Find(ctx context.Context, q Query) ([]matching.Activity, error) {
	cacheKey := snapshotKey(q)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var activities []matching.Activity
			if err := json.Unmarshal([]byte(val), &activities); err == nil {
				return activities, nil
			}
			s.redis.Del(ctx, cacheKey)
		}
	}

	query := `
		SELECT id, name, category, skill_tags, duration_minutes, safety_level, is_featured, seasonality
		FROM activities WHERE active = true`
	args := []interface{}{}
	idx := 1
	if q.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, q.Category)
		idx++
	}
	if q.Season != "" {
		query += fmt.Sprintf(" AND seasonality @> $%d", idx)
		args = append(args, fmt.Sprintf(`["%s"]`, q.Season))
		idx++
	}
	if q.MaxDuration > 0 {
		query += fmt.Sprintf(" AND duration_minutes <= $%d", idx)
		args = append(args, q.MaxDuration)
		idx++
	}
	if q.FeaturedOnly {
		query += " AND is_featured = true"
	}
	query += " ORDER BY id"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewCatalogTimeoutError()
		}
		return nil, errors.NewCatalogQueryFailedError(err)
	}
	defer rows.Close()

	activities := []matching.Activity{}
	for rows.Next() {
		var a matching.Activity
		var skillTags, seasonality []byte
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &skillTags, &a.DurationMinutes, &a.SafetyLevel, &a.IsFeatured, &seasonality); err != nil {
			return nil, errors.NewCatalogQueryFailedError(err)
		}
		if err := json.Unmarshal(skillTags, &a.SkillTags); err != nil {
			a.SkillTags = nil
		}
		if err := json.Unmarshal(seasonality, &a.Seasonality); err != nil {
			a.Seasonality = nil
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogQueryFailedError(err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(activities); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache catalog snapshot", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return activities, nil
}

func snapshotKey(q Query) string {
	return fmt.Sprintf("%s%s:%s:%d:%t:%d", snapshotKeyPrefix, q.Category, q.Season, q.MaxDuration, q.FeaturedOnly, q.Limit)
}
