// internal/catalog/elasticsearch.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"edumatch-workers/internal/common/errors"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SearchStore serves catalogs indexed in elasticsearch. Deployments with
// free-text curation search keep the catalog there and the workers read it
// directly instead of going through postgres.
type SearchStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchStore(client *elasticsearch.Client, index string, log logger.Logger) *SearchStore {
	if index == "" {
		index = "activities"
	}
	return &SearchStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-elasticsearch"}),
	}
}

func (s *SearchStore) Find(ctx context.Context, q Query) ([]matching.Activity, error) {
	req, err := buildSearchRequest(s.index, q)
	if err != nil {
		return nil, errors.NewCatalogQueryFailedError(err)
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewCatalogTimeoutError()
		}
		return nil, errors.NewCatalogQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewCatalogQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var body struct {
		Hits struct {
			Hits []struct {
				Source matching.Activity `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, errors.NewCatalogQueryFailedError(err)
	}

	activities := make([]matching.Activity, 0, len(body.Hits.Hits))
	for _, hit := range body.Hits.Hits {
		activities = append(activities, hit.Source)
	}
	return activities, nil
}

func buildSearchRequest(index string, q Query) (*esapi.SearchRequest, error) {
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"active": true},
		},
	}

	if q.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}
	if q.Season != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"seasonality": q.Season},
		})
	}
	if q.MaxDuration > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"durationMinutes": map[string]interface{}{"lte": q.MaxDuration},
			},
		})
	}
	if q.FeaturedOnly {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"isFeatured": true},
		})
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, err
	}

	size := q.Limit
	if size <= 0 {
		size = 100
	}

	return &esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}, nil
}
