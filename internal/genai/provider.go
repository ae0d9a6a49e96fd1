// internal/genai/provider.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"edumatch-workers/internal/common/errors"
	commonhttp "edumatch-workers/internal/common/http"
	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/matching"

	"github.com/xeipuuv/gojsonschema"
)

const recommendPath = "/api/ai/recommend-activities"

// responseSchema is the contract the provider must satisfy. Anything that
// fails it rejects the whole response.
const responseSchema = `{
  "type": "object",
  "required": ["recommendations"],
  "properties": {
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["activityId", "score", "reasons"],
        "properties": {
          "activityId": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "score": {"type": "number", "minimum": 0, "maximum": 1},
          "reasons": {"type": "array", "items": {"type": "string", "minLength": 1}},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls the GenAI recommendation service and adapts its answers into
// engine results. It implements matching.SuggestionProvider.
type Client struct {
	config Config
	http   *commonhttp.Client
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewClient(config Config, log logger.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.NewInvalidInputError("genai base URL is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	return &Client{
		config: config,
		// Per-request deadlines come from the caller's context.
		http:   commonhttp.NewClient(0),
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "genai"}),
	}, nil
}

type suggestRequest struct {
	Profile    matching.UserProfile `json:"profile"`
	Activities []candidateSummary   `json:"activities"`
	Limit      int                  `json:"limit"`
}

type candidateSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	SkillTags       []string `json:"skillTags"`
	DurationMinutes int      `json:"durationMinutes"`
	SafetyLevel     int      `json:"safetyLevel"`
	IsFeatured      bool     `json:"isFeatured"`
}

type suggestResponse struct {
	Recommendations []struct {
		ActivityID string   `json:"activityId"`
		Name       string   `json:"name"`
		Score      float64  `json:"score"`
		Reasons    []string `json:"reasons"`
		Confidence float64  `json:"confidence"`
	} `json:"recommendations"`
}

// Suggest asks the external service for a ranked recommendation list. It
// retries transient HTTP failures with exponential backoff and validates the
// body against the response schema before trusting any of it.
func (c *Client) Suggest(ctx context.Context, profile matching.UserProfile, candidates []matching.Activity, limit int) ([]matching.MatchResult, error) {
	payload := suggestRequest{
		Profile:    profile,
		Activities: make([]candidateSummary, 0, len(candidates)),
		Limit:      limit,
	}
	for _, a := range candidates {
		payload.Activities = append(payload.Activities, candidateSummary{
			ID:              a.ID,
			Name:            a.Name,
			Category:        a.Category,
			SkillTags:       a.SkillTags,
			DurationMinutes: a.DurationMinutes,
			SafetyLevel:     a.SafetyLevel,
			IsFeatured:      a.IsFeatured,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewProviderFailedError(err)
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.NewProviderMalformedError(fmt.Sprintf("response is not valid JSON: %v", err))
	}
	if !result.Valid() {
		return nil, errors.NewProviderMalformedError(result.Errors()[0].String())
	}

	var parsed suggestResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.NewProviderMalformedError(fmt.Sprintf("decode response: %v", err))
	}

	results := make([]matching.MatchResult, 0, len(parsed.Recommendations))
	for _, rec := range parsed.Recommendations {
		results = append(results, matching.MatchResult{
			ActivityID: rec.ActivityID,
			Name:       rec.Name,
			Score:      rec.Score,
			Reasons:    rec.Reasons,
			Confidence: rec.Confidence,
		})
	}

	c.logger.Debug("provider response accepted", map[string]interface{}{
		"recommendations": len(results),
	})
	return results, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errors.NewProviderTimeoutError(c.config.Timeout)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+recommendPath, bytes.NewReader(body))
		if err != nil {
			return nil, errors.NewProviderFailedError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.http.Do(req)
		if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
			return nil, errors.NewProviderTimeoutError(c.config.Timeout)
		}
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			raw, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, errors.NewProviderFailedError(err)
			}
			return raw, nil
		}

		resp.Body.Close()
		if resp.StatusCode == http.StatusServiceUnavailable {
			lastErr = errors.NewProviderUnavailableError()
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
		}
		c.logger.Warn("provider request failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"status":  resp.StatusCode,
		})
	}

	if se, ok := errors.AsStandardError(lastErr); ok {
		return nil, se
	}
	return nil, errors.NewProviderFailedError(lastErr)
}
