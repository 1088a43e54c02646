package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"contractpilot/internal/repository"
)

// ErrRequirementsNotFound is returned when the upstream has no payload for a negotiation
var ErrRequirementsNotFound = errors.New("requirements not found")

// RequirementsSource fetches the raw deal-requirements payload for a negotiation
type RequirementsSource interface {
	Fetch(ctx context.Context, negotiationID string) (map[string]any, error)
}

// RequirementsClient fetches requirements from the upstream HTTP service
type RequirementsClient struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
	logger      zerolog.Logger
}

// NewRequirementsClient creates a new upstream requirements client
func NewRequirementsClient(baseURL, token string, maxRetries int, logger zerolog.Logger) *RequirementsClient {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if token == "" {
		logger.Warn().Msg("REQUIREMENTS_TOKEN not set, calling upstream without credentials")
	}
	return &RequirementsClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries:  maxRetries,
		baseBackoff: 250 * time.Millisecond,
		logger:      logger.With().Str("component", "requirements_client").Logger(),
	}
}

// Fetch retrieves the payload for negotiationID
func (c *RequirementsClient) Fetch(ctx context.Context, negotiationID string) (map[string]any, error) {
	path := fmt.Sprintf("/negotiations/%s/requirements", url.PathEscape(negotiationID))

	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return decodePayload(body)
}

// doRequest performs an HTTP request, retrying transport errors, rate
// limiting and 5xx responses with exponential backoff.
func (c *RequirementsClient) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	log := c.logger.With().Str("method", method).Str("path", path).Logger()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseBackoff
			log.Warn().Err(lastErr).Int("attempt", attempt+1).Int("max", c.maxRetries).Dur("backoff", backoff).Msg("Retrying upstream request")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("upstream request cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("upstream request cancelled: %w", ctx.Err())
			}
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		log.Debug().Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("Upstream response")

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrRequirementsNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("upstream returned %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("upstream error %d: %s", resp.StatusCode, truncate(respBody, 200))
		}
		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// decodePayload accepts a JSON object, or a JSON string holding one
func decodePayload(body []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to parse requirements response: %w", err)
	}
	for i := 0; i < 3; i++ {
		s, ok := v.(string)
		if !ok {
			break
		}
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("failed to parse requirements response: %w", err)
		}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("requirements response is not an object")
	}
	return obj, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// mongoRequirementsSource reads payloads the upstream wrote to Mongo
type mongoRequirementsSource struct {
	repo repository.RequirementsRepo
}

// NewMongoRequirementsSource serves requirements from the deal_requirements collection
func NewMongoRequirementsSource(repo repository.RequirementsRepo) RequirementsSource {
	return &mongoRequirementsSource{repo: repo}
}

func (s *mongoRequirementsSource) Fetch(ctx context.Context, negotiationID string) (map[string]any, error) {
	raw, err := s.repo.FindRaw(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrRequirementsNotFound
	}
	return raw, nil
}
