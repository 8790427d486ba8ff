package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/models"
	"github.com/claude/nutrical/internal/workout"
)

// HTTPClient implements SessionAPI by calling the Nutrical REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the workout runs on the server next to the camera.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies SessionAPI.
var _ SessionAPI = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// is sent with control requests and may be empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// knownErrors maps server error messages back to sentinels.
var knownErrors = []error{
	catalog.ErrNotFound,
	workout.ErrNoExercise,
	workout.ErrCameraUnavailable,
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode body: %w", err)
		}
		rd = strings.NewReader(string(b))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			for _, known := range knownErrors {
				if strings.HasSuffix(envelope.Error, known.Error()) {
					return nil, fmt.Errorf("httpclient: %s: %w", path, known)
				}
			}
		}
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	return data, nil
}

func (c *HTTPClient) view(ctx context.Context, method, path string, body any) (workout.View, error) {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return workout.View{}, err
	}
	var v workout.View
	if err := json.Unmarshal(data, &v); err != nil {
		return workout.View{}, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return v, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}
	var exercises []models.Exercise
	if err := json.Unmarshal(data, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) GetSession(ctx context.Context) (workout.View, error) {
	return c.view(ctx, http.MethodGet, "/api/v1/session", nil)
}

func (c *HTTPClient) SelectExercise(ctx context.Context, id string) (workout.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/session/select", map[string]string{"exercise_id": id})
}

func (c *HTTPClient) StartWorkout(ctx context.Context) (workout.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/session/start", nil)
}

func (c *HTTPClient) PauseWorkout(ctx context.Context) (workout.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/session/pause", nil)
}

func (c *HTTPClient) ResetWorkout(ctx context.Context) (workout.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/session/reset", nil)
}

func (c *HTTPClient) BackToSelection(ctx context.Context) (workout.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/session/clear", nil)
}
