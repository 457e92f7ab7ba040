package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where the tutoring service listens in local development.
const DefaultBaseURL = "http://localhost:8000"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Config configures an HTTPGateway.
type Config struct {
	// BaseURL is the service root, e.g. "http://localhost:8000".
	BaseURL string

	// Timeout bounds each request. Zero means no timeout; a slow service
	// holds the session's loading state until it answers.
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// HTTPGateway implements Gateway over HTTP with JSON bodies.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway for the service at cfg.BaseURL.
func NewHTTPGateway(cfg Config) (*HTTPGateway, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("tutor base URL must be http(s): %q", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPGateway{baseURL: base, client: client}, nil
}

// BaseURL returns the normalized service root.
func (g *HTTPGateway) BaseURL() string {
	return g.baseURL
}

func (g *HTTPGateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.TargetAnswers == nil {
		req.TargetAnswers = []string{}
	}

	var resp ChatResponse
	if err := g.post(ctx, EndpointChat, req, chatResponseSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *HTTPGateway) VocabExercise(ctx context.Context, req ExerciseRequest) (*ExerciseResponse, error) {
	var resp ExerciseResponse
	if err := g.post(ctx, EndpointVocabExercise, req, exerciseResponseSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *HTTPGateway) RecordProgress(ctx context.Context, report ProgressReport) error {
	return g.post(ctx, EndpointRecordProgress, report, nil, nil)
}

// post sends in as JSON to endpoint, validates the reply against schema
// and decodes it into out (skipped when out is nil).
func (g *HTTPGateway) post(ctx context.Context, endpoint string, in any, schema *Schema, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Endpoint: endpoint, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return &NetworkError{
			Endpoint:   endpoint,
			StatusCode: httpResp.StatusCode,
			Err:        errors.New(summarize(raw)),
		}
	}

	if out == nil {
		return nil
	}

	if err := validateBody(endpoint, schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProtocolError{Endpoint: endpoint, Body: json.RawMessage(raw), Err: err}
	}
	return nil
}

// summarize trims an error body for inclusion in an error message.
func summarize(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "empty body"
	}
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
