// Package atlantis is a minimal client for the Atlantis automation API,
// covering the two endpoints the build server drives: /api/plan and
// /api/apply.
package atlantis

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

	"go.uber.org/zap"
)

// Path identifies one project directory and workspace within the repository
// Atlantis operates on.
type Path struct {
	Directory string `json:"Directory"`
	Workspace string `json:"Workspace"`
}

// Request is the JSON body Atlantis expects on /api/plan and /api/apply.
// Field names follow the Atlantis API, which uses Go-style capitalized keys.
type Request struct {
	Repository string `json:"Repository"`
	Ref        string `json:"Ref"`
	Type       string `json:"Type"`
	Paths      []Path `json:"Paths"`
	PR         int    `json:"PR,omitempty"`
}

// APIError is returned when Atlantis answers with a non-2xx status. The
// request reached the server, so retrying the same payload will not help.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("atlantis returned status %d: %s", e.StatusCode, e.Body)
}

// Client posts plan and apply requests to an Atlantis server.
type Client struct {
	baseURL    string
	token      string
	retries    int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the Atlantis server at baseURL. retries is
// the total number of attempts made for transport-level failures; values
// below 1 are treated as 1.
func NewClient(baseURL, token string, retries int, logger *zap.Logger) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		retries: retries,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Plan triggers a plan for the projects named in req and returns the raw
// project-results document.
func (c *Client) Plan(ctx context.Context, req *Request) ([]byte, error) {
	return c.post(ctx, "/api/plan", req)
}

// Apply triggers an apply for the projects named in req and returns the raw
// project-results document.
func (c *Client) Apply(ctx context.Context, req *Request) ([]byte, error) {
	return c.post(ctx, "/api/apply", req)
}

// Ping checks that the Atlantis server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, req *Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", path, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		body, err := c.doPost(ctx, path, payload)
		if err == nil {
			return body, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("atlantis request failed",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, fmt.Errorf("atlantis %s failed after %d attempts: %w", path, c.retries, lastErr)
}

func (c *Client) doPost(ctx context.Context, path string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("X-Atlantis-Token", c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
