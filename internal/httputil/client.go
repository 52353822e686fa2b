package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// Upstream Client
// =============================================================================

// UpstreamClient is a bounded-timeout HTTP client for calls to third-party
// provider APIs. Every request carries a deadline; provider calls are never
// retried here (retry is a caller concern).
type UpstreamClient struct {
	httpClient *http.Client
	baseURL    string
}

// UpstreamClientConfig configures the upstream client.
type UpstreamClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultUpstreamTimeout bounds provider calls that do not configure one.
const DefaultUpstreamTimeout = 10 * time.Second

// NewUpstreamClient creates a new upstream client.
func NewUpstreamClient(cfg UpstreamClientConfig) *UpstreamClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultUpstreamTimeout
	}

	return &UpstreamClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Do executes an HTTP request against the upstream with the given headers.
// A JSON body is marshalled when provided.
func (c *UpstreamClient) Do(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// PostJSON performs a POST with a JSON body.
func (c *UpstreamClient) PostJSON(ctx context.Context, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, headers)
}

// PostForm performs a POST with a URL-encoded form body.
func (c *UpstreamClient) PostForm(ctx context.Context, path string, form url.Values, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// BaseURL returns the configured upstream base URL.
func (c *UpstreamClient) BaseURL() string { return c.baseURL }

// DecodeResponse decodes a JSON response into the target struct. Error
// responses surface the upstream status and a bounded portion of the body.
func DecodeResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, truncated, err := ReadAllWithLimit(resp.Body, 64<<10)
		if err != nil {
			return fmt.Errorf("read error response body: %w", err)
		}
		msg := strings.TrimSpace(string(body))
		if truncated {
			msg += "...(truncated)"
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, msg)
	}

	if target == nil {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, 8<<20)); err != nil {
			return fmt.Errorf("discard response body: %w", err)
		}
		return nil
	}

	body, err := ReadAllStrict(resp.Body, 8<<20)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
