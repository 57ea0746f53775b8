package sdk

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

const defaultTimeout = 30 * time.Second

// Client talks to an askdex server over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the given server base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a retrieval request.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpsertPassages inserts or replaces passages and returns the IDs that
// actually changed.
func (c *Client) UpsertPassages(ctx context.Context, passages []Passage) ([]string, error) {
	var resp upsertResponse
	if err := c.do(ctx, http.MethodPut, "/v1/passages", upsertRequest{Passages: passages}, &resp); err != nil {
		return nil, err
	}
	return resp.Changed, nil
}

// DeletePassages removes passages by ID and returns the IDs that were
// actually removed. Unknown IDs are ignored by the server.
func (c *Client) DeletePassages(ctx context.Context, ids []string) ([]string, error) {
	var resp deleteResponse
	if err := c.do(ctx, http.MethodDelete, "/v1/passages", deleteRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return resp.Removed, nil
}

// InvalidatePermissions drops the server's cached permission decisions
// for an identity and returns how many entries were removed.
func (c *Client) InvalidatePermissions(ctx context.Context, identity string) (int, error) {
	path := "/v1/identities/" + url.PathEscape(identity) + "/invalidate"
	var resp invalidateResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

// Health reports the server's component health.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	var resp HealthReport
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	if err != nil {
		// A degraded server answers 503 with a valid body.
		var apiErr *APIError
		if asAPIError(err, &apiErr) && resp.Status != "" {
			return &resp, nil
		}
		return nil, err
	}
	return &resp, nil
}

// do sends one JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(payload, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(payload))
		}
		// Best effort: a degraded /health still carries a body.
		if out != nil {
			_ = json.Unmarshal(payload, out)
		}
		return apiErr
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
