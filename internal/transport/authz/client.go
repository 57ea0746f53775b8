// Package authz talks to the external authorization service that decides
// passage visibility per identity.
package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/askdex/askdex/internal/domain"
)

// Client queries the authorization service over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Config holds the authorization service connection settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewClient creates an authorization service client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	Identity  string `json:"identity"`
	PassageID string `json:"passage_id"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

// CanAccess reports whether identity may read the passage. Any transport
// or protocol failure maps to domain.ErrAuthzUnavailable so callers can
// fail closed.
func (c *Client) CanAccess(ctx context.Context, identity domain.Identity, passageID string) (bool, error) {
	body, err := json.Marshal(checkRequest{Identity: identity.String(), PassageID: passageID})
	if err != nil {
		return false, fmt.Errorf("%w: encode check request: %w", domain.ErrAuthzUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/check", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: build check request: %w", domain.ErrAuthzUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrAuthzUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w: check returned status %d", domain.ErrAuthzUnavailable, resp.StatusCode)
	}

	var decoded checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, fmt.Errorf("%w: decode check response: %w", domain.ErrAuthzUnavailable, err)
	}
	return decoded.Allowed, nil
}
