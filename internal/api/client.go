// Package api implements the GitHub billing API client used to fetch
// premium-request usage for an account.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

const (
	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
	requestTimeout = 30 * time.Second

	// Body excerpts beyond this are truncated in errors.
	maxErrorBody = 1 << 12
)

// Client talks to the GitHub REST API with a pre-issued token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a client for the public GitHub API.
func New(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
	}
}

// NewWithBaseURL creates a client against a specific endpoint, used in tests.
func NewWithBaseURL(token, baseURL string) *Client {
	c := New(token)
	c.baseURL = baseURL
	return c
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to GitHub API: %w", err)
	}
	return resp, nil
}

// FetchUsage retrieves the premium-request usage snapshot for a user.
func (c *Client) FetchUsage(ctx context.Context, username string) (*models.UsageSnapshot, error) {
	path := fmt.Sprintf("/users/%s/settings/billing/premium_request/usage", username)

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var snapshot models.UsageSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse GitHub API response: %w", err)
	}

	return &snapshot, nil
}

// ResolveUser asks the API which account the token belongs to.
func (c *Client) ResolveUser(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/user")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrUnknownUser, resp.StatusCode)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownUser, err)
	}
	if user.Login == "" {
		return "", ErrUnknownUser
	}

	return user.Login, nil
}
