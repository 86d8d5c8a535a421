package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agtui/config"
)

// Client talks to the agent backend over HTTP. All calls take a context so
// the UI can bound or abort them.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BackendURL, "/"),
		// No client-level timeout: streaming responses stay open for the
		// whole run. Per-call deadlines come from the context.
		http:    &http.Client{},
		timeout: timeout,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request deadline used by non-streaming calls.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// HealthCheck verifies the backend is reachable. Any transport failure or
// non-success status is a ConnectionError, the only error class that blocks
// the UI.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return &ConnectionError{URL: c.baseURL, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectionError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ConnectionError{URL: c.baseURL, Err: fmt.Errorf("health check returned %s", resp.Status)}
	}

	return nil
}

// targetPayload is the wire shape of a listing entry. Validated here so only
// well-formed targets enter the typed domain model.
type targetPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListTargets enumerates the backend's targets of one type.
func (c *Client) ListTargets(ctx context.Context, targetType TargetType) ([]TargetInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s", c.baseURL, targetType.Plural())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s listing request: %w", targetType, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", targetType.Plural(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("listing %s returned %s", targetType.Plural(), resp.Status)
	}

	var payload []targetPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s listing: %w", targetType.Plural(), err)
	}

	targets := make([]TargetInfo, 0, len(payload))
	for _, p := range payload {
		if p.ID == "" {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[api] skipping %s entry with empty id (name=%q)", targetType, p.Name)
			}
			continue
		}
		targets = append(targets, TargetInfo{
			Type: targetType,
			ID:   p.ID,
			Name: p.Name,
		})
	}

	return targets, nil
}

// Discovery holds the result of enumerating all three target types.
type Discovery struct {
	Agents    []TargetInfo
	Teams     []TargetInfo
	Workflows []TargetInfo
}

// ByType returns the slice for one target type.
func (d Discovery) ByType(t TargetType) []TargetInfo {
	switch t {
	case TargetAgent:
		return d.Agents
	case TargetTeam:
		return d.Teams
	case TargetWorkflow:
		return d.Workflows
	}
	return nil
}

// ListAllTargets issues the three listings together. Each category fails
// soft: a listing error leaves that category empty and never aborts the
// others.
func (c *Client) ListAllTargets(ctx context.Context) Discovery {
	var d Discovery

	for _, tt := range AllTargetTypes {
		targets, err := c.ListTargets(ctx, tt)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[api] listing %s failed: %v", tt.Plural(), err)
			}
			continue
		}
		switch tt {
		case TargetAgent:
			d.Agents = targets
		case TargetTeam:
			d.Teams = targets
		case TargetWorkflow:
			d.Workflows = targets
		}
	}

	return d
}

// ListBackendSessions fetches the backend's own session records for a target.
// Advisory only: shown alongside local sessions but never resumable.
func (c *Client) ListBackendSessions(ctx context.Context, target TargetInfo) ([]BackendSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/%s/sessions", c.baseURL, target.Type.Plural(), target.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build session listing request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list backend sessions for %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("backend session listing returned %s", resp.Status)
	}

	var sessions []BackendSession
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("failed to decode backend session listing: %w", err)
	}

	return sessions, nil
}
