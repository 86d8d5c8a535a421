package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"agtui/config"
)

// Stream event types emitted by the backend's run endpoint.
const (
	EventContent   = "content"
	EventCompleted = "completed"
	EventError     = "error"
)

// StreamEvent is one decoded server-sent event from a streaming run.
type StreamEvent struct {
	Event   string `json:"event"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChunkFunc receives each incremental content chunk. Returning an error stops
// the stream.
type ChunkFunc func(chunk string) error

type runRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Stream    bool   `json:"stream"`
}

// Run submits a query to a target and streams the response. Chunks are
// delivered through onChunk in arrival order. Cancelling ctx aborts the
// underlying connection; Run then returns ctx.Err(), which the caller treats
// as a user cancellation rather than a StreamError.
func (c *Client) Run(ctx context.Context, target TargetInfo, sessionID, text string, onChunk ChunkFunc) error {
	body, err := json.Marshal(runRequest{
		Message:   text,
		SessionID: sessionID,
		Stream:    true,
	})
	if err != nil {
		return &StreamError{Target: target.String(), Err: err}
	}

	url := fmt.Sprintf("%s/%s/%s/runs", c.baseURL, target.Type.Plural(), target.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &StreamError{Target: target.String(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StreamError{Target: target.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StreamError{
			Target: target.String(),
			Err:    fmt.Errorf("run returned %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	// Single chunks can carry whole paragraphs; the default 64K line limit is
	// too small for some backends.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var event StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[api] skipping undecodable stream event: %v", err)
			}
			continue
		}

		switch event.Event {
		case EventContent:
			if event.Content == "" {
				continue
			}
			if err := onChunk(event.Content); err != nil {
				return &StreamError{Target: target.String(), Err: err}
			}
		case EventCompleted:
			return nil
		case EventError:
			return &StreamError{Target: target.String(), Err: fmt.Errorf("backend: %s", event.Error)}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StreamError{Target: target.String(), Err: err}
	}

	// Stream closed without a completion event. Treat as complete: the
	// backend finished sending and the connection shut down cleanly.
	return nil
}
