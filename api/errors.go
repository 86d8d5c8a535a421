package api

import "fmt"

// ConnectionError means the backend is unreachable or refused the health
// check. It blocks the whole UI until a retry succeeds.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("backend unreachable at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StreamError means a streaming run failed mid-flight, either in transport or
// reported by the backend. Recoverable: the user may retry the query.
type StreamError struct {
	Target string
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error [%s]: %v", e.Target, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
