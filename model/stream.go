package model

import (
	"context"
	"fmt"
	"strings"

	"agtui/api"
)

// StreamState enumerates the streaming-response lifecycle. Transitions:
//
//	Idle -> Submitting -> Receiving -> Idle   (success)
//	Idle -> Submitting -> Idle                (error before content)
//	Submitting/Receiving -> Cancelling -> Idle
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamSubmitting
	StreamReceiving
	StreamCancelling
)

func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "idle"
	case StreamSubmitting:
		return "submitting"
	case StreamReceiving:
		return "receiving"
	case StreamCancelling:
		return "cancelling"
	}
	return "unknown"
}

// ValidationError rejects a submission before any backend call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// StreamController owns the lifecycle of the single in-flight request. Only
// one submission may be active at a time; the input layer disables input
// while busy, and the controller rejects overlapping submissions anyway.
type StreamController struct {
	state  StreamState
	cancel context.CancelFunc
}

func NewStreamController() *StreamController {
	return &StreamController{state: StreamIdle}
}

func (c *StreamController) State() StreamState {
	return c.state
}

// Busy reports whether a submission is in flight.
func (c *StreamController) Busy() bool {
	return c.state != StreamIdle
}

// Begin validates a submission and arms the controller. The cancel function
// must abort the underlying transport when invoked.
func (c *StreamController) Begin(text string, target *api.TargetInfo, cancel context.CancelFunc) error {
	if c.state != StreamIdle {
		return &ValidationError{Reason: "a response is already in progress"}
	}
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Reason: "message is empty"}
	}
	if target == nil {
		return &ValidationError{Reason: "no target selected"}
	}

	c.state = StreamSubmitting
	c.cancel = cancel
	return nil
}

// MarkReceiving records the arrival of the first chunk.
func (c *StreamController) MarkReceiving() {
	if c.state == StreamSubmitting {
		c.state = StreamReceiving
	}
}

// Cancel aborts the in-flight stream. Idempotent: a second call, or a call
// while Idle, is a no-op. Returns whether a cancellation was actually issued.
func (c *StreamController) Cancel() bool {
	if c.state != StreamSubmitting && c.state != StreamReceiving {
		return false
	}

	c.state = StreamCancelling
	if c.cancel != nil {
		c.cancel()
	}
	return true
}

// Cancelling reports whether the controller is waiting for the aborted
// stream to wind down.
func (c *StreamController) Cancelling() bool {
	return c.state == StreamCancelling
}

// Finish returns the controller to Idle and releases the cancel handle. Must
// be called on every terminal outcome so the next submission is never
// blocked.
func (c *StreamController) Finish() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StreamIdle
}
