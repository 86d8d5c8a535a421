package storage

import "fmt"

// NotFoundError means the requested session file does not exist. Recoverable:
// surfaced inline, never fatal.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// CorruptionError means a session file exists but could not be parsed. The
// caller treats the session as absent and shows a warning.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt session file %s: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// PersistenceError means a filesystem write failed. The in-memory session
// stays intact; the caller logs and continues.
type PersistenceError struct {
	Op   string // "write", "rename", "mkdir"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
