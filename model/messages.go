package model

import (
	"agtui/api"
	"agtui/storage"
)

// DiscoveryResultMsg carries the startup health check + target enumeration.
// Err is a *api.ConnectionError when the backend was unreachable.
type DiscoveryResultMsg struct {
	Discovery api.Discovery
	Err       error
}

// SessionsListMsg carries the local listing plus the advisory backend-side
// listing for the selected target.
type SessionsListMsg struct {
	Sessions []*storage.Session
	Backend  []api.BackendSession
	Err      error
}

type SessionLoadedMsg struct {
	Session *storage.Session
	Err     error
}

type SessionSavedMsg struct {
	Err error
}

type SessionDeletedMsg struct {
	SessionID string
	Err       error
}

// StreamPayload is what the stream reader goroutine pushes over its channel.
type StreamPayload struct {
	Chunk string
	Err   error
	Done  bool
}

// StreamChunkMsg delivers one chunk; Ch is handed back so the update loop can
// re-arm the channel pump.
type StreamChunkMsg struct {
	Chunk string
	Ch    chan StreamPayload
}

type StreamDoneMsg struct{}

type StreamErrorMsg struct {
	Err error
}

type SearchResultsMsg struct {
	Query   string
	Matches []storage.MessageMatch
	Err     error
}

type MarkdownRenderedMsg struct {
	ItemID   int64
	Rendered string
}
