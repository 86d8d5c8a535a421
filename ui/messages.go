package ui

import (
	"agtui/model"
)

// Message type aliases - defined in the model package, consumed here.
type discoveryResultMsg = model.DiscoveryResultMsg
type sessionsListMsg = model.SessionsListMsg
type sessionLoadedMsg = model.SessionLoadedMsg
type sessionSavedMsg = model.SessionSavedMsg
type sessionDeletedMsg = model.SessionDeletedMsg
type streamChunkMsg = model.StreamChunkMsg
type streamDoneMsg = model.StreamDoneMsg
type streamErrorMsg = model.StreamErrorMsg
type searchResultsMsg = model.SearchResultsMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
