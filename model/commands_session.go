package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"agtui/api"
	"agtui/config"
	"agtui/storage"
)

// FetchSessionList lists local sessions for the selected target, merged with
// the backend's advisory listing. Backend failures degrade to a local-only
// list; they never block session selection.
func (m *Model) FetchSessionList() tea.Cmd {
	store := m.SessionStorage
	client := m.Client
	target := m.SelectedTarget

	return func() tea.Msg {
		var filter *api.TargetInfo
		if target != nil {
			filter = target
		}

		sessions, err := store.List(filter)
		if err != nil {
			return SessionsListMsg{Err: err}
		}

		var backend []api.BackendSession
		if target != nil {
			backend, err = client.ListBackendSessions(context.Background(), *target)
			if err != nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[model] backend session listing failed: %v", err)
				}
				backend = nil
			}
		}

		return SessionsListMsg{Sessions: sessions, Backend: backend}
	}
}

// LoadSessionCmd loads a session for resumption. A failure keeps the UI in
// session selection with the error shown inline.
func (m *Model) LoadSessionCmd(sessionID string) tea.Cmd {
	store := m.SessionStorage
	return func() tea.Msg {
		session, err := store.Load(sessionID)
		return SessionLoadedMsg{Session: session, Err: err}
	}
}

// RequestSave schedules a save of the current session. Saves are strictly
// sequenced: if one is in flight the request is queued and issued from
// OnSaved, so writes can never interleave or run stale-over-fresh.
func (m *Model) RequestSave() tea.Cmd {
	if m.SessionStorage == nil || m.CurrentSession == nil || m.History.Len() == 0 {
		return nil
	}

	if m.saveInFlight {
		m.savePending = true
		return nil
	}

	m.saveInFlight = true
	m.syncSession()

	session := m.CurrentSession
	store := m.SessionStorage
	index := m.SearchIndex

	return func() tea.Msg {
		if err := store.Save(session); err != nil {
			return SessionSavedMsg{Err: err}
		}
		if index != nil {
			if err := index.Index(session); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[model] search indexing failed for %s: %v", session.ID, err)
			}
		}
		return SessionSavedMsg{}
	}
}

// OnSaved completes a save and issues the queued one, if any.
func (m *Model) OnSaved(msg SessionSavedMsg) tea.Cmd {
	m.saveInFlight = false

	if msg.Err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[model] session save failed: %v", msg.Err)
	}

	if m.savePending {
		m.savePending = false
		return m.RequestSave()
	}
	return nil
}

// DeleteSessionCmd removes a session file and its search index rows.
func (m *Model) DeleteSessionCmd(sessionID string) tea.Cmd {
	store := m.SessionStorage
	index := m.SearchIndex

	return func() tea.Msg {
		if err := store.Delete(sessionID); err != nil {
			return SessionDeletedMsg{SessionID: sessionID, Err: err}
		}
		if index != nil {
			if err := index.Remove(sessionID); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[model] search index cleanup failed for %s: %v", sessionID, err)
			}
		}
		return SessionDeletedMsg{SessionID: sessionID}
	}
}

// SearchCmd queries the cross-session search index.
func (m *Model) SearchCmd(query string) tea.Cmd {
	index := m.SearchIndex
	return func() tea.Msg {
		if index == nil {
			return SearchResultsMsg{Query: query, Matches: []storage.MessageMatch{}}
		}
		matches, err := index.Search(query, 20)
		return SearchResultsMsg{Query: query, Matches: matches, Err: err}
	}
}
