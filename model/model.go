package model

import (
	"agtui/api"
	"agtui/config"
	"agtui/storage"
)

// Stage drives the UI through the discrete selection flow. ConnectionError
// sits outside the four-stage flow: it blocks everything until a retry
// succeeds or the process restarts.
type Stage int

const (
	StageSelectingType Stage = iota
	StageSelectingTarget
	StageSelectingSession
	StageChatting
	StageConnectionError
)

func (s Stage) String() string {
	switch s {
	case StageSelectingType:
		return "selecting-type"
	case StageSelectingTarget:
		return "selecting-target"
	case StageSelectingSession:
		return "selecting-session"
	case StageChatting:
		return "chatting"
	case StageConnectionError:
		return "connection-error"
	}
	return "unknown"
}

// Model holds the core application data and business logic state. All
// dependencies are injected; there is no ambient global session context.
type Model struct {
	// Core dependencies
	Config         *config.Config
	Client         *api.Client
	SessionStorage *storage.SessionStorage
	SearchIndex    *storage.SearchIndex

	// Navigation state
	Stage          Stage
	Discovery      api.Discovery
	SelectedType   api.TargetType
	SelectedTarget *api.TargetInfo
	LastError      error // populated when Stage == StageConnectionError

	// Conversation state
	History        *HistoryModel
	CurrentSession *storage.Session
	Stream         *StreamController

	// Save sequencing: a save is never issued while one is in flight, so a
	// late write can never clobber a newer one.
	saveInFlight bool
	savePending  bool

	Version string
}

// NewModel wires the injected dependencies into a fresh model at the start
// of the selection flow.
func NewModel(cfg *config.Config, client *api.Client, sessionStorage *storage.SessionStorage, searchIndex *storage.SearchIndex, version string) *Model {
	return &Model{
		Config:         cfg,
		Client:         client,
		SessionStorage: sessionStorage,
		SearchIndex:    searchIndex,
		Stage:          StageSelectingType,
		History:        NewHistory(),
		Stream:         NewStreamController(),
		Version:        version,
	}
}

// SelectType commits the target-type choice and advances to target
// selection.
func (m *Model) SelectType(t api.TargetType) {
	m.SelectedType = t
	m.Stage = StageSelectingTarget
}

// SelectTarget commits a concrete target and advances to session selection.
func (m *Model) SelectTarget(target api.TargetInfo) {
	t := target
	m.SelectedTarget = &t
	m.Stage = StageSelectingSession
}

// BackToTypes steps back from target selection.
func (m *Model) BackToTypes() {
	m.Stage = StageSelectingType
}

// BackToTargets steps back from session selection.
func (m *Model) BackToTargets() {
	m.SelectedTarget = nil
	m.Stage = StageSelectingTarget
}

// StartNewSession enters the chat stage with a fresh in-memory session. No
// file is written until the first message exists.
func (m *Model) StartNewSession() {
	m.CurrentSession = &storage.Session{
		ID: storage.GenerateSessionID(),
		Metadata: storage.SessionMeta{
			LastTarget: m.SelectedTarget,
		},
	}
	m.History = NewHistory()
	m.Stage = StageChatting

	if config.DebugLog != nil {
		config.DebugLog.Printf("[model] started new session %s (target=%v)", m.CurrentSession.ID, m.SelectedTarget)
	}
}

// AttachSession enters the chat stage with a loaded session.
func (m *Model) AttachSession(session *storage.Session) {
	m.CurrentSession = session
	m.History = HistoryFromSession(session)
	m.Stage = StageChatting

	if config.DebugLog != nil {
		config.DebugLog.Printf("[model] resumed session %s (%d messages)", session.ID, len(session.Messages))
	}
}

// LeaveChat returns to session selection. The current session stays on disk;
// only the in-memory handle is dropped.
func (m *Model) LeaveChat() {
	m.CurrentSession = nil
	m.History = NewHistory()
	m.Stage = StageSelectingSession
}

// EnterConnectionError records a failed startup health check.
func (m *Model) EnterConnectionError(err error) {
	m.LastError = err
	m.Stage = StageConnectionError
}

// syncSession copies the in-memory history into the persisted record before
// a save.
func (m *Model) syncSession() {
	if m.CurrentSession == nil {
		return
	}

	items := m.History.Items()
	m.CurrentSession.Messages = append([]storage.HistoryItem(nil), items...)
	m.CurrentSession.Metadata.LastTarget = m.SelectedTarget

	if m.CurrentSession.Name == "" {
		for _, item := range items {
			if item.Type == storage.ItemTypeUser {
				m.CurrentSession.Name = storage.GenerateSessionName(item.Text)
				break
			}
		}
	}
}
