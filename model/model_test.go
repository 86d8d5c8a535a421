package model

import (
	"errors"
	"testing"
	"time"

	"agtui/api"
	"agtui/config"
	"agtui/storage"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	cfg := &config.Config{
		BackendURL:     "http://localhost:7777",
		DataDirectory:  t.TempDir(),
		RequestTimeout: 5 * time.Second,
	}

	store, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		t.Fatalf("NewSessionStorage failed: %v", err)
	}

	return NewModel(cfg, api.NewClient(cfg), store, nil, "test")
}

func TestNavigationFlow(t *testing.T) {
	m := newTestModel(t)

	if m.Stage != StageSelectingType {
		t.Fatalf("initial stage = %v, want selecting-type", m.Stage)
	}

	m.SelectType(api.TargetAgent)
	if m.Stage != StageSelectingTarget {
		t.Errorf("stage after SelectType = %v, want selecting-target", m.Stage)
	}
	if m.SelectedType != api.TargetAgent {
		t.Errorf("SelectedType = %v, want agent", m.SelectedType)
	}

	m.SelectTarget(api.TargetInfo{Type: api.TargetAgent, ID: "researcher"})
	if m.Stage != StageSelectingSession {
		t.Errorf("stage after SelectTarget = %v, want selecting-session", m.Stage)
	}
	if m.SelectedTarget == nil || m.SelectedTarget.ID != "researcher" {
		t.Errorf("SelectedTarget = %+v", m.SelectedTarget)
	}

	m.StartNewSession()
	if m.Stage != StageChatting {
		t.Errorf("stage after StartNewSession = %v, want chatting", m.Stage)
	}
}

func TestBackNavigation(t *testing.T) {
	m := newTestModel(t)
	m.SelectType(api.TargetTeam)
	m.SelectTarget(api.TargetInfo{Type: api.TargetTeam, ID: "support"})

	m.BackToTargets()
	if m.Stage != StageSelectingTarget {
		t.Errorf("stage = %v, want selecting-target", m.Stage)
	}
	if m.SelectedTarget != nil {
		t.Error("SelectedTarget must clear on back")
	}

	m.BackToTypes()
	if m.Stage != StageSelectingType {
		t.Errorf("stage = %v, want selecting-type", m.Stage)
	}
}

func TestStartNewSessionDoesNotPersist(t *testing.T) {
	m := newTestModel(t)
	m.SelectType(api.TargetAgent)
	m.SelectTarget(api.TargetInfo{Type: api.TargetAgent, ID: "researcher"})
	m.StartNewSession()

	if m.CurrentSession == nil || m.CurrentSession.ID == "" {
		t.Fatal("new session must get an id immediately")
	}

	// No message yet: nothing must reach disk
	if cmd := m.RequestSave(); cmd != nil {
		t.Error("RequestSave with empty history must be a no-op")
	}

	sessions, err := m.SessionStorage.List(nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("found %d persisted sessions, want 0", len(sessions))
	}
}

func TestAttachSessionRestoresHistory(t *testing.T) {
	m := newTestModel(t)

	session := &storage.Session{
		ID:   "resumed",
		Name: "old chat",
		Messages: []storage.HistoryItem{
			{ID: 1, Type: storage.ItemTypeUser, Text: "q"},
			{ID: 2, Type: storage.ItemTypeAssistant, Text: "a"},
		},
	}

	m.AttachSession(session)
	if m.Stage != StageChatting {
		t.Errorf("stage = %v, want chatting", m.Stage)
	}
	if m.History.Len() != 2 {
		t.Errorf("restored %d items, want 2", m.History.Len())
	}

	item := m.History.AddUser("follow up", nil)
	if item.ID != 3 {
		t.Errorf("next id after resume = %d, want 3", item.ID)
	}
}

func TestLeaveChatDropsSessionHandle(t *testing.T) {
	m := newTestModel(t)
	m.SelectType(api.TargetAgent)
	m.SelectTarget(api.TargetInfo{Type: api.TargetAgent, ID: "researcher"})
	m.StartNewSession()
	m.History.AddUser("hello", m.SelectedTarget)

	m.LeaveChat()
	if m.Stage != StageSelectingSession {
		t.Errorf("stage = %v, want selecting-session", m.Stage)
	}
	if m.CurrentSession != nil {
		t.Error("CurrentSession must clear on leave")
	}
	if m.History.Len() != 0 {
		t.Error("history must reset on leave")
	}
}

func TestEnterConnectionError(t *testing.T) {
	m := newTestModel(t)

	cause := errors.New("connection refused")
	m.EnterConnectionError(cause)

	if m.Stage != StageConnectionError {
		t.Errorf("stage = %v, want connection-error", m.Stage)
	}
	if !errors.Is(m.LastError, cause) {
		t.Errorf("LastError = %v, want wrapped cause", m.LastError)
	}
}

func TestRequestSavePersistsAndAutoNames(t *testing.T) {
	m := newTestModel(t)
	m.SelectType(api.TargetAgent)
	m.SelectTarget(api.TargetInfo{Type: api.TargetAgent, ID: "researcher"})
	m.StartNewSession()

	m.History.AddUser("What is the capital of France?", m.SelectedTarget)
	m.History.AppendDelta("Paris")
	m.History.FinalizePending()

	cmd := m.RequestSave()
	if cmd == nil {
		t.Fatal("RequestSave returned nil with messages present")
	}

	msg := cmd()
	saved, ok := msg.(SessionSavedMsg)
	if !ok {
		t.Fatalf("save produced %T, want SessionSavedMsg", msg)
	}
	if saved.Err != nil {
		t.Fatalf("save failed: %v", saved.Err)
	}

	loaded, err := m.SessionStorage.Load(m.CurrentSession.ID)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded.Metadata.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", loaded.Metadata.TotalMessages)
	}
	if loaded.Name != "What is the capital of France?" {
		t.Errorf("auto name = %q", loaded.Name)
	}
	if loaded.Metadata.LastTarget == nil || loaded.Metadata.LastTarget.ID != "researcher" {
		t.Errorf("LastTarget = %+v", loaded.Metadata.LastTarget)
	}
}

func TestSaveSequencing(t *testing.T) {
	m := newTestModel(t)
	m.SelectType(api.TargetAgent)
	m.SelectTarget(api.TargetInfo{Type: api.TargetAgent, ID: "researcher"})
	m.StartNewSession()
	m.History.AddUser("hello", m.SelectedTarget)

	first := m.RequestSave()
	if first == nil {
		t.Fatal("first RequestSave returned nil")
	}

	// A second request while the first is in flight must queue, not run
	if second := m.RequestSave(); second != nil {
		t.Error("overlapping RequestSave must return nil and queue")
	}

	// Completing the first save issues the queued one
	queued := m.OnSaved(SessionSavedMsg{})
	if queued == nil {
		t.Fatal("OnSaved must issue the queued save")
	}

	// And completing that drains the queue
	if extra := m.OnSaved(SessionSavedMsg{}); extra != nil {
		t.Error("OnSaved with empty queue must return nil")
	}
}
