package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agtui/api"
)

func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()
	s, err := NewSessionStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStorage failed: %v", err)
	}
	return s
}

func testSession(id string, target *api.TargetInfo, texts ...string) *Session {
	session := &Session{
		ID:       id,
		Metadata: SessionMeta{LastTarget: target},
	}
	for i, text := range texts {
		itemType := ItemTypeUser
		if i%2 == 1 {
			itemType = ItemTypeAssistant
		}
		session.Messages = append(session.Messages, HistoryItem{
			ID:        int64(i + 1),
			Type:      itemType,
			Text:      text,
			Timestamp: time.Now().UnixMilli(),
		})
	}
	return session
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	target := &api.TargetInfo{Type: api.TargetAgent, ID: "researcher", Name: "Researcher"}
	session := testSession("roundtrip-1", target, "hello", "hi there")
	session.Name = "hello"

	if err := s.Save(session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load("roundtrip-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID != session.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, session.ID)
	}
	if loaded.Name != "hello" {
		t.Errorf("Name = %q, want %q", loaded.Name, "hello")
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(loaded.Messages))
	}
	if loaded.Messages[0].Text != "hello" || loaded.Messages[1].Text != "hi there" {
		t.Errorf("message texts did not survive round trip: %+v", loaded.Messages)
	}
	if loaded.Metadata.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", loaded.Metadata.TotalMessages)
	}
	if loaded.Metadata.LastTarget == nil || loaded.Metadata.LastTarget.ID != "researcher" {
		t.Errorf("LastTarget did not survive round trip: %+v", loaded.Metadata.LastTarget)
	}
	if loaded.CreatedAt == 0 || loaded.UpdatedAt == 0 {
		t.Errorf("timestamps not set: created=%d updated=%d", loaded.CreatedAt, loaded.UpdatedAt)
	}
}

func TestSaveEmptySessionIsNoOp(t *testing.T) {
	s := newTestStorage(t)

	session := &Session{ID: "empty-1"}
	if err := s.Save(session); err != nil {
		t.Fatalf("Save of empty session returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "empty-1.json")); !os.IsNotExist(err) {
		t.Error("empty session must not create a file")
	}
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Load("does-not-exist")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
	if notFound.SessionID != "does-not-exist" {
		t.Errorf("SessionID = %q, want %q", notFound.SessionID, "does-not-exist")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := newTestStorage(t)

	path := filepath.Join(s.Dir(), "corrupt-1.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	_, err := s.Load("corrupt-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var corrupt *CorruptionError
	if !errors.As(err, &corrupt) {
		t.Errorf("expected CorruptionError, got %T: %v", err, err)
	}
}

func TestListSkipsCorruptFiles(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Save(testSession("good-1", nil, "alpha")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	badPath := filepath.Join(s.Dir(), "bad-1.json")
	if err := os.WriteFile(badPath, []byte("garbage"), 0600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	sessions, err := s.List(nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1 (corrupt file must be skipped)", len(sessions))
	}
	if sessions[0].ID != "good-1" {
		t.Errorf("listed session = %q, want good-1", sessions[0].ID)
	}
}

func TestListEmptyDirectory(t *testing.T) {
	s := newTestStorage(t)

	sessions, err := s.List(nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}
}

func TestListMissingDirectory(t *testing.T) {
	s := &SessionStorage{sessionsDir: filepath.Join(t.TempDir(), "never-created")}

	sessions, err := s.List(nil)
	if err != nil {
		t.Fatalf("List on missing directory returned error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}
}

func TestListOrdersByUpdatedAtDescending(t *testing.T) {
	s := newTestStorage(t)

	older := testSession("older", nil, "first")
	if err := s.Save(older); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Force distinct UpdatedAt values without sleeping
	older.UpdatedAt = time.Now().UnixMilli() - 60_000
	rewriteSession(t, s, older)

	newer := testSession("newer", nil, "second")
	if err := s.Save(newer); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sessions, err := s.List(nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "newer" || sessions[1].ID != "older" {
		t.Errorf("order = [%s, %s], want [newer, older]", sessions[0].ID, sessions[1].ID)
	}
}

func TestListFiltersByTarget(t *testing.T) {
	s := newTestStorage(t)

	agentTarget := &api.TargetInfo{Type: api.TargetAgent, ID: "researcher"}
	teamTarget := &api.TargetInfo{Type: api.TargetTeam, ID: "researcher"}

	if err := s.Save(testSession("agent-session", agentTarget, "a")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(testSession("team-session", teamTarget, "b")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(testSession("no-target-session", nil, "c")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Same id, different type: must not match across types
	sessions, err := s.List(agentTarget)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].ID != "agent-session" {
		t.Errorf("filtered session = %q, want agent-session", sessions[0].ID)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Save(testSession("victim", nil, "x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete("victim"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := s.Load("victim")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	s := newTestStorage(t)

	err := s.Delete("missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestGetMetadata(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Save(testSession("meta-1", nil, "hello", "world")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	session, err := s.GetMetadata("meta-1")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if session == nil {
		t.Fatal("GetMetadata returned nil for existing session")
	}
	if session.Metadata.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", session.Metadata.TotalMessages)
	}

	missing, err := s.GetMetadata("nope")
	if err != nil {
		t.Errorf("GetMetadata for missing session returned error: %v", err)
	}
	if missing != nil {
		t.Errorf("GetMetadata for missing session = %+v, want nil", missing)
	}
}

func TestGenerateSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateSessionID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
		if !strings.Contains(id, "-") {
			t.Errorf("id %q missing millis-suffix separator", id)
		}
	}
}

func TestGenerateSessionName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short message", "hello world", "hello world"},
		{"strips newlines", "line one\nline two", "line one line two"},
		{"truncates long message", strings.Repeat("a", 50), strings.Repeat("a", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSessionName(tt.input)
			if got != tt.want {
				t.Errorf("GenerateSessionName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("empty message falls back to timestamp name", func(t *testing.T) {
		got := GenerateSessionName("")
		if !strings.HasPrefix(got, "Session ") {
			t.Errorf("GenerateSessionName(\"\") = %q, want Session prefix", got)
		}
	})
}

// rewriteSession writes a session file directly, bypassing Save's UpdatedAt
// stamping.
func rewriteSession(t *testing.T, s *SessionStorage, session *Session) {
	t.Helper()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode session: %v", err)
	}
	if err := os.WriteFile(s.sessionPath(session.ID), data, 0600); err != nil {
		t.Fatalf("failed to rewrite session file: %v", err)
	}
}
