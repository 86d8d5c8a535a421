package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"agtui/api"
	"agtui/config"
)

// History item types.
const (
	ItemTypeUser      = "user"
	ItemTypeAssistant = "assistant"
	ItemTypeInfo      = "info"
	ItemTypeError     = "error"
)

// ItemMetadata carries optional per-item context.
type ItemMetadata struct {
	Target    *api.TargetInfo `json:"target,omitempty"`
	Cancelled bool            `json:"cancelled,omitempty"`
}

// HistoryItem is a single conversation entry. Items are never mutated after
// creation except that the most recent assistant item accumulates streamed
// deltas while it is still pending.
type HistoryItem struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Text      string        `json:"text"`
	Timestamp int64         `json:"timestamp"` // epoch millis
	Metadata  *ItemMetadata `json:"metadata,omitempty"`
}

// SessionMeta is the summary block persisted with each session.
type SessionMeta struct {
	TotalMessages int             `json:"total_messages"`
	LastTarget    *api.TargetInfo `json:"last_target,omitempty"`
}

// Session is the persisted unit: one JSON file per session.
type Session struct {
	ID        string        `json:"id"`
	Name      string        `json:"name,omitempty"`
	Messages  []HistoryItem `json:"messages"`
	CreatedAt int64         `json:"created_at"` // epoch millis
	UpdatedAt int64         `json:"updated_at"` // epoch millis
	Metadata  SessionMeta   `json:"metadata"`
}

// SessionStorage handles session persistence under a single directory.
type SessionStorage struct {
	sessionsDir string
}

// NewSessionStorage creates the sessions directory on first use (0700,
// user-only access).
func NewSessionStorage(dataDir string) (*SessionStorage, error) {
	sessionsDir := filepath.Join(dataDir, "sessions")

	if err := os.MkdirAll(sessionsDir, 0700); err != nil {
		return nil, &PersistenceError{Op: "mkdir", Path: sessionsDir, Err: err}
	}

	return &SessionStorage{
		sessionsDir: sessionsDir,
	}, nil
}

// Dir returns the sessions directory.
func (s *SessionStorage) Dir() string {
	return s.sessionsDir
}

// GenerateSessionID produces an id unique with extremely high probability
// without any central coordination: unix millis plus a random suffix.
func GenerateSessionID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

func (s *SessionStorage) sessionPath(id string) string {
	return filepath.Join(s.sessionsDir, id+".json")
}

// Save serializes and atomically overwrites the session's file. Sessions with
// zero messages are never persisted; saving one is a no-op.
func (s *SessionStorage) Save(session *Session) error {
	if len(session.Messages) == 0 {
		return nil
	}

	if session.ID == "" {
		session.ID = GenerateSessionID()
	}

	now := time.Now().UnixMilli()
	session.UpdatedAt = now
	if session.CreatedAt == 0 {
		session.CreatedAt = session.Messages[0].Timestamp
		if session.CreatedAt == 0 {
			session.CreatedAt = now
		}
	}
	session.Metadata.TotalMessages = len(session.Messages)

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "marshal", Path: s.sessionPath(session.ID), Err: err}
	}

	// Write-then-rename keeps the session file whole even if the process
	// dies mid-write. 0600 - conversation history is sensitive.
	finalPath := s.sessionPath(session.ID)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return &PersistenceError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "rename", Path: finalPath, Err: err}
	}

	return nil
}

// Load reads and parses a session file.
func (s *SessionStorage) Load(id string) (*Session, error) {
	path := s.sessionPath(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{SessionID: id}
		}
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, &CorruptionError{Path: path, Err: err}
	}

	return &session, nil
}

// List enumerates all session files, sorted by UpdatedAt descending. Files
// that fail to parse are skipped and logged rather than aborting the listing.
// A non-nil filter narrows the result to sessions whose last target matches.
func (s *SessionStorage) List(filter *api.TargetInfo) ([]*Session, error) {
	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Session{}, nil
		}
		return nil, &PersistenceError{Op: "readdir", Path: s.sessionsDir, Err: err}
	}

	sessions := []*Session{}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.sessionsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[storage] skipping unreadable session file %s: %v", path, err)
			}
			continue
		}

		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[storage] skipping corrupt session file %s: %v", path, err)
			}
			continue
		}

		if filter != nil {
			last := session.Metadata.LastTarget
			if last == nil || last.Type != filter.Type || last.ID != filter.ID {
				continue
			}
		}

		sessions = append(sessions, &session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt > sessions[j].UpdatedAt
	})

	return sessions, nil
}

// Delete removes a session file.
func (s *SessionStorage) Delete(id string) error {
	path := s.sessionPath(id)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{SessionID: id}
		}
		return &PersistenceError{Op: "remove", Path: path, Err: err}
	}

	return nil
}

// GetMetadata is a convenience read for summarized listings: it returns the
// full record, or (nil, nil) when the session does not exist.
func (s *SessionStorage) GetMetadata(id string) (*Session, error) {
	session, err := s.Load(id)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// GenerateSessionName derives a display name from the first user message.
func GenerateSessionName(firstMessage string) string {
	if firstMessage == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	name := firstMessage
	if len(name) > 30 {
		name = name[:30] + "..."
	}

	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	return name
}
