package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MessageMatch is one search hit across all indexed sessions.
type MessageMatch struct {
	SessionID   string
	SessionName string
	ItemID      int64
	ItemType    string
	Text        string
	Preview     string
	Timestamp   int64
}

// SearchIndex maintains a sqlite copy of message text for cross-session
// search. The session JSON files stay the source of truth; the index is
// rebuilt per session on every save.
type SearchIndex struct {
	db *sql.DB
}

// NewSearchIndex opens (or creates) <dataDir>/search.db.
func NewSearchIndex(dataDir string) (*SearchIndex, error) {
	dbPath := filepath.Join(dataDir, "search.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping search index: %w", err)
	}

	index := &SearchIndex{db: db}

	if err := index.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize search index: %w", err)
	}

	return index, nil
}

func (si *SearchIndex) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		session_id   TEXT NOT NULL,
		session_name TEXT NOT NULL,
		item_id      INTEGER NOT NULL,
		item_type    TEXT NOT NULL,
		text         TEXT NOT NULL,
		ts           INTEGER NOT NULL,
		PRIMARY KEY (session_id, item_id)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts);
	`

	_, err := si.db.Exec(schema)
	return err
}

// Index replaces a session's rows. Only user and assistant items are indexed;
// info and error entries are UI noise, not conversation content.
func (si *SearchIndex) Index(session *Session) error {
	tx, err := si.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("failed to clear session rows: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (session_id, session_name, item_id, item_type, text, ts) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range session.Messages {
		if item.Type != ItemTypeUser && item.Type != ItemTypeAssistant {
			continue
		}
		if _, err := stmt.Exec(session.ID, session.Name, item.ID, item.Type, item.Text, item.Timestamp); err != nil {
			return fmt.Errorf("failed to index item %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// Remove drops a deleted session from the index.
func (si *SearchIndex) Remove(sessionID string) error {
	_, err := si.db.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to remove session from index: %w", err)
	}
	return nil
}

// Search returns matches across all indexed sessions, newest first.
func (si *SearchIndex) Search(query string, limit int) ([]MessageMatch, error) {
	if strings.TrimSpace(query) == "" {
		return []MessageMatch{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := si.db.Query(
		`SELECT session_id, session_name, item_id, item_type, text, ts
		 FROM messages
		 WHERE text LIKE ? ESCAPE '\'
		 ORDER BY ts DESC
		 LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var matches []MessageMatch
	for rows.Next() {
		var m MessageMatch
		if err := rows.Scan(&m.SessionID, &m.SessionName, &m.ItemID, &m.ItemType, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		m.Preview = m.Text
		if len(m.Preview) > 100 {
			m.Preview = m.Preview[:100] + "..."
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// Close releases the underlying database handle.
func (si *SearchIndex) Close() error {
	return si.db.Close()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
