package ui

import (
	"errors"
	"fmt"
	"strings"

	"agtui/storage"
)

func isNotFound(err error) bool {
	var notFound *storage.NotFoundError
	return errors.As(err, &notFound)
}

func isCorruption(err error) bool {
	var corrupt *storage.CorruptionError
	return errors.As(err, &corrupt)
}

// formatSessionListing renders the /sessions command output.
func formatSessionListing(sessions []*storage.Session) string {
	if len(sessions) == 0 {
		return "No saved sessions for this target yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d saved session(s):\n", len(sessions))
	for _, session := range sessions {
		name := session.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "  %s · %s, %d messages, updated %s\n",
			session.ID, name, session.Metadata.TotalMessages, formatMillis(session.UpdatedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatSearchResults renders the /search command output.
func formatSearchResults(query string, matches []storage.MessageMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No messages matching %q", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es) for %q:\n", len(matches), query)
	for _, m := range matches {
		name := m.SessionName
		if name == "" {
			name = m.SessionID
		}
		fmt.Fprintf(&b, "  [%s] %s: %s\n", name, m.ItemType, m.Preview)
	}
	return strings.TrimRight(b.String(), "\n")
}
