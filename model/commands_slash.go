package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const slashHelp = `Available commands:
  /help            show this help
  /sessions        list saved sessions for the current target
  /new             start a fresh session with the current target
  /clear           clear the in-memory history
  /delete <id>     delete a saved session
  /search <query>  search messages across all sessions`

// IsSlashCommand reports whether input should be intercepted before
// dispatch.
func IsSlashCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// HandleSlash executes an in-chat command. Output lands in the history as
// info items; unrecognized commands produce an error item listing the
// available commands. Returns a follow-up command when the action is
// asynchronous.
func (m *Model) HandleSlash(input string) tea.Cmd {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return nil
	}

	command := fields[0]
	args := fields[1:]

	switch command {
	case "/help":
		m.History.AddInfo(slashHelp)
		return nil

	case "/sessions":
		return m.FetchSessionList()

	case "/new":
		m.StartNewSession()
		m.History.AddInfo(fmt.Sprintf("Started new session %s", m.CurrentSession.ID))
		return nil

	case "/clear":
		m.History.Clear()
		m.History.AddInfo("History cleared")
		return nil

	case "/delete":
		if len(args) != 1 {
			m.History.AddError("Usage: /delete <session-id>")
			return nil
		}
		return m.DeleteSessionCmd(args[0])

	case "/search":
		if len(args) == 0 {
			m.History.AddError("Usage: /search <query>")
			return nil
		}
		return m.SearchCmd(strings.Join(args, " "))

	default:
		m.History.AddError(fmt.Sprintf("Unknown command %q\n\n%s", command, slashHelp))
		return nil
	}
}
