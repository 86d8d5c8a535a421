package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestErrorModalQuitKeys(t *testing.T) {
	for _, key := range []string{"enter", "esc", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := NewErrorModal("Configuration Error", "missing variable")

			var msg tea.Msg
			switch key {
			case "enter":
				msg = tea.KeyMsg{Type: tea.KeyEnter}
			case "esc":
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			case "ctrl+c":
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			}

			_, cmd := m.Update(msg)
			if cmd == nil {
				t.Fatal("quit key produced no command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("quit key produced %T, want tea.QuitMsg", cmd())
			}
		})
	}
}

func TestErrorModalIgnoresOtherKeys(t *testing.T) {
	m := NewErrorModal("Configuration Error", "missing variable")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd != nil {
		t.Error("unrelated key must not produce a command")
	}
}

func TestErrorModalViewShowsContent(t *testing.T) {
	m := NewErrorModal("Configuration Error", "Missing environment variable: AGTUI_DATA_DIR")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := updated.(ErrorModal).View()

	if !strings.Contains(view, "Configuration Error") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "AGTUI_DATA_DIR") {
		t.Error("view missing message")
	}

	small := NewErrorModal("t", "m")
	if got := small.View(); got != "Terminal too small" {
		t.Errorf("zero-size view = %q", got)
	}
}
