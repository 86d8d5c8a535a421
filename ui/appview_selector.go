package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"agtui/api"
)

// selectorItem is one row of a selection screen.
type selectorItem struct {
	title    string
	detail   string
	disabled bool
	orig     int // index into the unfiltered list
}

// selectorState backs the type, target and session screens with one cursor +
// fuzzy-filter widget.
type selectorState struct {
	items       []selectorItem
	cursor      int
	filtering   bool
	filterInput textinput.Model
	filtered    []selectorItem
}

func (s *selectorState) setItems(items []selectorItem) {
	s.items = items
	s.cursor = 0
	s.filtering = false
	s.filtered = nil
	s.filterInput.SetValue("")
	s.filterInput.Blur()
}

// visible returns the list currently shown (filtered or full).
func (s *selectorState) visible() []selectorItem {
	if s.filtering && s.filterInput.Value() != "" {
		return s.filtered
	}
	return s.items
}

func (s *selectorState) moveCursor(delta int) {
	visible := s.visible()
	if len(visible) == 0 {
		return
	}
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= len(visible) {
		s.cursor = len(visible) - 1
	}
}

// selected returns the item under the cursor.
func (s *selectorState) selected() (selectorItem, bool) {
	visible := s.visible()
	if len(visible) == 0 || s.cursor >= len(visible) {
		return selectorItem{}, false
	}
	return visible[s.cursor], true
}

func (s *selectorState) applyFilter() {
	value := s.filterInput.Value()
	if value == "" {
		s.filtered = nil
		s.cursor = 0
		return
	}

	targets := make([]string, len(s.items))
	for i, item := range s.items {
		targets[i] = item.title
	}

	matches := fuzzy.Find(value, targets)
	filtered := make([]selectorItem, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, s.items[match.Index])
	}
	s.filtered = filtered
	s.cursor = 0
}

// handleFilterKey feeds a key into the filter input. Returns true when the
// key was consumed.
func (s *selectorState) handleFilterKey(msg tea.KeyMsg) bool {
	if !s.filtering {
		return false
	}

	switch msg.String() {
	case "esc":
		s.filtering = false
		s.filtered = nil
		s.filterInput.SetValue("")
		s.filterInput.Blur()
		s.cursor = 0
		return true
	case "enter", "up", "down":
		// Fall through to selection handling
		return false
	}

	var cmd tea.Cmd
	s.filterInput, cmd = s.filterInput.Update(msg)
	_ = cmd
	s.applyFilter()
	return true
}

func (s *selectorState) startFiltering() {
	s.filtering = true
	s.filterInput.SetValue("")
	s.filterInput.Focus()
	s.cursor = 0
}

// buildTypeItems populates the type screen with counts from discovery.
func (a *AppView) buildTypeItems() {
	discovery := a.dataModel.Discovery
	items := make([]selectorItem, 0, len(api.AllTargetTypes))
	for i, tt := range api.AllTargetTypes {
		count := len(discovery.ByType(tt))
		detail := fmt.Sprintf("%d available", count)
		items = append(items, selectorItem{
			title:    tt.Label(),
			detail:   detail,
			disabled: count == 0,
			orig:     i,
		})
	}
	a.selector.setItems(items)
}

// buildTargetItems populates the target screen for the selected type.
func (a *AppView) buildTargetItems() {
	targets := a.dataModel.Discovery.ByType(a.dataModel.SelectedType)
	items := make([]selectorItem, 0, len(targets))
	for i, target := range targets {
		items = append(items, selectorItem{
			title:  target.Display(),
			detail: target.ID,
			orig:   i,
		})
	}
	a.selector.setItems(items)
}

// buildSessionItems populates the session screen: the "start new" action,
// then local sessions newest first, then the backend's advisory rows.
func (a *AppView) buildSessionItems() {
	rows := []sessionRow{{isNew: true, title: "+ Start new session"}}

	for _, session := range a.localSessions {
		name := session.Name
		if name == "" {
			name = session.ID
		}
		rows = append(rows, sessionRow{
			sessionID: session.ID,
			title:     name,
			detail: fmt.Sprintf("%d messages · %s",
				session.Metadata.TotalMessages,
				formatMillis(session.UpdatedAt)),
		})
	}

	for _, backend := range a.backendSessions {
		name := backend.Name
		if name == "" {
			name = backend.ID
		}
		rows = append(rows, sessionRow{
			isBackend: true,
			sessionID: backend.ID,
			title:     name,
			detail:    "backend only · not resumable",
		})
	}

	a.sessionRows = rows

	items := make([]selectorItem, len(rows))
	for i, row := range rows {
		items[i] = selectorItem{
			title:    row.title,
			detail:   row.detail,
			disabled: row.isBackend,
			orig:     i,
		}
	}
	a.selector.setItems(items)
}

func formatMillis(millis int64) string {
	if millis == 0 {
		return "never"
	}
	return time.UnixMilli(millis).Format("Jan 2, 3:04 PM")
}

// renderSelector draws the shared selection list with cursor, filter line
// and empty state.
func (a AppView) renderSelector(title, emptyMsg string, footer string) string {
	var lines []string

	lines = append(lines, TitleStyle.Render(title))
	lines = append(lines, "")

	if a.selector.filtering {
		lines = append(lines, a.selector.filterInput.View())
		lines = append(lines, "")
	}

	visible := a.selector.visible()
	if len(visible) == 0 {
		msg := emptyMsg
		if a.selector.filtering {
			msg = "No matches found"
		}
		lines = append(lines, DimStyle.Render("  "+msg))
	}

	maxTitle := a.width - 30
	if maxTitle < 20 {
		maxTitle = 20
	}

	for i, item := range visible {
		indicator := "  "
		if i == a.selector.cursor {
			indicator = "> "
		}

		title := runewidth.Truncate(item.title, maxTitle, "...")
		line := indicator + title
		if item.detail != "" {
			line += DimStyle.Render("  " + item.detail)
		}

		switch {
		case item.disabled:
			line = DimStyle.Render(indicator + title + "  " + item.detail)
		case i == a.selector.cursor:
			line = SelectedStyle.Render(indicator+title) + DimStyle.Render("  "+item.detail)
		}

		lines = append(lines, line)
	}

	if a.inlineError != "" {
		lines = append(lines, "")
		lines = append(lines, ErrorStyle.Render("  "+a.inlineError))
	}

	lines = append(lines, "")
	lines = append(lines, HelpStyle.Render(footer))

	out := ""
	for _, line := range lines {
		out += line + "\n"
	}
	return out
}
