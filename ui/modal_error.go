package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrorModal is a standalone model for fatal startup errors, shown before the
// main UI exists.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	boxWidth := 60
	if m.width < boxWidth+10 {
		boxWidth = m.width - 10
	}
	centered := lipgloss.NewStyle().Width(boxWidth).Align(lipgloss.Center)

	title := centered.Inherit(TitleStyle).Foreground(dangerColor).Render(m.title)
	body := centered.Render(m.message)
	footer := centered.Inherit(HelpStyle).Render(FormatFooter("Enter", "Quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
