package ui

import (
	"fmt"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"agtui/config"
	appmodel "agtui/model"
	"agtui/storage"
)

func (a AppView) View() string {
	if !a.ready {
		return "Initializing..."
	}

	switch a.dataModel.Stage {
	case appmodel.StageConnectionError:
		return a.renderConnectionError()
	case appmodel.StageSelectingType:
		return a.renderSelector(
			"Select a target type",
			"Nothing discovered on this backend",
			FormatFooter("j/k", "Navigate", "Enter", "Select", "/", "Filter", "Esc", "Quit"),
		)
	case appmodel.StageSelectingTarget:
		return a.renderSelector(
			fmt.Sprintf("Select %s", strings.ToLower(a.dataModel.SelectedType.Label())),
			fmt.Sprintf("No %s available", strings.ToLower(a.dataModel.SelectedType.Label())),
			FormatFooter("j/k", "Navigate", "Enter", "Select", "/", "Filter", "Esc", "Back"),
		)
	case appmodel.StageSelectingSession:
		return a.renderSessionScreen()
	case appmodel.StageChatting:
		return a.renderChat()
	}

	return ""
}

func (a AppView) renderConnectionError() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Cannot reach backend"))
	b.WriteString("\n\n")
	b.WriteString(ErrorStyle.Render(fmt.Sprintf("%v", a.dataModel.LastError)))
	b.WriteString("\n\n")
	b.WriteString(DimStyle.Render("The backend must be reachable before anything else can happen."))
	b.WriteString("\n\n")
	if a.flash != "" {
		b.WriteString(DimStyle.Render(a.flash))
		b.WriteString("\n\n")
	}
	b.WriteString(HelpStyle.Render(FormatFooter("r", "Retry", "q", "Quit")))

	return b.String()
}

func (a AppView) renderSessionScreen() string {
	if a.confirmDelete != nil {
		var b strings.Builder
		b.WriteString(TitleStyle.Render("Delete session"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Delete %q? This cannot be undone.\n\n", a.confirmDelete.title))
		b.WriteString(HelpStyle.Render(FormatFooter("y", "Delete", "n", "Keep")))
		return b.String()
	}

	title := "Select a session"
	if a.dataModel.SelectedTarget != nil {
		title = fmt.Sprintf("Sessions for %s", a.dataModel.SelectedTarget.Display())
	}
	if a.loadingList {
		title += "  " + a.loadingSpinner.View()
	}

	return a.renderSelector(
		title,
		"No sessions yet",
		FormatFooter("j/k", "Navigate", "Enter", "Select", "d", "Delete", "r", "Refresh", "/", "Filter", "Esc", "Back"),
	)
}

func (a AppView) renderChat() string {
	var b strings.Builder

	header := "Chat"
	if a.dataModel.SelectedTarget != nil {
		header = a.dataModel.SelectedTarget.Display()
	}
	sessionName := ""
	if a.dataModel.CurrentSession != nil {
		sessionName = a.dataModel.CurrentSession.Name
		if sessionName == "" {
			sessionName = a.dataModel.CurrentSession.ID
		}
	}
	b.WriteString(TitleStyle.Render(header))
	if sessionName != "" {
		b.WriteString(DimStyle.Render("  " + sessionName))
	}
	b.WriteString("\n\n")

	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	switch {
	case a.dataModel.Stream.Busy():
		state := "Waiting for response"
		if a.dataModel.Stream.State() == appmodel.StreamReceiving {
			state = "Receiving"
		}
		if a.dataModel.Stream.Cancelling() {
			state = "Cancelling"
		}
		b.WriteString(a.loadingSpinner.View() + DimStyle.Render(" "+state+"..."))
	case a.flash != "":
		b.WriteString(DimStyle.Render(a.flash))
	default:
		b.WriteString(" ")
	}
	b.WriteString("\n")

	b.WriteString(a.textarea.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(FormatFooter("Enter", "Send", "Esc", "Cancel/Back", "Ctrl+Y", "Copy reply", "Ctrl+C", "Quit")))

	return b.String()
}

// updateViewportContent rebuilds the chat log view from the history.
func (a *AppView) updateViewportContent(gotoBottom bool) {
	if !a.ready {
		return
	}

	items := a.dataModel.History.Items()
	if len(items) == 0 {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Start chatting!"))
		return
	}

	var content strings.Builder

	for _, item := range items {
		timestamp := DimStyle.Render(time.UnixMilli(item.Timestamp).Format("[15:04]"))

		var role string
		var body string
		switch item.Type {
		case storage.ItemTypeUser:
			role = UserStyle.Render("You")
			body = item.Text
		case storage.ItemTypeAssistant:
			role = AssistantStyle.Render("Assistant")
			body = item.Text
			if rendered, ok := a.rendered[item.ID]; ok {
				body = rendered
			}
			if item.Metadata != nil && item.Metadata.Cancelled {
				body += "\n" + DimStyle.Render("[response truncated]")
			}
		case storage.ItemTypeError:
			role = ErrorStyle.Render("Error")
			body = ErrorStyle.Render(item.Text)
		default:
			role = DimStyle.Render("Info")
			body = DimStyle.Render(item.Text)
		}

		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, body))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// renderMarkdownAsync renders an assistant message off the update loop and
// reports back with a markdownRenderedMsg. The raw text stays on screen
// until the rendered version lands.
func (a AppView) renderMarkdownAsync(itemID int64, content string) tea.Cmd {
	width := a.width - 4
	if width < 20 {
		width = 80
	}

	return func() tea.Msg {
		start := time.Now()

		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width, 0)
		doc := p.Parse([]byte(content))
		rendered := strings.TrimRight(string(gomarkdown.Render(doc, r)), "\n")

		if config.DebugLog != nil {
			config.DebugLog.Printf("[ui] markdown rendered for item %d in %v", itemID, time.Since(start))
		}

		return markdownRenderedMsg{
			ItemID:   itemID,
			Rendered: rendered,
		}
	}
}
