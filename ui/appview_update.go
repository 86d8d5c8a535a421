package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"agtui/api"
	"agtui/config"
	appmodel "agtui/model"
	"agtui/storage"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		vpHeight := a.height - 9 // header, spinner line, textarea, footer
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !a.ready {
			a.viewport = viewport.New(a.width, vpHeight)
			a.ready = true
		} else {
			a.viewport.Width = a.width
			a.viewport.Height = vpHeight
		}
		a.textarea.SetWidth(a.width - 2)
		a.updateViewportContent(false)
		return a, nil

	case spinner.TickMsg:
		if a.dataModel.Stream.Busy() || a.loadingList {
			var cmd tea.Cmd
			a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case discoveryResultMsg:
		return a.handleDiscoveryResult(msg)

	case sessionsListMsg:
		return a.handleSessionsList(msg)

	case sessionLoadedMsg:
		return a.handleSessionLoaded(msg)

	case sessionSavedMsg:
		if msg.Err != nil {
			// Non-fatal: the in-memory session is intact
			a.flash = "Warning: session save failed"
		}
		return a, a.dataModel.OnSaved(msg)

	case sessionDeletedMsg:
		return a.handleSessionDeleted(msg)

	case searchResultsMsg:
		return a.handleSearchResults(msg)

	case markdownRenderedMsg:
		a.rendered[msg.ItemID] = msg.Rendered
		a.updateViewportContent(false)
		return a, nil

	case streamChunkMsg, streamDoneMsg, streamErrorMsg:
		return a.handleStreamingMessage(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a AppView) handleDiscoveryResult(msg discoveryResultMsg) (AppView, tea.Cmd) {
	if msg.Err != nil {
		a.dataModel.EnterConnectionError(msg.Err)
		return a, nil
	}

	a.dataModel.Discovery = msg.Discovery
	a.dataModel.LastError = nil
	if a.dataModel.Stage == appmodel.StageConnectionError {
		a.dataModel.Stage = appmodel.StageSelectingType
	}
	a.flash = ""
	a.buildTypeItems()
	return a, nil
}

func (a AppView) handleSessionsList(msg sessionsListMsg) (AppView, tea.Cmd) {
	a.loadingList = false

	if a.dataModel.Stage == appmodel.StageChatting {
		// Result of the /sessions command: render inline
		if msg.Err != nil {
			a.dataModel.History.AddError(fmt.Sprintf("Could not list sessions: %v", msg.Err))
		} else {
			a.dataModel.History.AddInfo(formatSessionListing(msg.Sessions))
		}
		a.updateViewportContent(true)
		return a, nil
	}

	if msg.Err != nil {
		a.inlineError = fmt.Sprintf("Could not list sessions: %v", msg.Err)
		return a, nil
	}

	a.inlineError = ""
	a.localSessions = msg.Sessions
	a.backendSessions = msg.Backend
	a.buildSessionItems()
	return a, nil
}

func (a AppView) handleSessionLoaded(msg sessionLoadedMsg) (AppView, tea.Cmd) {
	if msg.Err != nil {
		// Stay in session selection; a bad file is surfaced inline, never a
		// crash.
		a.inlineError = describeLoadError(msg.Err)
		return a, nil
	}

	a.dataModel.AttachSession(msg.Session)
	return a.enterChat()
}

func (a AppView) handleSessionDeleted(msg sessionDeletedMsg) (AppView, tea.Cmd) {
	if a.dataModel.Stage == appmodel.StageChatting {
		if msg.Err != nil {
			a.dataModel.History.AddError(fmt.Sprintf("Could not delete session: %v", msg.Err))
		} else {
			a.dataModel.History.AddInfo(fmt.Sprintf("Deleted session %s", msg.SessionID))
		}
		a.updateViewportContent(true)
		return a, nil
	}

	if msg.Err != nil {
		a.inlineError = fmt.Sprintf("Could not delete session: %v", msg.Err)
		return a, nil
	}

	a.inlineError = ""
	a.loadingList = true
	return a, tea.Batch(a.dataModel.FetchSessionList(), a.loadingSpinner.Tick)
}

func (a AppView) handleSearchResults(msg searchResultsMsg) (AppView, tea.Cmd) {
	if msg.Err != nil {
		a.dataModel.History.AddError(fmt.Sprintf("Search failed: %v", msg.Err))
	} else {
		a.dataModel.History.AddInfo(formatSearchResults(msg.Query, msg.Matches))
	}
	a.updateViewportContent(true)
	return a, nil
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.dataModel.Stage {
	case appmodel.StageConnectionError:
		return a.handleConnectionErrorKey(msg)
	case appmodel.StageSelectingType, appmodel.StageSelectingTarget, appmodel.StageSelectingSession:
		return a.handleSelectionKey(msg)
	case appmodel.StageChatting:
		return a.handleChatKey(msg)
	}

	return a, nil
}

func (a AppView) handleConnectionErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		a.flash = "Retrying..."
		return a, a.dataModel.CheckBackend()
	case "q", "esc":
		return a, tea.Quit
	}
	return a, nil
}

func (a AppView) handleSelectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Delete confirmation intercepts everything on the session screen
	if a.confirmDelete != nil {
		switch msg.String() {
		case "y":
			row := *a.confirmDelete
			a.confirmDelete = nil
			return a, a.dataModel.DeleteSessionCmd(row.sessionID)
		case "n", "esc":
			a.confirmDelete = nil
		}
		return a, nil
	}

	if a.selector.handleFilterKey(msg) {
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.selector.moveCursor(-1)
		return a, nil

	case "down", "j":
		a.selector.moveCursor(1)
		return a, nil

	case "/":
		a.selector.startFiltering()
		return a, nil

	case "enter":
		return a.commitSelection()

	case "esc":
		return a.stepBack()

	case "r":
		if a.dataModel.Stage == appmodel.StageSelectingSession {
			a.loadingList = true
			return a, tea.Batch(a.dataModel.FetchSessionList(), a.loadingSpinner.Tick)
		}
		return a, nil

	case "d":
		if a.dataModel.Stage == appmodel.StageSelectingSession {
			if item, ok := a.selector.selected(); ok {
				row := a.sessionRows[item.orig]
				if !row.isNew && !row.isBackend {
					a.confirmDelete = &row
				}
			}
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) commitSelection() (tea.Model, tea.Cmd) {
	item, ok := a.selector.selected()
	if !ok {
		return a, nil
	}

	switch a.dataModel.Stage {
	case appmodel.StageSelectingType:
		targetType := api.AllTargetTypes[item.orig]
		if item.disabled {
			a.inlineError = fmt.Sprintf("No %s available on this backend", strings.ToLower(targetType.Label()))
			return a, nil
		}
		a.inlineError = ""
		a.dataModel.SelectType(targetType)
		a.buildTargetItems()
		return a, nil

	case appmodel.StageSelectingTarget:
		targets := a.dataModel.Discovery.ByType(a.dataModel.SelectedType)
		if item.orig >= len(targets) {
			return a, nil
		}
		a.inlineError = ""
		a.dataModel.SelectTarget(targets[item.orig])
		a.loadingList = true
		return a, tea.Batch(a.dataModel.FetchSessionList(), a.loadingSpinner.Tick)

	case appmodel.StageSelectingSession:
		row := a.sessionRows[item.orig]
		switch {
		case row.isBackend:
			a.inlineError = "Backend sessions are informational and cannot be resumed here"
			return a, nil
		case row.isNew:
			a.inlineError = ""
			a.dataModel.StartNewSession()
			return a.enterChat()
		default:
			a.inlineError = ""
			return a, a.dataModel.LoadSessionCmd(row.sessionID)
		}
	}

	return a, nil
}

func (a AppView) stepBack() (tea.Model, tea.Cmd) {
	switch a.dataModel.Stage {
	case appmodel.StageSelectingType:
		return a, tea.Quit
	case appmodel.StageSelectingTarget:
		a.inlineError = ""
		a.dataModel.BackToTypes()
		a.buildTypeItems()
	case appmodel.StageSelectingSession:
		a.inlineError = ""
		a.dataModel.BackToTargets()
		a.buildTargetItems()
	}
	return a, nil
}

func (a AppView) enterChat() (AppView, tea.Cmd) {
	a.rendered = make(map[int64]string)
	a.flash = ""
	a.textarea.Reset()
	a.textarea.Focus()
	a.updateViewportContent(true)

	// Kick markdown rendering for restored assistant messages
	var cmds []tea.Cmd
	for _, item := range a.dataModel.History.Items() {
		if item.Type == storage.ItemTypeAssistant {
			cmds = append(cmds, a.renderMarkdownAsync(item.ID, item.Text))
		}
	}
	cmds = append(cmds, textarea.Blink)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	busy := a.dataModel.Stream.Busy()

	switch msg.String() {
	case "esc":
		if busy {
			if a.dataModel.Stream.Cancel() {
				a.flash = "Cancelling..."
				if config.DebugLog != nil {
					config.DebugLog.Printf("[ui] stream cancel requested")
				}
			}
			return a, nil
		}
		// Back to session selection
		a.dataModel.LeaveChat()
		a.loadingList = true
		return a, tea.Batch(a.dataModel.FetchSessionList(), a.loadingSpinner.Tick)

	case "ctrl+y":
		if item, ok := a.dataModel.History.LastAssistant(); ok {
			if err := clipboard.WriteAll(item.Text); err == nil {
				a.flash = "Copied last response"
			}
		}
		return a, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case "enter":
		if busy {
			return a, nil
		}
		return a.submitInput()
	}

	// Input is disabled while a response is in flight
	if busy {
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) submitInput() (tea.Model, tea.Cmd) {
	text := a.textarea.Value()
	if strings.TrimSpace(text) == "" {
		a.dataModel.History.AddError("Cannot send: message is empty")
		a.textarea.Reset()
		a.updateViewportContent(true)
		return a, nil
	}

	if appmodel.IsSlashCommand(text) {
		cmd := a.dataModel.HandleSlash(text)
		a.textarea.Reset()
		a.updateViewportContent(true)
		return a, cmd
	}

	cmd, err := a.dataModel.Submit(text)
	if err != nil {
		a.dataModel.History.AddError(fmt.Sprintf("Cannot send: %v", err))
		a.updateViewportContent(true)
		return a, nil
	}

	a.textarea.Reset()
	a.flash = ""
	a.updateViewportContent(true)
	return a, tea.Batch(cmd, a.loadingSpinner.Tick)
}

func describeLoadError(err error) string {
	switch {
	case isCorruption(err):
		return "Session file is corrupt and cannot be resumed (treated as absent)"
	case isNotFound(err):
		return "Session file no longer exists"
	default:
		return fmt.Sprintf("Could not load session: %v", err)
	}
}
