package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agtui/api"
	appmodel "agtui/model"
	"agtui/storage"
)

// sessionRow is one selectable line on the session screen. Backend rows are
// advisory: shown for context, not resumable (backend and local session ids
// are disjoint namespaces).
type sessionRow struct {
	isNew     bool
	isBackend bool
	sessionID string
	title     string
	detail    string
}

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	// Selection screens (shared across the three stages)
	selector selectorState

	// Session screen state
	sessionRows     []sessionRow
	localSessions   []*storage.Session
	backendSessions []api.BackendSession
	loadingList     bool
	confirmDelete   *sessionRow
	inlineError     string

	// Chat state
	rendered map[int64]string // item id -> cached markdown rendering
	flash    string           // transient status line
}

// NewAppView builds the root bubbletea model. All dependencies arrive via
// the injected data model.
func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type a message, or / for commands..."
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	filterInput := textinput.New()
	filterInput.Placeholder = "filter..."
	filterInput.Prompt = "/ "

	return AppView{
		dataModel:      dataModel,
		textarea:       ta,
		loadingSpinner: sp,
		selector: selectorState{
			filterInput: filterInput,
		},
		rendered: make(map[int64]string),
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		a.dataModel.CheckBackend(),
		a.loadingSpinner.Tick,
		textarea.Blink,
	)
}
