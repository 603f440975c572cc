package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/msgs"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/styles"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/views"
)

// Minimum terminal dimensions for the wizard layout.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// View represents the different screens in the TUI.
type View int

const (
	ViewHome View = iota
	ViewWizard
)

// Model is the main Bubble Tea model that routes between views.
type Model struct {
	currentView View
	width       int
	height      int

	deps    Deps
	openKey string

	home   views.HomeModel
	wizard views.WizardModel
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// NewModel builds the root model.
func NewModel(opts Options) Model {
	return Model{
		currentView: ViewHome,
		deps:        opts.Deps,
		openKey:     opts.OpenKey,
		home:        views.NewHomeModel(opts.Catalog.Schemas()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadStatuses()}
	if m.openKey != "" {
		key := m.openKey
		cmds = append(cmds, func() tea.Msg { return msgs.OpenSubtaskMsg{Key: key} })
	}
	return tea.Batch(cmds...)
}

func (m Model) loadStatuses() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		statuses := completion.Statuses(context.Background(), deps.Store, deps.Catalog.Schemas(), deps.Logger)
		return msgs.StatusesLoadedMsg{Statuses: statuses}
	}
}

func (m Model) boot(key string) tea.Cmd {
	schema, err := m.deps.Catalog.Get(key)
	if err != nil {
		return func() tea.Msg { return msgs.SubtaskBootedMsg{Err: err} }
	}
	deps := m.deps
	return func() tea.Msg {
		ctrl, err := completion.Boot(context.Background(), deps.Store, schema, deps.Logger)
		return msgs.SubtaskBootedMsg{Ctrl: ctrl, Err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.home.SetSize(msg.Width, msg.Height)
		if m.currentView == ViewWizard {
			m.wizard.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case msgs.OpenSubtaskMsg:
		return m, m.boot(msg.Key)

	case msgs.SubtaskBootedMsg:
		if msg.Err != nil {
			m.deps.Logger.Error("failed to open subtask", "error", msg.Err)
			m.home.SetError(msg.Err.Error())
			m.currentView = ViewHome
			return m, nil
		}
		m.wizard = views.NewWizardModel(msg.Ctrl, m.deps.Orchestrator, m.deps.Store, m.deps.Logger)
		m.wizard.SetSize(m.width, m.height)
		m.currentView = ViewWizard
		return m, m.wizard.Init()

	case msgs.GoToHomeMsg:
		m.currentView = ViewHome
		return m, m.loadStatuses()

	case msgs.StatusesLoadedMsg:
		var cmd tea.Cmd
		m.home, cmd = m.home.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewWizard:
		m.wizard, cmd = m.wizard.Update(msg)
	default:
		m.home, cmd = m.home.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < MinTerminalWidth || m.height < MinTerminalHeight) {
		return m.renderTerminalTooSmall()
	}
	if m.currentView == ViewWizard {
		return m.wizard.View()
	}
	return m.home.View()
}

// CurrentView returns the active screen.
func (m Model) CurrentView() View {
	return m.currentView
}

func (m Model) renderTerminalTooSmall() string {
	msg := styles.ErrorStyle.Render("Terminal too small") + "\n\n" +
		styles.SubtleStyle.Render(fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight)) + "\n" +
		styles.SubtleStyle.Render(fmt.Sprintf("Current: %dx%d", m.width, m.height))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}
