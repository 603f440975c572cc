package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/components"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/msgs"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/styles"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

// SubtaskItem is one row of the home list.
type SubtaskItem struct {
	Key         string
	Title       string
	Description string
	Steps       int
	Status      completion.Status
}

// HomeModel lists the catalog's subtasks with their local status.
type HomeModel struct {
	items    []SubtaskItem
	cursor   int
	width    int
	height   int
	errorMsg string
}

// NewHomeModel creates a HomeModel for schemas. Statuses start as new until
// a StatusesLoadedMsg arrives.
func NewHomeModel(schemas []*wizard.Schema) HomeModel {
	items := make([]SubtaskItem, 0, len(schemas))
	for _, s := range schemas {
		items = append(items, SubtaskItem{
			Key:         s.Def.Key,
			Title:       s.Def.Title,
			Description: s.Def.Description,
			Steps:       s.Def.StepCount(),
		})
	}
	return HomeModel{items: items}
}

// Init implements tea.Model.
func (m HomeModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case msgs.StatusesLoadedMsg:
		for i := range m.items {
			m.items[i].Status = msg.Statuses[m.items[i].Key]
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.items) {
				key := m.items[m.cursor].Key
				m.errorMsg = ""
				return m, func() tea.Msg { return msgs.OpenSubtaskMsg{Key: key} }
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m HomeModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.TitleStyle.Render("P H O E N I X"))
	tagline := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.SubtleStyle.Render("Guided subtasks"))

	var lines []string
	if len(m.items) == 0 {
		lines = append(lines, styles.SubtleStyle.Render("No subtasks configured."))
	}
	for i, item := range m.items {
		badge := statusBadge(item.Status)
		main := fmt.Sprintf("%s  %s", badge, item.Title)
		meta := styles.SubtleStyle.Render(fmt.Sprintf("%d steps", item.Steps))
		if i == m.cursor {
			lines = append(lines, styles.SelectedStyle.Render("> "+main)+"  "+meta)
			if item.Description != "" {
				lines = append(lines, "    "+styles.SubtleStyle.Render(item.Description))
			}
		} else {
			lines = append(lines, "  "+main+"  "+meta)
		}
	}
	list := strings.Join(lines, "\n")

	statusBarHeight := 1
	contentHeight := 3 + len(lines)
	if m.errorMsg != "" {
		contentHeight += 2
	}
	availableHeight := m.height - statusBarHeight
	topPadding := max((availableHeight-contentHeight)/2, 0)

	b.WriteString(strings.Repeat("\n", topPadding))
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(tagline)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, list))

	if m.errorMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.ErrorStyle.Render(m.errorMsg)))
	}

	bottomPadding := max(availableHeight-topPadding-contentHeight, 0)
	b.WriteString(strings.Repeat("\n", bottomPadding))

	statusItems := []string{"↑↓ Navigate", "Enter Open", "q Quit"}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems))
	return b.String()
}

func statusBadge(s completion.Status) string {
	switch s {
	case completion.StatusDone:
		return styles.SuccessStyle.Render("[done] ")
	case completion.StatusDraft:
		return styles.WarningStyle.Render("[draft]")
	}
	return styles.SubtleStyle.Render("[new]  ")
}

// SetSize updates the model dimensions.
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Cursor returns the current cursor position.
func (m HomeModel) Cursor() int {
	return m.cursor
}

// Items returns the listed subtasks.
func (m HomeModel) Items() []SubtaskItem {
	return m.items
}

// SetError sets an error message to display until the next selection.
func (m *HomeModel) SetError(msg string) {
	m.errorMsg = msg
}

// Error returns the current error message.
func (m HomeModel) Error() string {
	return m.errorMsg
}
