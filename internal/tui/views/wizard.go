package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/finalize"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/components"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/msgs"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/styles"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

type targetKind int

const (
	targetText targetKind = iota
	targetOption
	targetScale
	targetRecordText
	targetAddRecord
)

// target is one focusable element of the current step.
type target struct {
	kind   targetKind
	field  string
	option string
	record int
	sub    string
}

func (t target) editsText() bool {
	return t.kind == targetText || t.kind == targetRecordText
}

type outcomeModal struct {
	title   string
	body    string
	success bool
}

// WizardModel edits one subtask, or replays it read-only once finalized.
type WizardModel struct {
	ctrl   *wizard.Controller
	orch   *completion.Orchestrator
	store  answers.Store
	logger *logging.Logger
	now    func() time.Time

	targets []target
	focus   int
	editor  textinput.Model
	spinner spinner.Model

	// While saving the finalize command owns the controller; View and
	// Update must not read it until FinalizeDoneMsg arrives.
	saving bool
	modal  *outcomeModal

	notice    string
	noticeErr bool

	width  int
	height int
}

// NewWizardModel creates the view for a booted controller.
func NewWizardModel(ctrl *wizard.Controller, orch *completion.Orchestrator, store answers.Store, logger *logging.Logger) WizardModel {
	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 1000
	editor.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	m := WizardModel{
		ctrl:    ctrl,
		orch:    orch,
		store:   store,
		logger:  logger,
		now:     time.Now,
		editor:  editor,
		spinner: s,
	}
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m WizardModel) Update(msg tea.Msg) (WizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case msgs.FinalizeDoneMsg:
		m.saving = false
		m.applyResult(msg.Result)
		return m, m.rebuild()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.saving {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m WizardModel) handleKey(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.saving {
		return m, nil
	}
	if m.modal != nil {
		switch key {
		case "enter", "esc", " ":
			m.modal = nil
		}
		return m, nil
	}

	switch key {
	case "esc":
		return m, func() tea.Msg { return msgs.GoToHomeMsg{} }
	case "ctrl+n":
		err := m.ctrl.Next()
		switch {
		case errors.Is(err, wizard.ErrGateClosed):
			m.setNotice(strings.Join(m.ctrl.Hints(), "\n"), true)
			return m, nil
		case errors.Is(err, wizard.ErrLastStep):
			m.setNotice("This is the last step. Press ctrl+f to complete.", false)
			return m, nil
		}
		m.notice = ""
		m.focus = 0
		return m, m.rebuild()
	case "ctrl+p":
		m.ctrl.Back()
		m.notice = ""
		m.focus = 0
		return m, m.rebuild()
	}

	if m.ctrl.IsLocked() {
		return m, nil
	}

	switch key {
	case "ctrl+s":
		if err := completion.SaveDraft(context.Background(), m.store, m.ctrl, m.now()); err != nil {
			m.logger.Warn("failed to save draft", "error", err)
			m.setNotice("Draft not saved: "+err.Error(), true)
		} else {
			m.setNotice("Draft saved.", false)
		}
		return m, nil
	case "ctrl+f":
		if !m.ctrl.CanFinalize() {
			m.setNotice(strings.Join(m.ctrl.FinalizeHints(), "\n"), true)
			return m, nil
		}
		m.saving = true
		m.notice = ""
		m.editor.Blur()
		return m, tea.Batch(m.spinner.Tick, m.finalizeCmd())
	case "tab", "down":
		return m, m.moveFocus(1)
	case "shift+tab", "up":
		return m, m.moveFocus(-1)
	}

	t, ok := m.focused()
	if !ok {
		return m, nil
	}

	switch t.kind {
	case targetOption:
		if key == " " || key == "enter" {
			m.selectOption(t)
		}
		return m, nil

	case targetScale:
		switch key {
		case "left", "h":
			m.nudgeScale(t, -1)
		case "right", "l":
			m.nudgeScale(t, 1)
		}
		return m, nil

	case targetAddRecord:
		if key == "enter" || key == " " {
			idx, err := m.ctrl.AddRecord(t.field)
			if err != nil {
				m.setNotice(err.Error(), true)
				return m, nil
			}
			cmd := m.rebuild()
			m.focusRecord(t.field, idx)
			return m, tea.Batch(cmd, m.syncEditor())
		}
		return m, nil
	}

	// Text targets.
	switch key {
	case "enter":
		return m, m.moveFocus(1)
	case "ctrl+d":
		if t.kind == targetRecordText {
			if err := m.ctrl.RemoveRecord(t.field, t.record); err == nil {
				return m, m.rebuild()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.pushText(t, m.editor.Value())
	return m, cmd
}

func (m WizardModel) finalizeCmd() tea.Cmd {
	orch, ctrl := m.orch, m.ctrl
	return func() tea.Msg {
		return msgs.FinalizeDoneMsg{Result: orch.Finalize(context.Background(), ctrl)}
	}
}

func (m *WizardModel) applyResult(r completion.Result) {
	switch {
	case r.Ignored:
		return
	case r.Blocked:
		m.setNotice(strings.Join(r.Hints, "\n"), true)
		return
	case r.Locked():
		title := "Completed"
		if r.Outcome.Kind == finalize.AlreadyDone {
			title = "Already completed"
		}
		m.modal = &outcomeModal{title: title, body: r.Message(), success: true}
	case r.Err != nil:
		m.modal = &outcomeModal{title: "Not saved", body: r.Message()}
	default:
		m.modal = &outcomeModal{title: "Not recorded", body: r.Message()}
	}
}

func (m *WizardModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// rebuild recomputes the focus targets for the current step.
func (m *WizardModel) rebuild() tea.Cmd {
	m.targets = nil
	locked := m.ctrl.IsLocked()

	for _, spec := range m.ctrl.CurrentStep().Fields {
		switch spec.Kind {
		case wizard.KindText:
			m.targets = append(m.targets, target{kind: targetText, field: spec.Name})
		case wizard.KindSet, wizard.KindEnum:
			for _, opt := range spec.Options {
				m.targets = append(m.targets, target{kind: targetOption, field: spec.Name, option: opt})
			}
		case wizard.KindScale:
			m.targets = append(m.targets, target{kind: targetScale, field: spec.Name})
		case wizard.KindRecords:
			v, _ := m.ctrl.Value(spec.Name)
			for i := range v.Records {
				for _, sub := range spec.Subfields {
					m.targets = append(m.targets, target{kind: targetRecordText, field: spec.Name, record: i, sub: sub})
				}
			}
			if !locked {
				m.targets = append(m.targets, target{kind: targetAddRecord, field: spec.Name})
			}
		}
	}
	if m.focus >= len(m.targets) {
		m.focus = max(len(m.targets)-1, 0)
	}
	return m.syncEditor()
}

func (m WizardModel) focused() (target, bool) {
	if m.focus < 0 || m.focus >= len(m.targets) {
		return target{}, false
	}
	return m.targets[m.focus], true
}

func (m *WizardModel) moveFocus(delta int) tea.Cmd {
	if len(m.targets) == 0 {
		return nil
	}
	m.focus = (m.focus + delta + len(m.targets)) % len(m.targets)
	return m.syncEditor()
}

func (m *WizardModel) focusRecord(field string, index int) {
	for i, t := range m.targets {
		if t.kind == targetRecordText && t.field == field && t.record == index {
			m.focus = i
			return
		}
	}
}

// syncEditor loads the focused text target into the shared editor.
func (m *WizardModel) syncEditor() tea.Cmd {
	t, ok := m.focused()
	if !ok || !t.editsText() || m.ctrl.IsLocked() {
		m.editor.Blur()
		return nil
	}
	m.editor.SetValue(m.textValue(t))
	m.editor.CursorEnd()
	if spec, ok := m.ctrl.Definition().Field(t.field); ok {
		m.editor.Placeholder = spec.Placeholder
		if t.kind == targetRecordText {
			m.editor.Placeholder = t.sub
		}
	}
	return m.editor.Focus()
}

func (m WizardModel) textValue(t target) string {
	v, _ := m.ctrl.Value(t.field)
	if t.kind == targetRecordText {
		if t.record < len(v.Records) {
			return v.Records[t.record][t.sub]
		}
		return ""
	}
	return v.Text
}

func (m *WizardModel) pushText(t target, text string) {
	var err error
	if t.kind == targetRecordText {
		err = m.ctrl.SetRecord(t.field, t.record, t.sub, text)
	} else {
		err = m.ctrl.SetText(t.field, text)
	}
	if err != nil {
		m.logger.Debug("edit rejected", "field", t.field, "error", err)
	}
}

func (m *WizardModel) selectOption(t target) {
	spec, _ := m.ctrl.Definition().Field(t.field)
	if spec.Kind == wizard.KindSet {
		m.ctrl.Toggle(t.field, t.option)
		return
	}
	v, _ := m.ctrl.Value(t.field)
	if v.Text == t.option {
		m.ctrl.Choose(t.field, "")
		return
	}
	m.ctrl.Choose(t.field, t.option)
}

func (m *WizardModel) nudgeScale(t target, delta int) {
	spec, _ := m.ctrl.Definition().Field(t.field)
	v, _ := m.ctrl.Value(t.field)
	next := spec.Min
	if v.ScaleSet {
		next = min(max(v.Scale+delta, spec.Min), spec.Max)
	}
	m.ctrl.SetScale(t.field, next)
}

// View implements tea.Model.
func (m WizardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	def := m.ctrl.Definition()
	if m.saving {
		body := m.spinner.View() + " Recording completion..."
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.TitleStyle.Render(def.Title)+"\n"+body)
	}
	if m.modal != nil {
		return m.renderModal()
	}

	var b strings.Builder
	locked := m.ctrl.IsLocked()
	step := m.ctrl.CurrentStep()

	b.WriteString(styles.TitleStyle.Render(def.Title))
	b.WriteString("\n")
	b.WriteString(components.NewStepProgress(m.ctrl.Step(), def.StepCount(), 20).View())
	b.WriteString("\n\n")
	if locked {
		if snap, ok := m.ctrl.Final(); ok {
			b.WriteString(styles.LockedStyle.Render("Completed " + snap.SavedAt.Local().Format("2006-01-02 15:04")))
			b.WriteString("\n\n")
		}
	}
	b.WriteString(styles.SectionStyle.Render(step.Title))
	b.WriteString("\n")
	if step.Prompt != "" {
		b.WriteString(styles.SubtleStyle.Render(step.Prompt))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFields(step, locked))

	if locked && m.ctrl.Step() == def.StepCount() {
		if snap, ok := m.ctrl.Final(); ok && len(snap.Summary) > 0 {
			b.WriteString("\n")
			b.WriteString(styles.SectionStyle.Render("Summary"))
			b.WriteString("\n")
			for _, line := range SummaryLines(snap.Summary) {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	if m.notice != "" {
		b.WriteString("\n")
		style := styles.SuccessStyle
		if m.noticeErr {
			style = styles.ErrorStyle
		}
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	} else if !locked && !m.ctrl.CanAdvance() && m.ctrl.Step() < def.StepCount() {
		b.WriteString("\n")
		b.WriteString(styles.SubtleStyle.Render("Next is disabled until this step is complete."))
		b.WriteString("\n")
	}

	content := b.String()
	lines := strings.Count(content, "\n")
	if pad := m.height - 1 - lines; pad > 0 {
		content += strings.Repeat("\n", pad)
	}

	bar := components.NewStatusBar()
	var items []string
	if locked {
		bar = bar.WithBadge("REVIEW")
		items = []string{"ctrl+n Next", "ctrl+p Back", "esc Home"}
	} else {
		items = []string{"tab Field", "space Select", "ctrl+n Next", "ctrl+p Back", "ctrl+s Draft", "ctrl+f Complete", "esc Home"}
	}
	return content + bar.Render(m.width, items)
}

func (m WizardModel) renderFields(step wizard.Step, locked bool) string {
	var b strings.Builder
	cur, _ := m.focused()
	isFocused := func(t target) bool {
		return !locked && t == cur
	}
	marker := func(t target) string {
		if isFocused(t) {
			return styles.SelectedStyle.Render("> ")
		}
		return "  "
	}

	for _, spec := range step.Fields {
		v, _ := m.ctrl.Value(spec.Name)
		label := spec.Label
		if label == "" {
			label = spec.Name
		}

		switch spec.Kind {
		case wizard.KindText:
			t := target{kind: targetText, field: spec.Name}
			b.WriteString(marker(t) + label + ": " + m.renderText(t, v.Text, spec.Placeholder) + "\n")

		case wizard.KindSet, wizard.KindEnum:
			b.WriteString("  " + label + "\n")
			for _, opt := range spec.Options {
				t := target{kind: targetOption, field: spec.Name, option: opt}
				box := "( )"
				switch {
				case spec.Kind == wizard.KindSet && slices.Contains(v.Set, opt):
					box = "[x]"
				case spec.Kind == wizard.KindSet:
					box = "[ ]"
				case v.Text == opt:
					box = "(•)"
				}
				line := box + " " + opt
				if isFocused(t) {
					line = styles.SelectedStyle.Render(line)
				}
				b.WriteString("  " + marker(t) + line + "\n")
			}

		case wizard.KindScale:
			t := target{kind: targetScale, field: spec.Name}
			value := "-"
			if v.ScaleSet {
				value = fmt.Sprintf("%d", v.Scale)
			}
			rng := styles.SubtleStyle.Render(fmt.Sprintf("(%d-%d)", spec.Min, spec.Max))
			if isFocused(t) {
				value = styles.SelectedStyle.Render("◀ " + value + " ▶")
			}
			b.WriteString(marker(t) + label + ": " + value + " " + rng + "\n")

		case wizard.KindRecords:
			b.WriteString("  " + label + "\n")
			if len(v.Records) == 0 && locked {
				b.WriteString("    " + styles.SubtleStyle.Render("(none)") + "\n")
			}
			for i, rec := range v.Records {
				b.WriteString(fmt.Sprintf("    %d.\n", i+1))
				for _, sub := range spec.Subfields {
					t := target{kind: targetRecordText, field: spec.Name, record: i, sub: sub}
					b.WriteString("    " + marker(t) + sub + ": " + m.renderText(t, rec[sub], "") + "\n")
				}
			}
			if !locked {
				t := target{kind: targetAddRecord, field: spec.Name}
				line := "+ Add entry"
				if isFocused(t) {
					line = styles.SelectedStyle.Render(line)
				} else {
					line = styles.SubtleStyle.Render(line)
				}
				b.WriteString("    " + marker(t) + line + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m WizardModel) renderText(t target, value, placeholder string) string {
	cur, _ := m.focused()
	if !m.ctrl.IsLocked() && t == cur {
		return m.editor.View()
	}
	if strings.TrimSpace(value) == "" {
		if placeholder == "" {
			placeholder = "-"
		}
		return styles.SubtleStyle.Render(placeholder)
	}
	return value
}

func (m WizardModel) renderModal() string {
	titleStyle := styles.ErrorStyle
	if m.modal.success {
		titleStyle = styles.SuccessStyle
	}
	body := titleStyle.Bold(true).Render(m.modal.title) + "\n\n" +
		lipgloss.NewStyle().Width(min(60, max(m.width-10, 20))).Render(m.modal.body) + "\n\n" +
		styles.SubtleStyle.Render("enter to close")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(body))
}

// SummaryLines formats snapshot summary values as sorted "name: value" lines.
func SummaryLines(summary map[string]any) []string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, summary[k]))
	}
	return lines
}

// SetSize updates the model dimensions.
func (m *WizardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editor.Width = max(min(width-20, 80), 10)
}

// Controller returns the wizard controller.
func (m WizardModel) Controller() *wizard.Controller { return m.ctrl }

// Saving reports whether a finalize is in flight.
func (m WizardModel) Saving() bool { return m.saving }

// Notice returns the current inline notice.
func (m WizardModel) Notice() string { return m.notice }

// Modal returns the open outcome dialog, if any.
func (m WizardModel) Modal() (title, body string, ok bool) {
	if m.modal == nil {
		return "", "", false
	}
	return m.modal.title, m.modal.body, true
}
