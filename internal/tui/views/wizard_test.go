package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/auth"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/finalize"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/msgs"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

func testSchema() *wizard.Schema {
	return wizard.MustCompile(&wizard.Definition{
		Key:        "checkin",
		Title:      "Check-in",
		Version:    1,
		StorageKey: "test:checkin:v1",
		Steps: []wizard.Step{
			{
				Title:  "Goal",
				Fields: []wizard.FieldSpec{{Name: "goal", Kind: wizard.KindText, Label: "Goal"}},
				Gate:   []wizard.Rule{{Kind: wizard.RuleMinLength, Field: "goal", Min: 3}},
			},
			{
				Title: "Mood",
				Fields: []wizard.FieldSpec{
					{Name: "mood", Kind: wizard.KindEnum, Options: []string{"calm", "tense"}},
					{Name: "energy", Kind: wizard.KindScale, Min: 1, Max: 3},
					{Name: "plans", Kind: wizard.KindRecords, Subfields: []string{"if", "then"}},
				},
				Gate: []wizard.Rule{{Kind: wizard.RuleRequired, Field: "mood", Hint: "pick a mood"}},
			},
		},
		Summary: map[string]string{"mood": "mood"},
	})
}

type stubCompleter struct {
	outcome finalize.Outcome
	calls   int
}

func (s *stubCompleter) Complete(ctx context.Context, subtaskKey, phone, token string, payload map[string]any) finalize.Outcome {
	s.calls++
	return s.outcome
}

func newWizard(t *testing.T, outcome finalize.Outcome) (WizardModel, answers.Store, *stubCompleter) {
	t.Helper()
	store := answers.NewMemoryStore()
	client := &stubCompleter{outcome: outcome}
	creds := auth.Static(auth.Credentials{Phone: "0912", Token: "tok"})
	orch := completion.New(store, client, creds, completion.WithLogger(logging.NopLogger()))

	ctrl, err := completion.Boot(context.Background(), store, testSchema(), logging.NopLogger())
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	m := NewWizardModel(ctrl, orch, store, logging.NopLogger())
	m.SetSize(80, 30)
	return m, store, client
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func space() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }

func press(m WizardModel, keys ...tea.KeyMsg) WizardModel {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

// collect runs cmd and any batched commands, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func textValue(m WizardModel, field string) string {
	v, _ := m.Controller().Value(field)
	return v.Text
}

// fill completes both steps and leaves the wizard on step 2.
func fill(t *testing.T, m WizardModel) WizardModel {
	t.Helper()
	m = press(m, runes("run daily"), key(tea.KeyCtrlN), space())
	if m.Controller().Step() != 2 || !m.Controller().CanFinalize() {
		t.Fatalf("fill left step=%d canFinalize=%v", m.Controller().Step(), m.Controller().CanFinalize())
	}
	return m
}

func TestWizardModel_TypingEditsFocusedText(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})

	m = press(m, runes("walk"))

	if got := textValue(m, "goal"); got != "walk" {
		t.Errorf("goal = %q, want %q", got, "walk")
	}
}

func TestWizardModel_NextBlockedByGate(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})

	m = press(m, runes("ab"), key(tea.KeyCtrlN))

	if m.Controller().Step() != 1 {
		t.Errorf("expected to stay on step 1, got %d", m.Controller().Step())
	}
	if !strings.Contains(m.Notice(), "goal needs at least 3 characters") {
		t.Errorf("expected gate hint in notice, got %q", m.Notice())
	}
}

func TestWizardModel_NextAndBack(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})

	m = press(m, runes("abc"), key(tea.KeyCtrlN))
	if m.Controller().Step() != 2 {
		t.Fatalf("expected step 2, got %d", m.Controller().Step())
	}
	if !strings.Contains(m.View(), "Step 2 of 2") {
		t.Error("expected progress to show step 2 of 2")
	}

	m = press(m, key(tea.KeyCtrlP))
	if m.Controller().Step() != 1 {
		t.Errorf("expected step 1 after back, got %d", m.Controller().Step())
	}
	if got := textValue(m, "goal"); got != "abc" {
		t.Errorf("going back must keep answers, goal = %q", got)
	}
}

func TestWizardModel_LastStepNotice(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})
	m = fill(t, m)

	m = press(m, key(tea.KeyCtrlN))

	if !strings.Contains(m.Notice(), "last step") {
		t.Errorf("Notice() = %q, want last step notice", m.Notice())
	}
}

func TestWizardModel_EnumToggle(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})
	m = press(m, runes("abc"), key(tea.KeyCtrlN))

	m = press(m, key(tea.KeyTab), space())
	if got := textValue(m, "mood"); got != "tense" {
		t.Fatalf("mood = %q, want tense", got)
	}

	m = press(m, space())
	if got := textValue(m, "mood"); got != "" {
		t.Errorf("selecting the chosen option again should clear it, mood = %q", got)
	}
}

func TestWizardModel_ScaleNudge(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})
	m = press(m, runes("abc"), key(tea.KeyCtrlN))

	// calm, tense, energy
	m = press(m, key(tea.KeyTab), key(tea.KeyTab), key(tea.KeyRight))
	v, _ := m.Controller().Value("energy")
	if !v.ScaleSet || v.Scale != 1 {
		t.Fatalf("first nudge should set the minimum, got %+v", v)
	}

	m = press(m, key(tea.KeyRight), key(tea.KeyRight), key(tea.KeyRight))
	v, _ = m.Controller().Value("energy")
	if v.Scale != 3 {
		t.Errorf("scale should clamp at max, got %d", v.Scale)
	}

	m = press(m, runes("h"))
	v, _ = m.Controller().Value("energy")
	if v.Scale != 2 {
		t.Errorf("h should decrement, got %d", v.Scale)
	}
}

func TestWizardModel_Records(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})
	m = press(m, runes("abc"), key(tea.KeyCtrlN))

	// calm, tense, energy, + Add entry
	m = press(m, key(tea.KeyShiftTab), key(tea.KeyEnter))
	v, _ := m.Controller().Value("plans")
	if len(v.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(v.Records))
	}

	m = press(m, runes("rain"), key(tea.KeyEnter), runes("umbrella"))
	v, _ = m.Controller().Value("plans")
	if v.Records[0]["if"] != "rain" || v.Records[0]["then"] != "umbrella" {
		t.Errorf("record = %v", v.Records[0])
	}

	m = press(m, key(tea.KeyCtrlD))
	v, _ = m.Controller().Value("plans")
	if len(v.Records) != 0 {
		t.Errorf("ctrl+d should remove the record, got %d", len(v.Records))
	}
}

func TestWizardModel_SaveDraft(t *testing.T) {
	m, store, _ := newWizard(t, finalize.Outcome{})

	m = press(m, runes("abc"), key(tea.KeyCtrlS))

	if m.Notice() != "Draft saved." {
		t.Errorf("Notice() = %q", m.Notice())
	}
	if _, err := store.Load(context.Background(), "test:checkin:v1:draft"); err != nil {
		t.Errorf("draft not stored: %v", err)
	}
	if _, err := store.Load(context.Background(), "test:checkin:v1"); !errors.Is(err, answers.ErrNotFound) {
		t.Errorf("draft must not write the snapshot key, err = %v", err)
	}
}

func TestWizardModel_FinalizeBlocked(t *testing.T) {
	m, _, client := newWizard(t, finalize.Outcome{Kind: finalize.Accepted})

	m, cmd := m.Update(key(tea.KeyCtrlF))

	if cmd != nil || m.Saving() {
		t.Error("incomplete answers must not start a finalize")
	}
	if client.calls != 0 {
		t.Error("client must not be called")
	}
	if !strings.Contains(m.Notice(), "goal") || !strings.Contains(m.Notice(), "pick a mood") {
		t.Errorf("expected every failing hint, got %q", m.Notice())
	}
}

func TestWizardModel_FinalizeAccepted(t *testing.T) {
	m, store, client := newWizard(t, finalize.Outcome{Kind: finalize.Accepted})
	m = fill(t, m)

	m, cmd := m.Update(key(tea.KeyCtrlF))
	if !m.Saving() {
		t.Fatal("expected saving state")
	}
	if !strings.Contains(m.View(), "Recording completion") {
		t.Error("expected saving screen")
	}

	// Keys are ignored while saving.
	before := textValue(m, "goal")
	m = press(m, key(tea.KeyCtrlP), runes("zzz"))
	if m.Controller().Step() != 2 || textValue(m, "goal") != before {
		t.Error("input must be ignored while saving")
	}

	var done *msgs.FinalizeDoneMsg
	for _, msg := range collect(cmd) {
		if d, ok := msg.(msgs.FinalizeDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("expected a FinalizeDoneMsg")
	}
	m, _ = m.Update(*done)

	if m.Saving() {
		t.Error("saving should end")
	}
	if client.calls != 1 {
		t.Errorf("client calls = %d, want 1", client.calls)
	}
	title, _, ok := m.Modal()
	if !ok || title != "Completed" {
		t.Errorf("Modal() = %q, %v", title, ok)
	}
	if !m.Controller().IsLocked() {
		t.Error("controller should be locked")
	}
	if _, err := store.Load(context.Background(), "test:checkin:v1"); err != nil {
		t.Errorf("snapshot not stored: %v", err)
	}

	m = press(m, key(tea.KeyEnter))
	if _, _, ok := m.Modal(); ok {
		t.Error("enter should close the modal")
	}
	view := m.View()
	if !strings.Contains(view, "REVIEW") || !strings.Contains(view, "mood: calm") {
		t.Errorf("expected review view with summary, got:\n%s", view)
	}

	// Locked answers cannot be edited, but can be navigated.
	m = press(m, key(tea.KeyCtrlP), runes("xyz"))
	if m.Controller().Step() != 1 {
		t.Error("review should navigate back")
	}
	if textValue(m, "goal") != "run daily" {
		t.Errorf("locked goal changed to %q", textValue(m, "goal"))
	}
}

func TestWizardModel_FinalizeRejected(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})
	m = fill(t, m)

	r := completion.New(answers.NewMemoryStore(), &stubCompleter{outcome: finalize.Reject(finalize.CodeNetworkError)},
		auth.Static(auth.Credentials{Phone: "1", Token: "t"})).Finalize(context.Background(), m.Controller())
	m, _ = m.Update(msgs.FinalizeDoneMsg{Result: r})

	title, body, ok := m.Modal()
	if !ok || title != "Not recorded" {
		t.Errorf("Modal() title = %q, ok = %v", title, ok)
	}
	if !strings.Contains(body, "Could not reach the server") {
		t.Errorf("Modal() body = %q", body)
	}
	if m.Controller().IsLocked() {
		t.Error("a rejected completion must leave answers editable")
	}
}

func TestWizardModel_EscGoesHome(t *testing.T) {
	m, _, _ := newWizard(t, finalize.Outcome{})

	_, cmd := m.Update(key(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(msgs.GoToHomeMsg); !ok {
		t.Error("expected GoToHomeMsg")
	}
}

func TestSummaryLines(t *testing.T) {
	got := SummaryLines(map[string]any{"b": 2, "a": "x"})
	if strings.Join(got, "|") != "a: x|b: 2" {
		t.Errorf("SummaryLines() = %v", got)
	}
}
