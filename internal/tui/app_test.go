package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/catalog"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/msgs"
)

func initialModel(t *testing.T) Model {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(Options{Deps: Deps{
		Catalog: c,
		Store:   answers.NewMemoryStore(),
		Logger:  logging.NopLogger(),
	}})
}

func TestModel_View_TerminalTooSmall(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		expectSmall bool
	}{
		{"exactly minimum size", MinTerminalWidth, MinTerminalHeight, false},
		{"width too small", MinTerminalWidth - 1, MinTerminalHeight, true},
		{"height too small", MinTerminalWidth, MinTerminalHeight - 1, true},
		{"both dimensions too small", MinTerminalWidth - 10, MinTerminalHeight - 5, true},
		{"larger than minimum", 100, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := initialModel(t)
			next, _ := m.Update(tea.WindowSizeMsg{Width: tt.width, Height: tt.height})

			view := next.View()

			if tt.expectSmall {
				for _, want := range []string{"Terminal too small", "Minimum:", "Current:"} {
					if !strings.Contains(view, want) {
						t.Errorf("expected view to contain %q", want)
					}
				}
			} else if strings.Contains(view, "Terminal too small") {
				t.Error("did not expect view to contain 'Terminal too small'")
			}
		})
	}
}

func TestModel_renderTerminalTooSmall_ShowsDimensions(t *testing.T) {
	m := initialModel(t)
	m.width = 50
	m.height = 10

	view := m.renderTerminalTooSmall()

	if !strings.Contains(view, "60x15") {
		t.Error("expected minimum dimensions 60x15 to be shown")
	}
	if !strings.Contains(view, "50x10") {
		t.Error("expected current dimensions 50x10 to be shown")
	}
}

func TestModel_OpenSubtask(t *testing.T) {
	m := initialModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	next, cmd := next.Update(msgs.OpenSubtaskMsg{Key: "core_values"})
	if cmd == nil {
		t.Fatal("expected boot command")
	}
	booted, ok := cmd().(msgs.SubtaskBootedMsg)
	if !ok || booted.Err != nil {
		t.Fatalf("expected a booted subtask, got %#v", booted)
	}

	next, _ = next.Update(booted)
	model := next.(Model)
	if model.CurrentView() != ViewWizard {
		t.Fatalf("CurrentView() = %v, want ViewWizard", model.CurrentView())
	}
	if !strings.Contains(model.View(), "Step 1 of") {
		t.Error("expected the wizard to render")
	}
}

func TestModel_OpenUnknownSubtask(t *testing.T) {
	m := initialModel(t)

	next, cmd := m.Update(msgs.OpenSubtaskMsg{Key: "missing"})
	next, _ = next.Update(cmd())

	model := next.(Model)
	if model.CurrentView() != ViewHome {
		t.Error("expected to stay on home")
	}
	if !strings.Contains(model.home.Error(), "unknown subtask") {
		t.Errorf("home error = %q", model.home.Error())
	}
}

func TestModel_GoToHomeRefreshesStatuses(t *testing.T) {
	m := initialModel(t)
	m.currentView = ViewWizard

	next, cmd := m.Update(msgs.GoToHomeMsg{})
	if next.(Model).CurrentView() != ViewHome {
		t.Error("expected home view")
	}
	if cmd == nil {
		t.Fatal("expected status refresh")
	}
	loaded, ok := cmd().(msgs.StatusesLoadedMsg)
	if !ok {
		t.Fatal("expected StatusesLoadedMsg")
	}
	if loaded.Statuses["if_then_plans"] != completion.StatusNew {
		t.Errorf("Statuses = %v", loaded.Statuses)
	}
}

func TestModel_InitOpensRequestedSubtask(t *testing.T) {
	c, _ := catalog.Default()
	m := NewModel(Options{
		Deps:    Deps{Catalog: c, Store: answers.NewMemoryStore(), Logger: logging.NopLogger()},
		OpenKey: "trigger_map",
	})

	batch, ok := m.Init()().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch")
	}
	var opened bool
	for _, cmd := range batch {
		if msg, ok := cmd().(msgs.OpenSubtaskMsg); ok && msg.Key == "trigger_map" {
			opened = true
		}
	}
	if !opened {
		t.Error("expected OpenSubtaskMsg for trigger_map")
	}
}
