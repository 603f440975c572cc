// Package msgs defines shared message types for TUI view transitions.
package msgs

import (
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

// GoToHomeMsg returns to the subtask list.
type GoToHomeMsg struct{}

// OpenSubtaskMsg asks the app to boot and show a subtask.
type OpenSubtaskMsg struct {
	Key string
}

// SubtaskBootedMsg carries a controller restored from local state.
type SubtaskBootedMsg struct {
	Ctrl *wizard.Controller
	Err  error
}

// StatusesLoadedMsg carries the status of every catalog subtask.
type StatusesLoadedMsg struct {
	Statuses map[string]completion.Status
}

// FinalizeDoneMsg is sent when a finalize attempt returns.
type FinalizeDoneMsg struct {
	Result completion.Result
}

// DraftSavedMsg is sent after a draft write.
type DraftSavedMsg struct {
	Err error
}
