package tui

import (
	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/catalog"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
)

// Deps are the services the TUI drives.
type Deps struct {
	Catalog      *catalog.Catalog
	Store        answers.Store
	Orchestrator *completion.Orchestrator
	Logger       *logging.Logger
}

// Options configures TUI startup behavior.
type Options struct {
	Deps

	// OpenKey opens this subtask directly instead of the home list.
	OpenKey string
}
