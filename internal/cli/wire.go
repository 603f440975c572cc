package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers/sqlite"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/auth"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/catalog"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/config"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/finalize"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui"
)

// App holds the services a command needs.
type App struct {
	Config       *config.Config
	Catalog      *catalog.Catalog
	Store        answers.Store
	Orchestrator *completion.Orchestrator
	Credentials  *auth.FileSource
	Logger       *logging.Logger

	closers []func() error
}

// Setup reads configuration from cfgPath (or the default location and
// environment) and builds the App.
func Setup(ctx context.Context, cfgPath, level string) (*App, error) {
	if err := config.Init(cfgPath); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg, level)
}

// Build wires every service from cfg. A non-empty level overrides
// cfg.Logging.Level.
func Build(ctx context.Context, cfg *config.Config, level string) (*App, error) {
	if level != "" {
		if !logging.IsValidLevel(level) {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
		cfg.Logging.Level = level
	}

	dir := cfg.Storage.ResolveDir()
	app := &App{
		Config:      cfg,
		Credentials: auth.NewFileSource(config.ConfigDir()),
		Logger:      logging.NopLogger(),
	}

	if cfg.Logging.Enabled {
		logger, err := logging.NewLogger(dir, cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		app.Logger = logger
		app.closers = append(app.closers, logger.Close)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Catalog = cat

	store, closeStore, err := openStore(ctx, cfg.Storage.Backend, dir)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	client := finalize.NewClient(cfg.API.CompleteURL(),
		finalize.WithTimeout(cfg.API.Timeout()),
		finalize.WithLogger(app.Logger),
	)
	creds := auth.NewChain(auth.EnvSource{}, app.Credentials)

	opts := []completion.Option{completion.WithLogger(app.Logger)}
	if cfg.Finalize.ProcessLock {
		opts = append(opts, completion.WithProcessLock(filepath.Join(dir, "locks")))
	}
	app.Orchestrator = completion.New(store, client, creds, opts...)

	app.Logger.Debug("app ready", "backend", cfg.Storage.Backend, "dir", dir, "subtasks", len(cat.Keys()))
	return app, nil
}

// openStore returns the configured answers store and its close function,
// if it has one.
func openStore(ctx context.Context, backend, dir string) (answers.Store, func() error, error) {
	switch backend {
	case "", "file":
		return answers.NewFileStore(filepath.Join(dir, "answers")), nil, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, filepath.Join(dir, sqlite.FileName))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open answers database: %w", err)
		}
		return s, s.Close, nil
	case "memory":
		return answers.NewMemoryStore(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func runTUI(app *App, openKey string) error {
	return tui.Run(tui.Options{
		Deps: tui.Deps{
			Catalog:      app.Catalog,
			Store:        app.Store,
			Orchestrator: app.Orchestrator,
			Logger:       app.Logger,
		},
		OpenKey: openKey,
	})
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
