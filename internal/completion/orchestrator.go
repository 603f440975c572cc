// Package completion performs the finalize handshake: the remote service
// must acknowledge a completion before anything is written locally, and the
// local snapshot must be written before the wizard locks.
package completion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/auth"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/finalize"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

// Result reports what a Finalize call did.
type Result struct {
	Outcome  finalize.Outcome
	Snapshot *wizard.Snapshot

	// Ignored is set when another finalize was already pending.
	Ignored bool
	// Blocked is set when the gates do not pass; Hints lists why.
	Blocked bool
	Hints   []string

	// Err is a local failure, e.g. the snapshot could not be saved after
	// the server accepted. The controller is left editing.
	Err error
}

// Locked reports whether the controller was locked as a result.
func (r Result) Locked() bool {
	return r.Snapshot != nil
}

// Message returns user-facing copy for the result.
func (r Result) Message() string {
	switch {
	case r.Ignored:
		return "Already saving, please wait."
	case r.Blocked:
		return "Some steps are incomplete. Finish them before completing."
	case r.Err != nil:
		if errors.Is(r.Err, answers.ErrLockHeld) {
			return "This subtask is being completed in another window."
		}
		return fmt.Sprintf("Your answers could not be saved on this device: %v. Try again.", r.Err)
	}

	switch r.Outcome.Kind {
	case finalize.Accepted:
		return "Completion recorded."
	case finalize.AlreadyDone:
		return "This subtask was already recorded. Your answers are saved."
	}
	switch r.Outcome.Reason {
	case finalize.CodeAuthRequired:
		return "Sign in required. Run `phoenix login` and try again."
	case finalize.CodeNetworkError:
		return "Could not reach the server. Check your connection and try again."
	}
	return fmt.Sprintf("The server did not accept the completion (%s). Try again.", r.Outcome.Reason)
}

// Orchestrator finalizes subtasks. At most one finalize per subtask runs at
// a time; different subtasks do not block each other.
type Orchestrator struct {
	store   answers.Store
	client  finalize.Completer
	creds   auth.Source
	logger  *logging.Logger
	lockDir string
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]bool // by storage key
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithProcessLock guards each finalize with a PID lock file under dir so
// two processes cannot finalize the same subtask at once.
func WithProcessLock(dir string) Option {
	return func(o *Orchestrator) { o.lockDir = dir }
}

// WithClock overrides the time source used for savedAt and the dirty marker.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator.
func New(store answers.Store, client finalize.Completer, creds auth.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		client: client,
		creds:  creds,
		now:     time.Now,
		pending: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Pending reports whether a finalize is in flight for the subtask stored
// at storageKey.
func (o *Orchestrator) Pending(storageKey string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending[storageKey]
}

// begin claims storageKey, reporting false if a finalize already holds it.
func (o *Orchestrator) begin(storageKey string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending[storageKey] {
		return false
	}
	o.pending[storageKey] = true
	return true
}

func (o *Orchestrator) end(storageKey string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, storageKey)
}

// Finalize runs the completion handshake for ctrl. It never retries. A
// rejected outcome leaves local state untouched.
func (o *Orchestrator) Finalize(ctx context.Context, ctrl *wizard.Controller) Result {
	def := ctrl.Definition()
	if !o.begin(def.StorageKey) {
		return Result{Ignored: true}
	}
	defer o.end(def.StorageKey)

	log := o.logger.WithSubtask(def.Key)

	switch {
	case ctrl.Phase() == wizard.PhaseLoading:
		return Result{Err: wizard.ErrNotLoaded}
	case ctrl.IsLocked():
		snap, _ := ctrl.Final()
		return Result{Outcome: finalize.Outcome{Kind: finalize.AlreadyDone}, Snapshot: &snap}
	case !ctrl.CanFinalize():
		return Result{Blocked: true, Hints: ctrl.FinalizeHints()}
	}

	if o.lockDir != "" {
		lock := answers.NewFinalizeLock(o.lockDir, def.StorageKey)
		if err := lock.Acquire(); err != nil {
			log.Warn("finalize lock unavailable", "error", err)
			return Result{Err: err}
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warn("failed to release finalize lock", "error", err)
			}
		}()
	}

	creds, err := o.creds.Credentials(ctx)
	if err != nil {
		log.Info("no credentials available", "error", err)
		creds = auth.Credentials{}
	}

	outcome := o.client.Complete(ctx, def.Key, creds.Phone, creds.Token, ctrl.Payload())
	if !outcome.Succeeded() {
		log.Warn("completion rejected", "reason", outcome.Reason)
		return Result{Outcome: outcome}
	}

	// The server has recorded the completion; persist before locking.
	snap := ctrl.BuildSnapshot(o.now())
	data, err := wizard.EncodeSnapshot(snap)
	if err != nil {
		log.Error("failed to encode snapshot", "error", err)
		return Result{Outcome: outcome, Err: fmt.Errorf("failed to encode snapshot: %w", err)}
	}
	if err := o.store.Save(ctx, def.StorageKey, data); err != nil {
		log.Error("failed to save snapshot", "outcome", outcome.String(), "error", err)
		return Result{Outcome: outcome, Err: fmt.Errorf("failed to save snapshot: %w", err)}
	}

	if def.DirtyKey != "" {
		if err := answers.MarkDirty(ctx, o.store, def.DirtyKey, o.now()); err != nil {
			log.Warn("failed to write dirty marker", "key", def.DirtyKey, "error", err)
		}
	}

	if err := ctrl.Lock(snap); err != nil {
		return Result{Outcome: outcome, Err: err}
	}
	log.Info("subtask finalized", "outcome", outcome.String())
	return Result{Outcome: outcome, Snapshot: &snap}
}
