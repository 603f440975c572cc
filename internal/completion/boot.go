package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

// Boot builds a controller from local state: migrate the legacy key, load
// the snapshot, load the draft, resume. Reads are fail-open, so a broken or
// outdated document only means the user starts over.
func Boot(ctx context.Context, store answers.Store, schema *wizard.Schema, log *logging.Logger) (*wizard.Controller, error) {
	def := schema.Def
	log = log.WithSubtask(def.Key)

	if def.LegacyKey != "" {
		result, err := answers.Migrate(ctx, store, def.LegacyKey, def.StorageKey, log)
		if err != nil {
			log.Warn("legacy migration failed", "error", err)
		} else if result == answers.MigrationMoved {
			log.Info("migrated legacy answers", "from", def.LegacyKey, "to", def.StorageKey)
		}
	}

	ctrl := wizard.NewController(schema)
	snap := loadSnapshot(ctx, store, def, log)

	var draft *wizard.Draft
	if snap == nil {
		draft = loadDraft(ctx, store, def, log)
	}

	if err := ctrl.Resume(snap, draft); err != nil {
		return nil, fmt.Errorf("failed to resume %s: %w", def.Key, err)
	}
	log.Debug("booted", "phase", ctrl.Phase().String(), "step", ctrl.Step())
	return ctrl, nil
}

func loadSnapshot(ctx context.Context, store answers.Store, def *wizard.Definition, log *logging.Logger) *wizard.Snapshot {
	data, ok := answers.Lookup(ctx, store, def.StorageKey, log)
	if !ok {
		return nil
	}
	snap, err := wizard.DecodeSnapshot(def, data)
	if err != nil {
		log.Warn("ignoring stored snapshot", "key", def.StorageKey, "error", err)
		return nil
	}
	return snap
}

func loadDraft(ctx context.Context, store answers.Store, def *wizard.Definition, log *logging.Logger) *wizard.Draft {
	key := def.ResolvedDraftKey()
	data, ok := answers.Lookup(ctx, store, key, log)
	if !ok {
		return nil
	}
	draft, err := wizard.DecodeDraft(def, data)
	if err != nil {
		log.Warn("ignoring stored draft", "key", key, "error", err)
		return nil
	}
	return draft
}

// SaveDraft stores the current answers and step under the draft key. It is
// refused once the controller is locked.
func SaveDraft(ctx context.Context, store answers.Store, ctrl *wizard.Controller, now time.Time) error {
	switch ctrl.Phase() {
	case wizard.PhaseLoading:
		return wizard.ErrNotLoaded
	case wizard.PhaseReviewing:
		return wizard.ErrLocked
	}
	def := ctrl.Definition()
	data, err := wizard.EncodeDraft(ctrl.BuildDraft(now))
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := store.Save(ctx, def.ResolvedDraftKey(), data); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}
