package answers

import (
	"context"
	"fmt"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
)

// MigrationResult describes what Migrate did.
type MigrationResult int

const (
	// MigrationNothing means neither key held a document.
	MigrationNothing MigrationResult = iota
	// MigrationSkipped means the new key already held a document.
	MigrationSkipped
	// MigrationMoved means the legacy document was copied to the new key.
	MigrationMoved
)

func (r MigrationResult) String() string {
	switch r {
	case MigrationSkipped:
		return "skipped"
	case MigrationMoved:
		return "moved"
	default:
		return "nothing"
	}
}

// Migrate moves the document at oldKey to newKey once. A document already at
// newKey is authoritative and the legacy key is left alone. The copy is
// written before the legacy key is removed, so a failure in between leaves
// both keys populated and the next run skips.
func Migrate(ctx context.Context, s Store, oldKey, newKey string, log *logging.Logger) (MigrationResult, error) {
	if oldKey == "" || oldKey == newKey {
		return MigrationNothing, nil
	}

	if _, ok := Lookup(ctx, s, newKey, log); ok {
		return MigrationSkipped, nil
	}

	doc, ok := Lookup(ctx, s, oldKey, log)
	if !ok {
		return MigrationNothing, nil
	}

	if err := s.Save(ctx, newKey, doc); err != nil {
		return MigrationNothing, fmt.Errorf("failed to migrate %s to %s: %w", oldKey, newKey, err)
	}
	if err := s.Remove(ctx, oldKey); err != nil {
		log.Warn("legacy key not removed after migration", "old_key", oldKey, "error", err)
	}

	log.Info("migrated legacy answers", "old_key", oldKey, "new_key", newKey)
	return MigrationMoved, nil
}
