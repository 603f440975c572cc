package answers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
)

func TestMigrate_MovesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := []byte(`{"version":1,"goal":"sleep earlier"}`)
	s.Save(ctx, "old", doc)

	result, err := Migrate(ctx, s, "old", "new", logging.NopLogger())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if result != MigrationMoved {
		t.Errorf("result = %v, want moved", result)
	}

	got, err := s.Load(ctx, "new")
	if err != nil {
		t.Fatalf("new key not written: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("new key = %s, want identical %s", got, doc)
	}
	if _, err := s.Load(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("legacy key should be removed, got err %v", err)
	}

	// Second run is a no-op.
	result, err = Migrate(ctx, s, "old", "new", logging.NopLogger())
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if result != MigrationSkipped {
		t.Errorf("second result = %v, want skipped", result)
	}
	got, _ = s.Load(ctx, "new")
	if !bytes.Equal(got, doc) {
		t.Errorf("second run changed document: %s", got)
	}
}

func TestMigrate_NewKeyIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Save(ctx, "old", []byte(`{"from":"old"}`))
	s.Save(ctx, "new", []byte(`{"from":"new"}`))

	result, err := Migrate(ctx, s, "old", "new", logging.NopLogger())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if result != MigrationSkipped {
		t.Errorf("result = %v, want skipped", result)
	}
	got, _ := s.Load(ctx, "new")
	if string(got) != `{"from":"new"}` {
		t.Errorf("new key overwritten: %s", got)
	}
	if _, err := s.Load(ctx, "old"); err != nil {
		t.Errorf("legacy key should be untouched when skipping, got %v", err)
	}
}

func TestMigrate_Nothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tests := []struct {
		name   string
		oldKey string
	}{
		{"no documents", "old"},
		{"no legacy key", ""},
		{"same key", "new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Migrate(ctx, s, tt.oldKey, "new", logging.NopLogger())
			if err != nil {
				t.Fatalf("Migrate() error = %v", err)
			}
			if result != MigrationNothing {
				t.Errorf("result = %v, want nothing", result)
			}
		})
	}
}

// failingSaveStore rejects writes.
type failingSaveStore struct{ *MemoryStore }

func (f failingSaveStore) Save(context.Context, string, []byte) error {
	return errors.New("read-only")
}

func TestMigrate_SaveFailureKeepsLegacy(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	mem.Save(ctx, "old", []byte(`{}`))

	_, err := Migrate(ctx, failingSaveStore{mem}, "old", "new", logging.NopLogger())
	if err == nil {
		t.Fatal("expected error when new key cannot be written")
	}
	if _, err := mem.Load(ctx, "old"); err != nil {
		t.Errorf("legacy key must survive a failed migration, got %v", err)
	}
}

func TestMigrate_MalformedLegacyIgnored(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Save(ctx, "old", []byte(`not json`))

	result, err := Migrate(ctx, s, "old", "new", logging.NopLogger())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if result != MigrationNothing {
		t.Errorf("result = %v, want nothing", result)
	}
}
