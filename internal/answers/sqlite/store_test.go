package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", FileName)
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, answers.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}

	if err := s.Save(ctx, "k", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, "k", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	got, err := s.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("Load() = %s, want last write", got)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Errorf("Remove() of absent key error = %v", err)
	}
	if _, err := s.Load(ctx, "k"); !errors.Is(err, answers.ErrNotFound) {
		t.Errorf("Load() after Remove error = %v", err)
	}
}

func TestStore_LoadMany(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	s.Save(ctx, "a", []byte(`1`))
	s.Save(ctx, "c", []byte(`3`))

	docs, err := s.LoadMany(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("LoadMany() error = %v", err)
	}
	if len(docs) != 2 || string(docs["a"]) != "1" || string(docs["c"]) != "3" {
		t.Errorf("LoadMany() = %v", docs)
	}

	empty, err := s.LoadMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("LoadMany(nil) = %v, %v", empty, err)
	}
}

func TestStore_ReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)
	s.Save(ctx, "k", []byte(`"kept"`))
	s.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx, "k")
	if err != nil || string(got) != `"kept"` {
		t.Errorf("Load() after reopen = %s, %v", got, err)
	}

	var count int
	reopened.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+migrationTable).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 recorded migration, got %d", count)
	}
}

func TestStore_WorksWithMigrate(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	s.Save(ctx, "legacy", []byte(`{"version":1}`))

	result, err := answers.Migrate(ctx, s, "legacy", "current", logging.NopLogger())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if result != answers.MigrationMoved {
		t.Errorf("result = %v, want moved", result)
	}
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"up and down", "-- +migrate Up\nCREATE x;\n-- +migrate Down\nDROP x;", "\nCREATE x;\n"},
		{"up only", "-- +migrate Up\nCREATE x;", "\nCREATE x;"},
		{"no markers", "CREATE x;", "CREATE x;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractUpMigration(tt.content); got != tt.want {
				t.Errorf("extractUpMigration() = %q, want %q", got, tt.want)
			}
		})
	}
}
