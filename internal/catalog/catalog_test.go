package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("embedded catalog is invalid: %v", err)
	}

	want := []string{"if_then_plans", "core_values", "trigger_map"}
	got := c.Keys()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	s, err := c.Get("if_then_plans")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.Def.LegacyKey == "" {
		t.Error("if_then_plans should carry a legacy key")
	}
	if s.Def.StepCount() != 3 {
		t.Errorf("StepCount() = %d, want 3", s.Def.StepCount())
	}
}

func TestGet_Unknown(t *testing.T) {
	c, _ := Default()
	if _, err := c.Get("nope"); !errors.Is(err, ErrUnknownSubtask) {
		t.Errorf("Get() error = %v, want ErrUnknownSubtask", err)
	}
}

func TestDefault_ProjectionsEvaluate(t *testing.T) {
	c, _ := Default()
	s, _ := c.Get("if_then_plans")

	ctrl := wizard.NewController(s)
	if err := ctrl.Resume(nil, nil); err != nil {
		t.Fatal(err)
	}
	ctrl.SetText("goal", "  stay off their profile  ")
	for i := 0; i < 3; i++ {
		idx, _ := ctrl.AddRecord("plans")
		ctrl.SetRecord("plans", idx, "if", string(rune('a'+i)))
		ctrl.SetRecord("plans", idx, "then", "walk")
	}
	ctrl.SetScale("confidence", 6)
	ctrl.Choose("reminder", "evening")

	if !ctrl.CanFinalize() {
		t.Fatalf("expected finalizable, hints: %v", ctrl.FinalizeHints())
	}
	p := ctrl.Payload()
	if p["planCount"] != 3 || p["goalLength"] != 22 || p["reminder"] != "evening" {
		t.Errorf("Payload() = %v", p)
	}
	if _, leaked := p["goal"]; leaked {
		t.Error("payload must not carry free text")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	os.WriteFile(path, []byte(`
subtasks:
  - key: one
    title: One
    version: 1
    storage_key: "k:one"
    steps:
      - title: Only
        fields:
          - name: note
            kind: text
`), 0644)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Keys(); len(got) != 1 || got[0] != "one" {
		t.Errorf("Keys() = %v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "subtasks: []", "no subtasks"},
		{"bad yaml", "subtasks: [", "failed to parse catalog"},
		{"reserved field", `
subtasks:
  - key: a
    version: 1
    storage_key: k
    steps:
      - title: s
        fields: [{name: savedAt, kind: text}]`, "reserved"},
		{"duplicate key", `
subtasks:
  - {key: a, version: 1, storage_key: k1, steps: [{title: s, fields: [{name: x, kind: text}]}]}
  - {key: a, version: 1, storage_key: k2, steps: [{title: s, fields: [{name: x, kind: text}]}]}`, "duplicate subtask key"},
		{"shared storage key", `
subtasks:
  - {key: a, version: 1, storage_key: k1, steps: [{title: s, fields: [{name: x, kind: text}]}]}
  - {key: b, version: 1, storage_key: k2, legacy_key: k1, steps: [{title: s, fields: [{name: x, kind: text}]}]}`, `storage key "k1"`},
		{"bad expression", `
subtasks:
  - key: a
    version: 1
    storage_key: k
    steps:
      - title: s
        fields: [{name: x, kind: text}]
        gate: [{rule: expr, expr: "len(x"}]`, "compile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			os.WriteFile(path, []byte(tt.yaml), 0644)

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
