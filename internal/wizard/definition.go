// Package wizard implements the sequential step engine: field values,
// step gates and the controller that moves an instance from editing to
// its read-only review.
package wizard

import (
	"fmt"
	"slices"
	"strings"
)

// FieldKind identifies how a field's value is shaped.
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindSet     FieldKind = "set"
	KindEnum    FieldKind = "enum"
	KindScale   FieldKind = "scale"
	KindRecords FieldKind = "records"
)

// RuleKind identifies a gate rule.
type RuleKind string

const (
	RuleRequired        RuleKind = "required"
	RuleMinLength       RuleKind = "min_length"
	RuleMinSelected     RuleKind = "min_selected"
	RuleRecordsComplete RuleKind = "records_complete"
	RuleUnique          RuleKind = "unique"
	RuleExpr            RuleKind = "expr"
)

// ReservedNames cannot be used as field names because stored documents
// flatten fields next to these attributes.
var ReservedNames = []string{"version", "savedAt", "summary", "step"}

// FieldSpec describes one input.
type FieldSpec struct {
	Name        string    `yaml:"name"`
	Kind        FieldKind `yaml:"kind"`
	Label       string    `yaml:"label"`
	Placeholder string    `yaml:"placeholder,omitempty"`
	Options     []string  `yaml:"options,omitempty"`   // set, enum
	Min         int       `yaml:"min,omitempty"`       // scale
	Max         int       `yaml:"max,omitempty"`       // scale
	Subfields   []string  `yaml:"subfields,omitempty"` // records
}

// Rule is one declarative gate condition.
type Rule struct {
	Kind  RuleKind `yaml:"rule"`
	Field string   `yaml:"field,omitempty"`
	Min   int      `yaml:"min,omitempty"`
	Key   string   `yaml:"key,omitempty"` // unique: record sub-field compared
	Expr  string   `yaml:"expr,omitempty"`
	Hint  string   `yaml:"hint,omitempty"`
}

// Step is one page of the wizard. Gate must pass to leave it forward.
type Step struct {
	Title  string      `yaml:"title"`
	Prompt string      `yaml:"prompt,omitempty"`
	Fields []FieldSpec `yaml:"fields"`
	Gate   []Rule      `yaml:"gate,omitempty"`
}

// Definition is the full configuration of one subtask.
type Definition struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Version     int    `yaml:"version"`

	StorageKey string `yaml:"storage_key"`
	LegacyKey  string `yaml:"legacy_key,omitempty"`
	DraftKey   string `yaml:"draft_key,omitempty"`
	DirtyKey   string `yaml:"dirty_key,omitempty"`

	Steps []Step `yaml:"steps"`

	// Summary and Payload map output names to expressions evaluated over the fields.
	Summary map[string]string `yaml:"summary,omitempty"`
	Payload map[string]string `yaml:"payload,omitempty"`
}

// StepCount returns the number of steps.
func (d *Definition) StepCount() int {
	return len(d.Steps)
}

// Field returns the spec for name.
func (d *Definition) Field(name string) (FieldSpec, bool) {
	for _, s := range d.Steps {
		for _, f := range s.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FieldSpec{}, false
}

// AllFields returns every field spec in step order.
func (d *Definition) AllFields() []FieldSpec {
	var out []FieldSpec
	for _, s := range d.Steps {
		out = append(out, s.Fields...)
	}
	return out
}

// ResolvedDraftKey returns the draft key, deriving one from StorageKey when unset.
func (d *Definition) ResolvedDraftKey() string {
	if d.DraftKey != "" {
		return d.DraftKey
	}
	return d.StorageKey + ":draft"
}

// Check reports structural problems: missing keys, empty steps, reserved or
// duplicate field names, malformed field specs and rules naming unknown fields.
func (d *Definition) Check() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(d.Key) == "" {
		add("key is required")
	}
	if strings.TrimSpace(d.StorageKey) == "" {
		add("storage_key is required")
	}
	if d.Version < 1 {
		add("version must be >= 1")
	}
	if d.LegacyKey != "" && d.LegacyKey == d.StorageKey {
		add("legacy_key must differ from storage_key")
	}
	if d.ResolvedDraftKey() == d.StorageKey {
		add("draft_key must differ from storage_key")
	}
	if len(d.Steps) == 0 {
		add("at least one step is required")
	}

	seen := make(map[string]bool)
	for i, s := range d.Steps {
		for _, f := range s.Fields {
			switch {
			case f.Name == "":
				add("step %d: field name is required", i+1)
				continue
			case isReserved(f.Name):
				add("step %d: field name %q is reserved", i+1, f.Name)
			case seen[f.Name]:
				add("step %d: duplicate field %q", i+1, f.Name)
			}
			seen[f.Name] = true

			switch f.Kind {
			case KindText:
			case KindSet, KindEnum:
				if len(f.Options) == 0 {
					add("field %q: options are required for %s", f.Name, f.Kind)
				}
			case KindScale:
				if f.Max <= f.Min {
					add("field %q: max must be greater than min", f.Name)
				}
			case KindRecords:
				if len(f.Subfields) == 0 {
					add("field %q: subfields are required for records", f.Name)
				}
			default:
				add("field %q: unknown kind %q", f.Name, f.Kind)
			}
		}
	}

	for i, s := range d.Steps {
		for _, r := range s.Gate {
			if r.Kind == RuleExpr {
				if strings.TrimSpace(r.Expr) == "" {
					add("step %d: expr rule needs an expression", i+1)
				}
				continue
			}
			spec, ok := d.Field(r.Field)
			if !ok {
				add("step %d: %s rule names unknown field %q", i+1, r.Kind, r.Field)
				continue
			}
			switch r.Kind {
			case RuleRequired:
			case RuleMinLength:
				if spec.Kind != KindText {
					add("step %d: min_length needs a text field, %q is %s", i+1, r.Field, spec.Kind)
				}
			case RuleMinSelected:
				if spec.Kind != KindSet && spec.Kind != KindRecords {
					add("step %d: min_selected needs a set or records field, %q is %s", i+1, r.Field, spec.Kind)
				}
			case RuleRecordsComplete, RuleUnique:
				if spec.Kind != KindRecords {
					add("step %d: %s needs a records field, %q is %s", i+1, r.Kind, r.Field, spec.Kind)
				}
				if r.Kind == RuleUnique && !slices.Contains(spec.Subfields, r.Key) {
					add("step %d: unique key %q is not a subfield of %q", i+1, r.Key, r.Field)
				}
			default:
				add("step %d: unknown rule %q", i+1, r.Kind)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("definition %q: %s", d.Key, strings.Join(problems, "; "))
	}
	return nil
}

func isReserved(name string) bool {
	return slices.Contains(ReservedNames, name)
}
