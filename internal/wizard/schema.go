package wizard

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Schema is a checked, compiled Definition ready to drive controllers.
type Schema struct {
	Def       *Definition
	Validator *Validator

	summary map[string]*vm.Program
	payload map[string]*vm.Program
}

// Compile checks def and compiles its gate, summary and payload expressions.
func Compile(def *Definition) (*Schema, error) {
	if err := def.Check(); err != nil {
		return nil, err
	}
	validator, err := NewValidator(def)
	if err != nil {
		return nil, fmt.Errorf("definition %q: %w", def.Key, err)
	}
	summary, err := compileProjection(def.Summary)
	if err != nil {
		return nil, fmt.Errorf("definition %q summary: %w", def.Key, err)
	}
	payload, err := compileProjection(def.Payload)
	if err != nil {
		return nil, fmt.Errorf("definition %q payload: %w", def.Key, err)
	}
	return &Schema{Def: def, Validator: validator, summary: summary, payload: payload}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// embedded definitions known to be valid.
func MustCompile(def *Definition) *Schema {
	s, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return s
}

func compileProjection(exprs map[string]string) (map[string]*vm.Program, error) {
	out := make(map[string]*vm.Program, len(exprs))
	for _, name := range sortedKeys(exprs) {
		program, err := compileExpr(exprs[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = program
	}
	return out, nil
}

// Summary computes the derived fields stored with a snapshot for redisplay.
// Entries whose expression fails to evaluate are omitted.
func (s *Schema) Summary(f Fields) map[string]any {
	return runProjection(s.summary, f.Env())
}

// Payload returns the metadata-safe projection sent to the completion
// service. Without configured expressions it reports counts and lengths
// rather than free text.
func (s *Schema) Payload(f Fields) map[string]any {
	if len(s.payload) > 0 {
		return runProjection(s.payload, f.Env())
	}

	out := map[string]any{"steps": len(s.Def.Steps)}
	for _, spec := range s.Def.AllFields() {
		v := f[spec.Name]
		switch spec.Kind {
		case KindText:
			out[spec.Name+"Length"] = v.TextLength()
			out[spec.Name+"Filled"] = !v.Empty()
		case KindSet:
			out[spec.Name+"Count"] = len(v.Set)
		case KindEnum:
			out[spec.Name] = v.Text
		case KindScale:
			if v.ScaleSet {
				out[spec.Name] = v.Scale
			}
		case KindRecords:
			out[spec.Name+"Count"] = len(v.Records)
		}
	}
	return out
}

func runProjection(programs map[string]*vm.Program, env map[string]any) map[string]any {
	out := make(map[string]any, len(programs))
	for name, program := range programs {
		value, err := expr.Run(program, env)
		if err != nil {
			continue
		}
		out[name] = value
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
