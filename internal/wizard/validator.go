package wizard

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Validator evaluates step gates. It is pure: no I/O and no mutation.
type Validator struct {
	def   *Definition
	exprs map[string]*vm.Program
}

// NewValidator compiles the expression rules of def.
func NewValidator(def *Definition) (*Validator, error) {
	v := &Validator{def: def, exprs: make(map[string]*vm.Program)}
	for i, s := range def.Steps {
		for _, r := range s.Gate {
			if r.Kind != RuleExpr {
				continue
			}
			if _, ok := v.exprs[r.Expr]; ok {
				continue
			}
			program, err := compileExpr(r.Expr, expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			v.exprs[r.Expr] = program
		}
	}
	return v, nil
}

// compileExpr compiles expression against an open field environment.
func compileExpr(expression string, extra ...expr.Option) (*vm.Program, error) {
	options := []expr.Option{
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
	}
	options = append(options, extra...)
	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return program, nil
}

// CanAdvance reports whether step from's gate passes for f.
// Steps outside 1..StepCount never pass.
func (v *Validator) CanAdvance(from int, f Fields) bool {
	if from < 1 || from > len(v.def.Steps) {
		return false
	}
	return len(v.Failures(from, f)) == 0
}

// Failures returns a hint for every failing rule of step from's gate.
func (v *Validator) Failures(from int, f Fields) []string {
	if from < 1 || from > len(v.def.Steps) {
		return nil
	}
	var hints []string
	var env map[string]any
	for _, r := range v.def.Steps[from-1].Gate {
		if r.Kind == RuleExpr && env == nil {
			env = f.Env()
		}
		if !v.check(r, f, env) {
			hints = append(hints, hintFor(r))
		}
	}
	return hints
}

// CanFinalize reports whether every gate 1..last passes.
func (v *Validator) CanFinalize(f Fields) bool {
	return len(v.FinalizeFailures(f)) == 0
}

// FinalizeFailures returns the hints of every failing gate rule, in step order.
func (v *Validator) FinalizeFailures(f Fields) []string {
	var hints []string
	for step := 1; step <= len(v.def.Steps); step++ {
		hints = append(hints, v.Failures(step, f)...)
	}
	return hints
}

func (v *Validator) check(r Rule, f Fields, env map[string]any) bool {
	if r.Kind == RuleExpr {
		program, ok := v.exprs[r.Expr]
		if !ok {
			return false
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return false
		}
		passed, _ := out.(bool)
		return passed
	}

	val, ok := f[r.Field]
	if !ok {
		return false
	}
	switch r.Kind {
	case RuleRequired:
		return !val.Empty()
	case RuleMinLength:
		return val.TextLength() >= r.Min
	case RuleMinSelected:
		if val.Kind == KindRecords {
			return len(val.Records) >= r.Min
		}
		return len(val.Set) >= r.Min
	case RuleRecordsComplete:
		if len(val.Records) < r.Min {
			return false
		}
		spec, _ := v.def.Field(r.Field)
		for _, rec := range val.Records {
			for _, sub := range spec.Subfields {
				if strings.TrimSpace(rec[sub]) == "" {
					return false
				}
			}
		}
		return true
	case RuleUnique:
		seen := make(map[string]bool, len(val.Records))
		for _, rec := range val.Records {
			k := strings.ToLower(strings.TrimSpace(rec[r.Key]))
			if k == "" {
				continue
			}
			if seen[k] {
				return false
			}
			seen[k] = true
		}
		return true
	}
	return false
}

func hintFor(r Rule) string {
	if r.Hint != "" {
		return r.Hint
	}
	switch r.Kind {
	case RuleRequired:
		return fmt.Sprintf("%s is required", r.Field)
	case RuleMinLength:
		return fmt.Sprintf("%s needs at least %d characters", r.Field, r.Min)
	case RuleMinSelected:
		return fmt.Sprintf("select at least %d for %s", r.Min, r.Field)
	case RuleRecordsComplete:
		return fmt.Sprintf("complete every entry of %s", r.Field)
	case RuleUnique:
		return fmt.Sprintf("%s entries must have distinct %s", r.Field, r.Key)
	case RuleExpr:
		return fmt.Sprintf("condition not met: %s", r.Expr)
	}
	return "step is incomplete"
}
