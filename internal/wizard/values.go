package wizard

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// Record is one entry of a repeated group, keyed by sub-field name.
type Record map[string]string

// Value holds one field's answer. Which members are meaningful depends on Kind.
type Value struct {
	Kind     FieldKind
	Text     string   // text, enum
	Set      []string // set, kept sorted
	Scale    int
	ScaleSet bool
	Records  []Record
}

// Empty reports whether the value counts as unanswered.
func (v Value) Empty() bool {
	switch v.Kind {
	case KindText, KindEnum:
		return strings.TrimSpace(v.Text) == ""
	case KindSet:
		return len(v.Set) == 0
	case KindScale:
		return !v.ScaleSet
	case KindRecords:
		return len(v.Records) == 0
	}
	return true
}

// TextLength returns the rune count of the trimmed text.
func (v Value) TextLength() int {
	return utf8.RuneCountInString(strings.TrimSpace(v.Text))
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	out := v
	if v.Set != nil {
		out.Set = slices.Clone(v.Set)
	}
	if v.Records != nil {
		out.Records = make([]Record, len(v.Records))
		for i, r := range v.Records {
			out.Records[i] = maps.Clone(r)
		}
	}
	return out
}

// Fields maps field name to value.
type Fields map[string]Value

// DefaultFields returns the blank starting values for def.
func DefaultFields(def *Definition) Fields {
	f := make(Fields)
	for _, spec := range def.AllFields() {
		f[spec.Name] = Value{Kind: spec.Kind}
	}
	return f
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v.Clone()
	}
	return out
}

// Env converts the fields to plain values for expression evaluation and JSON.
// Unset scales become nil.
func (f Fields) Env() map[string]any {
	env := make(map[string]any, len(f))
	for name, v := range f {
		env[name] = v.plain()
	}
	return env
}

func (v Value) plain() any {
	switch v.Kind {
	case KindText, KindEnum:
		return v.Text
	case KindSet:
		if v.Set == nil {
			return []string{}
		}
		return slices.Clone(v.Set)
	case KindScale:
		if !v.ScaleSet {
			return nil
		}
		return v.Scale
	case KindRecords:
		out := make([]any, len(v.Records))
		for i, r := range v.Records {
			m := make(map[string]any, len(r))
			for k, s := range r {
				m[k] = s
			}
			out[i] = m
		}
		return out
	}
	return nil
}

func newRecord(spec FieldSpec) Record {
	r := make(Record, len(spec.Subfields))
	for _, sub := range spec.Subfields {
		r[sub] = ""
	}
	return r
}
