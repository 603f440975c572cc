package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrVersionMismatch means a stored document was written for another
	// definition version. Callers treat it as absent.
	ErrVersionMismatch = errors.New("document version mismatch")

	// ErrMalformed means a stored document could not be decoded.
	ErrMalformed = errors.New("malformed document")
)

// Snapshot is the immutable record of a finalized instance.
type Snapshot struct {
	Version int
	SavedAt time.Time
	Summary map[string]any
	Fields  Fields
}

// Draft is an explicitly saved, unfinalized set of answers.
type Draft struct {
	Version int
	SavedAt time.Time
	Step    int
	Fields  Fields
}

const (
	attrVersion = "version"
	attrSavedAt = "savedAt"
	attrSummary = "summary"
	attrStep    = "step"
)

// EncodeSnapshot renders s as a flat JSON object. Equal snapshots encode to
// identical bytes.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	doc := s.Fields.Env()
	doc[attrVersion] = s.Version
	doc[attrSavedAt] = s.SavedAt.UTC().Format(time.RFC3339Nano)
	summary := s.Summary
	if summary == nil {
		summary = map[string]any{}
	}
	doc[attrSummary] = summary
	return json.Marshal(doc)
}

// DecodeSnapshot parses a stored snapshot for def.
func DecodeSnapshot(def *Definition, data []byte) (*Snapshot, error) {
	raw, version, savedAt, err := decodeEnvelope(def, data)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(def, raw)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Version: version, SavedAt: savedAt, Fields: fields, Summary: map[string]any{}}
	if s, ok := raw[attrSummary]; ok && string(s) != "null" {
		if err := json.Unmarshal(s, &snap.Summary); err != nil {
			return nil, fmt.Errorf("%w: summary: %v", ErrMalformed, err)
		}
	}
	return snap, nil
}

// EncodeDraft renders d as a flat JSON object carrying its step.
func EncodeDraft(d Draft) ([]byte, error) {
	doc := d.Fields.Env()
	doc[attrVersion] = d.Version
	doc[attrSavedAt] = d.SavedAt.UTC().Format(time.RFC3339Nano)
	doc[attrStep] = d.Step
	return json.Marshal(doc)
}

// DecodeDraft parses a stored draft for def.
func DecodeDraft(def *Definition, data []byte) (*Draft, error) {
	raw, version, savedAt, err := decodeEnvelope(def, data)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(def, raw)
	if err != nil {
		return nil, err
	}

	step := 1
	if s, ok := raw[attrStep]; ok {
		if err := json.Unmarshal(s, &step); err != nil {
			return nil, fmt.Errorf("%w: step: %v", ErrMalformed, err)
		}
	}
	step = max(1, min(step, def.StepCount()))
	return &Draft{Version: version, SavedAt: savedAt, Step: step, Fields: fields}, nil
}

func decodeEnvelope(def *Definition, data []byte) (map[string]json.RawMessage, int, time.Time, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, 0, time.Time{}, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	var version int
	if v, ok := raw[attrVersion]; !ok || json.Unmarshal(v, &version) != nil {
		return nil, 0, time.Time{}, fmt.Errorf("%w: missing version", ErrMalformed)
	}
	if version != def.Version {
		return nil, 0, time.Time{}, fmt.Errorf("%w: stored %d, current %d", ErrVersionMismatch, version, def.Version)
	}

	var savedAt time.Time
	if v, ok := raw[attrSavedAt]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, 0, time.Time{}, fmt.Errorf("%w: savedAt: %v", ErrMalformed, err)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, 0, time.Time{}, fmt.Errorf("%w: savedAt: %v", ErrMalformed, err)
		}
		savedAt = t
	}
	return raw, version, savedAt, nil
}

func decodeFields(def *Definition, raw map[string]json.RawMessage) (Fields, error) {
	fields := DefaultFields(def)
	for _, spec := range def.AllFields() {
		data, ok := raw[spec.Name]
		if !ok || string(data) == "null" {
			continue
		}
		v, err := decodeValue(spec, data)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrMalformed, spec.Name, err)
		}
		fields[spec.Name] = v
	}
	return fields, nil
}

func decodeValue(spec FieldSpec, data json.RawMessage) (Value, error) {
	v := Value{Kind: spec.Kind}
	switch spec.Kind {
	case KindText:
		if err := json.Unmarshal(data, &v.Text); err != nil {
			return v, err
		}
	case KindEnum:
		if err := json.Unmarshal(data, &v.Text); err != nil {
			return v, err
		}
		// Options removed from the definition cannot be edited away, so they are dropped.
		if !slices.Contains(spec.Options, v.Text) {
			v.Text = ""
		}
	case KindSet:
		var stored []string
		if err := json.Unmarshal(data, &stored); err != nil {
			return v, err
		}
		for _, opt := range stored {
			if slices.Contains(spec.Options, opt) {
				v.Set = append(v.Set, opt)
			}
		}
		slices.Sort(v.Set)
		v.Set = slices.Compact(v.Set)
	case KindScale:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return v, err
		}
		if n >= spec.Min && n <= spec.Max {
			v.Scale = n
			v.ScaleSet = true
		}
	case KindRecords:
		var records []map[string]string
		if err := json.Unmarshal(data, &records); err != nil {
			return v, err
		}
		for _, r := range records {
			rec := newRecord(spec)
			for _, sub := range spec.Subfields {
				rec[sub] = r[sub]
			}
			v.Records = append(v.Records, rec)
		}
	}
	return v, nil
}
