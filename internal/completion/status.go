package completion

import (
	"context"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/answers"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

// Status summarizes local progress on one subtask.
type Status int

const (
	StatusNew Status = iota
	StatusDraft
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusDone:
		return "done"
	}
	return "new"
}

// Statuses reports the status of each schema, keyed by definition key. It
// only reads: a legacy document counts as done without being migrated.
func Statuses(ctx context.Context, store answers.Store, schemas []*wizard.Schema, log *logging.Logger) map[string]Status {
	var keys []string
	for _, s := range schemas {
		keys = append(keys, s.Def.StorageKey, s.Def.ResolvedDraftKey())
		if s.Def.LegacyKey != "" {
			keys = append(keys, s.Def.LegacyKey)
		}
	}
	docs := answers.LookupMany(ctx, store, keys, log)

	out := make(map[string]Status, len(schemas))
	for _, s := range schemas {
		def := s.Def
		status := StatusNew
		switch {
		case decodes(def, docs[def.StorageKey], wizard.DecodeSnapshot):
			status = StatusDone
		case def.LegacyKey != "" && decodes(def, docs[def.LegacyKey], wizard.DecodeSnapshot):
			status = StatusDone
		case decodes(def, docs[def.ResolvedDraftKey()], wizard.DecodeDraft):
			status = StatusDraft
		}
		out[def.Key] = status
	}
	return out
}

func decodes[T any](def *wizard.Definition, data []byte, decode func(*wizard.Definition, []byte) (T, error)) bool {
	if data == nil {
		return false
	}
	_, err := decode(def, data)
	return err == nil
}
