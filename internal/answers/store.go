// Package answers persists wizard documents on the local device.
//
// Documents are opaque JSON bytes addressed by string keys. The store does no
// validation of its own; callers check the schema version before trusting a
// document. Reads go through Lookup, which treats unreadable or malformed
// documents as absent so a corrupt file never blocks the user.
package answers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
)

// ErrNotFound is returned by Store.Load when no document exists for a key.
var ErrNotFound = errors.New("document not found")

// Store is a key/value document store.
type Store interface {
	// Load returns the document stored at key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the document stored at key.
	Save(ctx context.Context, key string, doc []byte) error
	// LoadMany returns the documents found for keys. Absent keys are omitted.
	// On error the map may still hold the keys that were read; a nil map
	// means nothing from the batch can be trusted.
	LoadMany(ctx context.Context, keys []string) (map[string][]byte, error)
	// Remove deletes the document at key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Lookup reads key and reports whether a usable document was found.
// Read errors and documents that are not valid JSON count as not found.
func Lookup(ctx context.Context, s Store, key string, log *logging.Logger) ([]byte, bool) {
	doc, err := s.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn("answer store read failed, starting fresh", "key", key, "error", err)
		}
		return nil, false
	}
	if !json.Valid(doc) {
		log.Warn("answer store document is malformed, starting fresh", "key", key)
		return nil, false
	}
	return doc, true
}

// LookupMany is the batch form of Lookup. Failures are per key: a document
// that cannot be read only drops that key. When the backend fails the whole
// batch, each key is retried through Lookup.
func LookupMany(ctx context.Context, s Store, keys []string, log *logging.Logger) map[string][]byte {
	docs, err := s.LoadMany(ctx, keys)
	if err != nil {
		log.Warn("answer store batch read failed", "keys", keys, "error", err)
	}
	if docs == nil {
		docs = make(map[string][]byte, len(keys))
		for _, key := range keys {
			if doc, ok := Lookup(ctx, s, key, log); ok {
				docs[key] = doc
			}
		}
		return docs
	}
	for key, doc := range docs {
		if !json.Valid(doc) {
			log.Warn("answer store document is malformed", "key", key)
			delete(docs, key)
		}
	}
	return docs
}

// MarkDirty records at as the family's dirty marker. Last write wins.
func MarkDirty(ctx context.Context, s Store, key string, at time.Time) error {
	doc, err := json.Marshal(at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to marshal dirty marker: %w", err)
	}
	if err := s.Save(ctx, key, doc); err != nil {
		return fmt.Errorf("failed to write dirty marker: %w", err)
	}
	return nil
}

// DirtySince returns the time stored in the dirty marker at key.
func DirtySince(ctx context.Context, s Store, key string) (time.Time, bool) {
	doc, err := s.Load(ctx, key)
	if err != nil {
		return time.Time{}, false
	}
	var raw string
	if err := json.Unmarshal(doc, &raw); err != nil {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
