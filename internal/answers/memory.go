package answers

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Load returns a copy of the document at key.
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

// Save stores a copy of doc at key.
func (s *MemoryStore) Save(_ context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append([]byte(nil), doc...)
	return nil
}

// LoadMany returns copies of the documents present for keys.
func (s *MemoryStore) LoadMany(_ context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if doc, ok := s.docs[key]; ok {
			docs[key] = append([]byte(nil), doc...)
		}
	}
	return docs, nil
}

// Remove deletes key.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}
