package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps documents for the lifetime of the process. There is no
// eviction.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) Put(_ context.Context, doc Document) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	s.docs[doc.Filename] = doc
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, filename string) (Document, bool, error) {
	s.mu.RLock()
	doc, ok := s.docs[filename]
	s.mu.RUnlock()
	return doc, ok, nil
}

func (s *MemoryStore) Close() error { return nil }
