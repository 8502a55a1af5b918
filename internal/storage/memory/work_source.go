package memory

import (
	"context"
	"sort"
	"sync"

	"token-ingest/internal/storage"
)

// WorkSource is an in-memory implementation of storage.WorkSource.
type WorkSource struct {
	mu    sync.RWMutex
	items []storage.WorkItem
}

// NewWorkSource creates a work source holding items.
func NewWorkSource(items ...storage.WorkItem) *WorkSource {
	return &WorkSource{items: items}
}

// Compile-time interface check.
var _ storage.WorkSource = (*WorkSource)(nil)

// Add appends items.
func (s *WorkSource) Add(items ...storage.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Remove drops every item of kind with key.
func (s *WorkSource) Remove(kind, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.Kind != kind || it.Key != key {
			kept = append(kept, it)
		}
	}
	s.items = kept
}

// Pending returns up to limit items of kind ordered by key. limit <= 0
// returns all of them.
func (s *WorkSource) Pending(_ context.Context, kind string, limit int) ([]storage.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.WorkItem
	for _, it := range s.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
