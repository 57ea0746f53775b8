// Package passages holds the engine's in-memory read model of the corpus.
// The ingestion collaborator owns the content; the engine only reads
// passages by identifier.
package passages

import (
	"sort"
	"sync"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/domain/passage"
)

// Store is a concurrent in-memory passage registry.
type Store struct {
	mu       sync.RWMutex
	passages map[string]passage.Passage
}

// New creates an empty store.
func New() *Store {
	return &Store{passages: make(map[string]passage.Passage)}
}

// Upsert inserts or replaces passages by identifier. It returns the
// identifiers whose content actually changed; re-upserting identical
// content is a no-op for those entries.
func (s *Store) Upsert(items []passage.Passage) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := make([]string, 0, len(items))
	for _, p := range items {
		prev, ok := s.passages[p.ID()]
		if ok && prev.Text() == p.Text() && prev.ModifiedAt().Equal(p.ModifiedAt()) {
			continue
		}
		s.passages[p.ID()] = p
		changed = append(changed, p.ID())
	}
	return changed
}

// Delete removes passages by identifier. Missing identifiers are ignored.
// It returns the identifiers that were actually present.
func (s *Store) Delete(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.passages[id]; ok {
			delete(s.passages, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Get returns a passage by identifier.
func (s *Store) Get(id string) (passage.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.passages[id]
	if !ok {
		return passage.Passage{}, domain.ErrPassageNotFound
	}
	return p, nil
}

// GetMulti returns the passages for the given identifiers, skipping any
// that are absent. Input order is preserved.
func (s *Store) GetMulti(ids []string) []passage.Passage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]passage.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.passages[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// All returns every passage ordered by identifier.
func (s *Store) All() []passage.Passage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]passage.Passage, 0, len(s.passages))
	for _, p := range s.passages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of stored passages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages)
}
