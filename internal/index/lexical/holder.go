package lexical

import (
	"sync/atomic"

	"github.com/askdex/askdex/internal/domain/search/candidate"
)

// Holder hands out the current index and lets ingestion swap in a
// rebuilt one without blocking searches.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder creates a holder seeded with an empty index.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(Build(nil))
	return h
}

// Swap replaces the served index.
func (h *Holder) Swap(idx *Index) {
	h.current.Store(idx)
}

// Search queries the current index.
func (h *Holder) Search(query string, limit int, tags map[string]string) []candidate.Ranked {
	return h.current.Load().Search(query, limit, tags)
}

// Size reports the current index's document count.
func (h *Holder) Size() int {
	return h.current.Load().Size()
}
