package ingest

import (
	"context"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/index/lexical"
	"github.com/askdex/askdex/internal/repository/semantic"
)

// PassageStore is the authoritative in-memory passage corpus.
type PassageStore interface {
	Upsert(items []passage.Passage) []string
	Delete(ids []string) []string
	GetMulti(ids []string) []passage.Passage
	All() []passage.Passage
}

// Embedder vectorizes passage text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// SemanticWriter maintains the remote vector index.
type SemanticWriter interface {
	Upsert(ctx context.Context, items []semantic.Vectorized) error
	Delete(ctx context.Context, ids []string) error
}

// IndexSwapper swaps the served lexical index after a rebuild.
type IndexSwapper interface {
	Swap(idx *lexical.Index)
}
