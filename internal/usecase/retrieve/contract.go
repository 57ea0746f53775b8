package retrieve

import (
	"context"

	"github.com/askdex/askdex/internal/domain"
	domans "github.com/askdex/askdex/internal/domain/answer"
	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/candidate"
)

// LexicalSearcher runs keyword search over the in-memory index.
type LexicalSearcher interface {
	Search(query string, limit int, tags map[string]string) []candidate.Ranked
}

// SemanticSearcher runs vector similarity search.
type SemanticSearcher interface {
	Search(ctx context.Context, queryVector []float32, limit int, tags map[string]string) ([]candidate.Ranked, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// PermissionFilter keeps only the passages the identity may read.
type PermissionFilter interface {
	Filter(ctx context.Context, identity domain.Identity, ids []string) []string
}

// Reranker reorders fused candidates; the bool reports whether it ran.
type Reranker interface {
	Rerank(ctx context.Context, query string, cands []candidate.Fused) ([]candidate.Fused, bool)
}

// Answerer synthesizes a grounded answer over the final candidates.
type Answerer interface {
	Compose(ctx context.Context, query string, cands []candidate.Fused) (domans.Answer, error)
}

// PassageReader loads passage bodies for response assembly.
type PassageReader interface {
	GetMulti(ids []string) []passage.Passage
}
