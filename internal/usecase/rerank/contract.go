package rerank

import (
	"context"

	"github.com/askdex/askdex/internal/domain/passage"
)

// Scorer grades a (query, passage) pair with a relevance score in [0,1].
type Scorer interface {
	Score(ctx context.Context, query, passageText string) (float64, error)
}

// PassageReader loads passage bodies for scoring.
type PassageReader interface {
	GetMulti(ids []string) []passage.Passage
}
