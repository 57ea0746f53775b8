// Package rerank reorders fused candidates by pairwise relevance grades
// from a scoring model. Scoring is best effort: if any pair fails, the
// fused order is kept as-is.
package rerank

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askdex/askdex/internal/domain/search/candidate"
	"github.com/askdex/askdex/internal/logger"
)

// Service reranks candidate lists with a pairwise relevance scorer.
type Service struct {
	scorer      Scorer
	passages    PassageReader
	concurrency int
}

// New creates a rerank service. Concurrency bounds parallel scorer calls.
func New(scorer Scorer, passages PassageReader, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{scorer: scorer, passages: passages, concurrency: concurrency}
}

// Rerank returns the candidates reordered by descending relevance grade,
// ties keeping the fused order. The second return reports whether
// reranking actually happened; on any scorer failure the input order is
// returned unchanged.
func (s *Service) Rerank(ctx context.Context, query string, cands []candidate.Fused) ([]candidate.Fused, bool) {
	if len(cands) < 2 {
		return cands, len(cands) > 0
	}

	ids := make([]string, len(cands))
	for i := range cands {
		ids[i] = cands[i].ID()
	}
	texts := make(map[string]string, len(ids))
	for _, p := range s.passages.GetMulti(ids) {
		texts[p.ID()] = p.Text()
	}

	grades := make([]float64, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range cands {
		i := i
		g.Go(func() error {
			grade, err := s.scorer.Score(gctx, query, texts[cands[i].ID()])
			if err != nil {
				return err
			}
			grades[i] = grade
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Warn("rerank failed, keeping fused order", zap.Error(err))
		return cands, false
	}

	out := make([]candidate.Fused, len(cands))
	copy(out, cands)
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return grades[order[a]] > grades[order[b]]
	})
	for i, idx := range order {
		out[i] = cands[idx]
	}
	return out, true
}
