// Package ingest keeps the passage corpus and both ranking indexes in
// step: upserts and deletes land in the store, trigger a lexical rebuild,
// and propagate embeddings to the vector index.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/index/lexical"
	"github.com/askdex/askdex/internal/logger"
	"github.com/askdex/askdex/internal/repository/semantic"
)

// Service applies corpus mutations.
type Service struct {
	store       PassageStore
	embed       Embedder
	vectors     SemanticWriter
	index       IndexSwapper
	concurrency int
}

// New creates an ingest service. Concurrency bounds parallel embedding
// calls during an upsert batch.
func New(store PassageStore, embed Embedder, vectors SemanticWriter, index IndexSwapper, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		store:       store,
		embed:       embed,
		vectors:     vectors,
		index:       index,
		concurrency: concurrency,
	}
}

// Upsert stores the passages and refreshes both indexes. Unchanged
// passages are skipped, so re-sending a batch is cheap. Returns the IDs
// that actually changed.
func (s *Service) Upsert(ctx context.Context, items []passage.Passage) ([]string, error) {
	changed := s.store.Upsert(items)
	if len(changed) == 0 {
		return nil, nil
	}

	s.index.Swap(lexical.Build(s.store.All()))

	if err := s.reembed(ctx, changed); err != nil {
		return changed, err
	}

	logger.FromContext(ctx).Info("passages upserted",
		zap.Int("batch", len(items)),
		zap.Int("changed", len(changed)),
	)
	return changed, nil
}

// Delete removes the passages and their index entries. Unknown IDs are
// ignored. Returns the IDs that were actually removed.
func (s *Service) Delete(ctx context.Context, ids []string) ([]string, error) {
	removed := s.store.Delete(ids)
	if len(removed) == 0 {
		return nil, nil
	}

	s.index.Swap(lexical.Build(s.store.All()))

	if err := s.vectors.Delete(ctx, removed); err != nil {
		return removed, fmt.Errorf("delete vectors: %w", err)
	}

	logger.FromContext(ctx).Info("passages deleted", zap.Int("removed", len(removed)))
	return removed, nil
}

// reembed vectorizes the changed passages and writes them to the vector
// index in one batch.
func (s *Service) reembed(ctx context.Context, ids []string) error {
	passages := s.store.GetMulti(ids)
	vectorized := make([]semantic.Vectorized, len(passages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range passages {
		i := i
		g.Go(func() error {
			emb, err := s.embed.Embed(gctx, passages[i].Text())
			if err != nil {
				return fmt.Errorf("embed passage %s: %w", passages[i].ID(), err)
			}
			vectorized[i] = semantic.Vectorized{
				ID:     passages[i].ID(),
				Vector: emb.Embedding,
				Tags:   passages[i].Tags(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.vectors.Upsert(ctx, vectorized); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}
