// Package permission filters ranked passages down to what the querying
// identity is allowed to read, caching decisions with a TTL and failing
// closed when the authorization service cannot answer.
package permission

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/logger"
	"github.com/askdex/askdex/internal/metrics"
)

// Service filters passage IDs by per-identity access decisions.
type Service struct {
	checker Checker
	cache   *Cache
	pool    *ants.Pool
}

// New creates a permission filter. Cache TTL zero disables caching,
// concurrency bounds the number of in-flight live authorization lookups.
func New(checker Checker, cacheTTL time.Duration, concurrency int) (*Service, error) {
	if concurrency <= 0 {
		concurrency = 8
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}
	return &Service{
		checker: checker,
		cache:   NewCache(cacheTTL),
		pool:    pool,
	}, nil
}

// Filter returns the subset of ids that identity may read, preserving
// the input order. Lookup failures count as denials.
func (s *Service) Filter(ctx context.Context, identity domain.Identity, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)
	verdicts := make([]bool, len(ids))
	missed := make([]int, 0, len(ids))

	for i, id := range ids {
		allowed, ok := s.cache.Get(identity.String(), id)
		if ok {
			metrics.PermissionCacheTotal.WithLabelValues("hit").Inc()
			verdicts[i] = allowed
			continue
		}
		metrics.PermissionCacheTotal.WithLabelValues("miss").Inc()
		missed = append(missed, i)
	}

	if len(missed) > 0 {
		var wg sync.WaitGroup
		for _, i := range missed {
			i := i
			wg.Add(1)
			if err := s.pool.Submit(func() {
				defer wg.Done()
				verdicts[i] = s.lookup(ctx, log, identity, ids[i])
			}); err != nil {
				// Pool rejected the task: deny rather than guess.
				wg.Done()
				log.Warn("permission lookup not scheduled", zap.Error(err))
			}
		}
		wg.Wait()
	}

	allowed := make([]string, 0, len(ids))
	for i, id := range ids {
		if verdicts[i] {
			allowed = append(allowed, id)
		} else {
			metrics.PermissionDeniedTotal.Inc()
		}
	}
	return allowed
}

// lookup performs a live authorization check and caches definitive
// answers. Errors are treated as denials and never cached.
func (s *Service) lookup(ctx context.Context, log *zap.Logger, identity domain.Identity, id string) bool {
	allowed, err := s.checker.CanAccess(ctx, identity, id)
	if err != nil {
		log.Warn("authorization check failed, denying passage",
			zap.String("passage_id", id),
			zap.Error(err),
		)
		return false
	}
	s.cache.Put(identity.String(), id, allowed)
	return allowed
}

// Invalidate drops all cached decisions for the identity.
func (s *Service) Invalidate(identity domain.Identity) int {
	return s.cache.Invalidate(identity.String())
}

// Close releases the lookup worker pool.
func (s *Service) Close() {
	s.pool.Release()
}
