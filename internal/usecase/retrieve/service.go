// Package retrieve orchestrates the retrieval pipeline: source fan-out,
// rank fusion, permission filtering, optional reranking, and answer
// assembly, with graceful degradation when a stage fails.
package retrieve

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askdex/askdex/internal/domain"
	domans "github.com/askdex/askdex/internal/domain/answer"
	"github.com/askdex/askdex/internal/domain/search/candidate"
	"github.com/askdex/askdex/internal/domain/search/mode"
	"github.com/askdex/askdex/internal/domain/search/request"
	"github.com/askdex/askdex/internal/domain/search/result"
	"github.com/askdex/askdex/internal/logger"
	"github.com/askdex/askdex/internal/metrics"
)

// Degradation reasons reported on partial responses.
const (
	DegradedSourceFailed     = "source_failed"
	DegradedDeadline         = "deadline"
	DegradedGenerationFailed = "generation_failed"
)

// Response is the outcome of one retrieval request. Method is the
// search mode that actually produced the results, which differs from
// the requested mode when a hybrid source failed.
type Response struct {
	Results  []result.Result
	Answer   *domans.Answer
	State    State
	Method   mode.Mode
	Degraded []string
}

// Service runs the retrieval pipeline.
type Service struct {
	lexical       LexicalSearcher
	semantic      SemanticSearcher
	embed         Embedder
	perms         PermissionFilter
	reranker      Reranker
	answerer      Answerer
	passages      PassageReader
	rrfK          int
	sourceTimeout time.Duration
}

// New creates the retrieval orchestrator. Reranker and answerer are
// optional stages and may be nil.
func New(
	lexical LexicalSearcher,
	semantic SemanticSearcher,
	embed Embedder,
	perms PermissionFilter,
	reranker Reranker,
	answerer Answerer,
	passages PassageReader,
	rrfK int,
	sourceTimeout time.Duration,
) *Service {
	if rrfK <= 0 {
		rrfK = 60
	}
	if sourceTimeout <= 0 {
		sourceTimeout = 5 * time.Second
	}
	return &Service{
		lexical:       lexical,
		semantic:      semantic,
		embed:         embed,
		perms:         perms,
		reranker:      reranker,
		answerer:      answerer,
		passages:      passages,
		rrfK:          rrfK,
		sourceTimeout: sourceTimeout,
	}
}

type sourceOutcome struct {
	items []candidate.Ranked
	err   error
}

// Search runs the full pipeline for a validated request.
func (s *Service) Search(ctx context.Context, req *request.Request) (*Response, error) {
	log := logger.FromContext(ctx)
	state := StateReceived
	var degraded []string

	wantLexical := req.Mode() == mode.Hybrid || req.Mode() == mode.Lexical
	wantSemantic := req.Mode() == mode.Hybrid || req.Mode() == mode.Semantic

	var lexOut, semOut sourceOutcome
	done := make(chan struct{}, 2)
	pending := 0

	if wantLexical {
		pending++
		go func() {
			defer func() { done <- struct{}{} }()
			lexOut = s.searchLexical(ctx, req)
		}()
	}
	if wantSemantic {
		pending++
		go func() {
			defer func() { done <- struct{}{} }()
			semOut = s.searchSemantic(ctx, req)
		}()
	}
	for i := 0; i < pending; i++ {
		<-done
	}
	state.advance(StateFannedOut)

	lists := make([]rankedList, 0, 2)
	failures := 0
	if wantLexical {
		if lexOut.err != nil {
			failures++
			log.Warn("lexical search failed", zap.Error(lexOut.err))
		} else {
			lists = append(lists, rankedList{weight: req.LexicalWeight(), items: lexOut.items})
		}
	}
	if wantSemantic {
		if semOut.err != nil {
			failures++
			log.Warn("semantic search failed", zap.Error(semOut.err))
		} else {
			lists = append(lists, rankedList{weight: req.SemanticWeight(), items: semOut.items})
		}
	}

	if failures == pending {
		state.advance(StateFailed)
		return nil, fmt.Errorf("%w: all retrieval sources failed", domain.ErrRetrievalUnavailable)
	}
	if failures > 0 {
		degraded = append(degraded, DegradedSourceFailed)
		metrics.DegradedResponsesTotal.WithLabelValues(DegradedSourceFailed).Inc()
	}

	method := mode.Hybrid
	switch {
	case wantLexical && lexOut.err == nil && (!wantSemantic || semOut.err != nil):
		method = mode.Lexical
	case wantSemantic && semOut.err == nil && (!wantLexical || lexOut.err != nil):
		method = mode.Semantic
	}

	fused := fuseRRF(s.rrfK, lists...)
	metrics.FusedCandidates.Observe(float64(len(fused)))
	state.advance(StateFused)

	filtered := s.filter(ctx, req.Identity(), fused)
	state.advance(StateFiltered)

	if req.Rerank() && s.reranker != nil && len(filtered) > 1 {
		reordered, ok := s.reranker.Rerank(ctx, req.Query(), filtered)
		if ok {
			filtered = reordered
			state.advance(StateReranked)
		}
	}

	if len(filtered) > req.TopK() {
		filtered = filtered[:req.TopK()]
	}

	var ans *domans.Answer
	if req.IncludeAnswer() && s.answerer != nil {
		ans = s.compose(ctx, req.Query(), filtered, &degraded, log)
		if ans != nil {
			state.advance(StateAssembled)
		}
	}

	resp := &Response{
		Results:  s.buildResults(filtered),
		Answer:   ans,
		Method:   method,
		Degraded: degraded,
	}
	state.advance(StateReturned)
	resp.State = state
	return resp, nil
}

// searchLexical queries the in-memory index under the source timeout.
func (s *Service) searchLexical(ctx context.Context, req *request.Request) sourceOutcome {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		metrics.SourceSearchDuration.WithLabelValues("lexical", "error").Observe(time.Since(start).Seconds())
		return sourceOutcome{err: err}
	}
	items := s.lexical.Search(req.Query(), req.CandidateK(), req.Filters())
	metrics.SourceSearchDuration.WithLabelValues("lexical", "ok").Observe(time.Since(start).Seconds())
	return sourceOutcome{items: items}
}

// searchSemantic embeds the query and runs KNN under the source timeout.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) sourceOutcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		metrics.SourceSearchDuration.WithLabelValues("semantic", "error").Observe(time.Since(start).Seconds())
		return sourceOutcome{err: fmt.Errorf("embed query: %w", err)}
	}

	items, err := s.semantic.Search(ctx, emb.Embedding, req.CandidateK(), req.Filters())
	if err != nil {
		metrics.SourceSearchDuration.WithLabelValues("semantic", "error").Observe(time.Since(start).Seconds())
		return sourceOutcome{err: err}
	}
	metrics.SourceSearchDuration.WithLabelValues("semantic", "ok").Observe(time.Since(start).Seconds())
	return sourceOutcome{items: items}
}

// filter applies the permission filter over the full fused list,
// preserving fused order.
func (s *Service) filter(ctx context.Context, identity domain.Identity, fused []candidate.Fused) []candidate.Fused {
	ids := make([]string, len(fused))
	byID := make(map[string]candidate.Fused, len(fused))
	for i := range fused {
		ids[i] = fused[i].ID()
		byID[fused[i].ID()] = fused[i]
	}

	allowed := s.perms.Filter(ctx, identity, ids)
	out := make([]candidate.Fused, 0, len(allowed))
	for _, id := range allowed {
		out = append(out, byID[id])
	}
	return out
}

// compose runs answer assembly, degrading to results-only when the
// deadline is already spent or generation fails.
func (s *Service) compose(
	ctx context.Context, query string, cands []candidate.Fused,
	degraded *[]string, log *zap.Logger,
) *domans.Answer {
	if err := ctx.Err(); err != nil {
		*degraded = append(*degraded, DegradedDeadline)
		metrics.DegradedResponsesTotal.WithLabelValues(DegradedDeadline).Inc()
		return nil
	}

	ans, err := s.answerer.Compose(ctx, query, cands)
	if err != nil {
		reason := DegradedGenerationFailed
		if ctx.Err() != nil {
			reason = DegradedDeadline
		}
		log.Warn("answer assembly failed", zap.String("reason", reason), zap.Error(err))
		*degraded = append(*degraded, reason)
		metrics.DegradedResponsesTotal.WithLabelValues(reason).Inc()
		return nil
	}
	return &ans
}

// buildResults resolves final candidates to response entries. Passages
// deleted mid-flight are skipped.
func (s *Service) buildResults(cands []candidate.Fused) []result.Result {
	ids := make([]string, len(cands))
	byID := make(map[string]candidate.Fused, len(cands))
	for i := range cands {
		ids[i] = cands[i].ID()
		byID[cands[i].ID()] = cands[i]
	}

	passages := s.passages.GetMulti(ids)
	results := make([]result.Result, 0, len(passages))
	for _, p := range passages {
		c := byID[p.ID()]
		results = append(results, result.New(p, c.Score(), c.Sources()))
	}
	return results
}
