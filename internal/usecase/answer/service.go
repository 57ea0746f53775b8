// Package answer assembles a grounded, citation-validated answer from
// permission-filtered candidates.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	domans "github.com/askdex/askdex/internal/domain/answer"
	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/candidate"
)

const notFoundText = "The knowledge base does not contain an answer to this question."

// Service synthesizes answers over retrieved context.
type Service struct {
	gen          Generator
	passages     PassageReader
	tokenBudget  int
	stalenessAge time.Duration
	minRelevance float64
	now          func() time.Time
}

// New creates an answer assembly service.
func New(gen Generator, passages PassageReader, tokenBudget int, stalenessAge time.Duration, minRelevance float64) *Service {
	if tokenBudget <= 0 {
		tokenBudget = 3000
	}
	return &Service{
		gen:          gen,
		passages:     passages,
		tokenBudget:  tokenBudget,
		stalenessAge: stalenessAge,
		minRelevance: minRelevance,
		now:          time.Now,
	}
}

// Compose generates an answer for the query over the given candidates.
// Candidates below the relevance floor, an empty candidate list, or a
// model reply without a single valid citation all produce the explicit
// not-found answer. A generation error is returned to the caller, which
// degrades to results without an answer.
func (s *Service) Compose(ctx context.Context, query string, cands []candidate.Fused) (domans.Answer, error) {
	if !s.hasRelevantEvidence(cands) {
		return domans.NotFound(notFoundText), nil
	}

	ids := make([]string, len(cands))
	for i := range cands {
		ids[i] = cands[i].ID()
	}
	window := buildContext(s.passages.GetMulti(ids), s.tokenBudget)
	if len(window) == 0 {
		return domans.NotFound(notFoundText), nil
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(query, window))
	if err != nil {
		return domans.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	if strings.Contains(raw, notFoundSentinel) {
		return domans.NotFound(notFoundText), nil
	}

	contextIDs := make(map[string]bool, len(window))
	for _, p := range window {
		contextIDs[p.ID()] = true
	}
	text, citations := sanitizeCitations(raw, contextIDs)
	if len(citations) == 0 {
		// Uncited claims are not trusted.
		return domans.NotFound(notFoundText), nil
	}

	return domans.New(text, citations, s.staleness(citations, window)), nil
}

// hasRelevantEvidence reports whether any candidate clears the relevance
// floor.
func (s *Service) hasRelevantEvidence(cands []candidate.Fused) bool {
	for i := range cands {
		if cands[i].Score() >= s.minRelevance {
			return true
		}
	}
	return false
}

// staleness warns when even the freshest cited passage is older than the
// configured age.
func (s *Service) staleness(citations []string, window []passage.Passage) []domans.Warning {
	if s.stalenessAge <= 0 {
		return nil
	}

	cited := make(map[string]bool, len(citations))
	for _, id := range citations {
		cited[id] = true
	}

	var freshest time.Time
	for _, p := range window {
		if cited[p.ID()] && p.ModifiedAt().After(freshest) {
			freshest = p.ModifiedAt()
		}
	}
	if freshest.IsZero() || s.now().Sub(freshest) <= s.stalenessAge {
		return nil
	}

	return []domans.Warning{{
		Code: domans.StaleEvidence,
		Message: fmt.Sprintf("cited evidence was last modified %s",
			freshest.Format("2006-01-02")),
	}}
}
