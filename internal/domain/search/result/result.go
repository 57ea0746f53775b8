// Package result defines a single entry of a search response.
package result

import (
	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/candidate"
)

// Result is one permission-cleared passage in final response order.
type Result struct {
	id         string
	documentID string
	text       string
	score      float64
	sources    []candidate.Source
}

// New creates a result from a passage and its fused scoring.
func New(p passage.Passage, score float64, sources []candidate.Source) Result {
	return Result{
		id:         p.ID(),
		documentID: p.DocumentID(),
		text:       p.Text(),
		score:      score,
		sources:    sources,
	}
}

// ID returns the passage identifier.
func (r *Result) ID() string { return r.id }

// DocumentID returns the parent document identifier.
func (r *Result) DocumentID() string { return r.documentID }

// Text returns the passage body.
func (r *Result) Text() string { return r.text }

// Score returns the fused relevance score.
func (r *Result) Score() float64 { return r.score }

// Sources returns which retrieval sources surfaced the passage.
func (r *Result) Sources() []candidate.Source { return r.sources }
