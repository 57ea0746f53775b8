// Package request defines the validated, immutable per-request options
// value handed to the retrieval orchestrator. Every option is enumerated
// and defaulted here; nothing is read from ambient state mid-request.
package request

import (
	"fmt"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 100
	// DefaultCandidateK is the per-source candidate depth before fusion.
	DefaultCandidateK = 50
	MaxCandidateK     = 500
)

// Request is a validated search request.
type Request struct {
	query         string
	identity      domain.Identity
	searchMode    mode.Mode
	topK          int
	candidateK    int
	includeAnswer bool
	rerank        bool
	filters       map[string]string
	lexicalWeight float64
	semWeight     float64
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, topK=10, candidateK=50, equal fusion weights.
func New(
	query string,
	identity domain.Identity,
	m mode.Mode,
	topK, candidateK int,
	includeAnswer, rerank bool,
	filters map[string]string,
	lexicalWeight, semanticWeight float64,
) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if identity.IsZero() {
		return Request{}, fmt.Errorf("%w: identity is required", domain.ErrInvalidQuery)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidQuery, m)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if candidateK <= 0 {
		candidateK = DefaultCandidateK
	}
	if candidateK > MaxCandidateK {
		candidateK = MaxCandidateK
	}
	if candidateK < topK {
		candidateK = topK
	}
	if lexicalWeight < 0 || semanticWeight < 0 {
		return Request{}, fmt.Errorf("%w: fusion weights must be non-negative", domain.ErrInvalidQuery)
	}
	if lexicalWeight == 0 && semanticWeight == 0 {
		lexicalWeight, semanticWeight = 1, 1
	}

	return Request{
		query:         query,
		identity:      identity,
		searchMode:    m,
		topK:          topK,
		candidateK:    candidateK,
		includeAnswer: includeAnswer,
		rerank:        rerank,
		filters:       filters,
		lexicalWeight: lexicalWeight,
		semWeight:     semanticWeight,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Identity returns the requesting principal.
func (r *Request) Identity() domain.Identity { return r.identity }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// TopK returns the maximum results to return.
func (r *Request) TopK() int { return r.topK }

// CandidateK returns the per-source candidate depth before fusion.
func (r *Request) CandidateK() int { return r.candidateK }

// IncludeAnswer reports whether a generated answer was requested.
func (r *Request) IncludeAnswer() bool { return r.includeAnswer }

// Rerank reports whether pairwise reranking was requested.
func (r *Request) Rerank() bool { return r.rerank }

// Filters returns the categorical tag filters.
func (r *Request) Filters() map[string]string { return r.filters }

// LexicalWeight returns the fusion weight of the lexical source.
func (r *Request) LexicalWeight() float64 { return r.lexicalWeight }

// SemanticWeight returns the fusion weight of the semantic source.
func (r *Request) SemanticWeight() float64 { return r.semWeight }
