// Package candidate defines the per-source and fused ranking values that
// flow between the ranking sources, rank fusion, and the permission filter.
package candidate

// Source identifies the ranking source that produced a candidate.
type Source string

// Ranking source constants.
const (
	Lexical  Source = "lexical"
	Semantic Source = "semantic"
)

// Ranked is a single hit from one ranking source. The score is only
// comparable within its source; cross-source ordering goes through fusion.
type Ranked struct {
	id     string
	score  float64
	rank   int
	source Source
}

// NewRanked creates a source-relative candidate. rank is zero-based.
func NewRanked(id string, score float64, rank int, source Source) Ranked {
	return Ranked{id: id, score: score, rank: rank, source: source}
}

// ID returns the passage identifier.
func (r *Ranked) ID() string { return r.id }

// Score returns the source-relative score.
func (r *Ranked) Score() float64 { return r.score }

// Rank returns the zero-based position within the source list.
func (r *Ranked) Rank() int { return r.rank }

// Source returns the producing ranking source.
func (r *Ranked) Source() Source { return r.source }

// Fused is a passage with its reciprocal-rank-fusion score.
type Fused struct {
	id       string
	score    float64
	bestRank int
	sources  []Source
}

// NewFused creates a fused candidate. bestRank is the smallest zero-based
// rank the passage held in any contributing source.
func NewFused(id string, score float64, bestRank int, sources []Source) Fused {
	return Fused{id: id, score: score, bestRank: bestRank, sources: sources}
}

// ID returns the passage identifier.
func (f *Fused) ID() string { return f.id }

// Score returns the fused RRF score.
func (f *Fused) Score() float64 { return f.score }

// BestRank returns the smallest rank across contributing sources.
func (f *Fused) BestRank() int { return f.bestRank }

// Sources returns the sources that contributed to the fused score.
func (f *Fused) Sources() []Source { return f.sources }
