// Package lexical implements the in-memory term-frequency index used as the
// keyword ranking source. Scoring is BM25: term-frequency saturation plus
// document-length normalization over an inverted index.
package lexical

import (
	"math"
	"sort"

	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/candidate"
)

// BM25 parameters (standard values from the literature).
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// posting records one passage's occurrence count for a term.
type posting struct {
	doc  int // index into docs
	freq int
}

// Index is an immutable inverted index over a passage corpus.
// Build produces a full replacement; there is no incremental update.
type Index struct {
	docs     []passage.Passage
	postings map[string][]posting
	docLens  []int
	avgLen   float64
}

// Build constructs the index from the full corpus. Passages are sorted by
// identifier so that equal-score results order deterministically.
func Build(passages []passage.Passage) *Index {
	docs := make([]passage.Passage, len(passages))
	copy(docs, passages)
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })

	idx := &Index{
		docs:     docs,
		postings: make(map[string][]posting),
		docLens:  make([]int, len(docs)),
	}

	var totalLen int
	for di := range docs {
		tokens := tokenize(docs[di].Text())
		idx.docLens[di] = len(tokens)
		totalLen += len(tokens)

		freqs := make(map[string]int, len(tokens))
		for _, t := range tokens {
			if _, ok := stopwords[t]; ok {
				continue
			}
			freqs[t]++
		}
		for term, freq := range freqs {
			idx.postings[term] = append(idx.postings[term], posting{doc: di, freq: freq})
		}
	}

	if len(docs) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(docs))
	}

	return idx
}

// Size returns the number of indexed passages.
func (x *Index) Size() int { return len(x.docs) }

// Search returns up to limit candidates in non-increasing BM25 score order.
// Zero-score passages are excluded. An empty or all-stopword query returns
// an empty result, not an error. tags, when non-empty, restricts results to
// passages whose tags match every filter pair.
func (x *Index) Search(query string, limit int, tags map[string]string) []candidate.Ranked {
	terms := queryTerms(query)
	if len(terms) == 0 || len(x.docs) == 0 || limit <= 0 {
		return nil
	}

	scores := make(map[int]float64)
	n := float64(len(x.docs))

	for _, term := range terms {
		plist := x.postings[term]
		if len(plist) == 0 {
			continue
		}

		df := float64(len(plist))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		for _, p := range plist {
			tf := float64(p.freq)
			norm := 1 - bm25B + bm25B*float64(x.docLens[p.doc])/x.avgLen
			scores[p.doc] += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
	}

	type scoredDoc struct {
		doc   int
		score float64
	}
	matched := make([]scoredDoc, 0, len(scores))
	for di, score := range scores {
		if score <= 0 {
			continue
		}
		if len(tags) > 0 && !x.docs[di].MatchesTags(tags) {
			continue
		}
		matched = append(matched, scoredDoc{doc: di, score: score})
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score > matched[j].score
		}
		return x.docs[matched[i].doc].ID() < x.docs[matched[j].doc].ID()
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]candidate.Ranked, len(matched))
	for rank, m := range matched {
		out[rank] = candidate.NewRanked(x.docs[m.doc].ID(), m.score, rank, candidate.Lexical)
	}
	return out
}
