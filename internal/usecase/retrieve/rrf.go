package retrieve

import (
	"sort"

	"github.com/askdex/askdex/internal/domain/search/candidate"
)

// rankedList is one source's contribution to fusion.
type rankedList struct {
	weight float64
	items  []candidate.Ranked
}

// fuseRRF merges ranked lists with weighted reciprocal rank fusion:
// each appearance of an ID at zero-based rank r contributes
// weight/(k+r+1). The result is ordered by descending fused score, ties
// broken by the smaller best rank across sources, then by ID.
func fuseRRF(k int, lists ...rankedList) []candidate.Fused {
	type acc struct {
		score    float64
		bestRank int
		sources  []candidate.Source
	}

	byID := make(map[string]*acc)
	for _, list := range lists {
		if list.weight == 0 {
			continue
		}
		for _, item := range list.items {
			a, ok := byID[item.ID()]
			if !ok {
				a = &acc{bestRank: item.Rank()}
				byID[item.ID()] = a
			}
			a.score += list.weight / float64(k+item.Rank()+1)
			if item.Rank() < a.bestRank {
				a.bestRank = item.Rank()
			}
			a.sources = append(a.sources, item.Source())
		}
	}

	fused := make([]candidate.Fused, 0, len(byID))
	for id, a := range byID {
		fused = append(fused, candidate.NewFused(id, a.score, a.bestRank, a.sources))
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score() != fused[j].Score() {
			return fused[i].Score() > fused[j].Score()
		}
		if fused[i].BestRank() != fused[j].BestRank() {
			return fused[i].BestRank() < fused[j].BestRank()
		}
		return fused[i].ID() < fused[j].ID()
	})
	return fused
}
