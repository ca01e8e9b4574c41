package hnsw

import (
	"sort"
)

// selectNeighbors is select_neighbors, the "simple" heuristic of
// Algorithm 4 (spec.md §4.D, §9 Open Question 1) — deliberately the
// literal reference behaviour, not the teacher's diversity-aware
// NeighborSelector.SelectNeighborsOptimized
// (internal/index/hnsw/neighbors.go in the teacher), which compares a
// candidate against every already-selected neighbour rather than only
// the current worst of the accepted set. The spec documents this as an
// open ambiguity and asks that the literal, simpler behaviour be kept.
//
// Consumed in ascending-distance order, a candidate is accepted while
// the accepted set is below mMax; once full, every remaining candidate
// (which, by construction, is no closer than anything already accepted)
// is pushed to a discarded reservoir. If keepPruned is true and the
// accepted set is still short of mMax, it is topped up from discarded;
// since a candidate is only discarded once the accepted set is full, the
// set is short only when fewer than mMax candidates were offered, and the
// reservoir is then empty, so the top-up adds nothing.
func selectNeighbors(candidates []*Candidate, mMax int, keepPruned bool) []*Candidate {
	sorted := make([]*Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	results := make([]*Candidate, 0, mMax)
	discarded := make([]*Candidate, 0, len(sorted))

	for _, c := range sorted {
		if len(results) < mMax {
			results = append(results, c)
		} else {
			discarded = append(discarded, c)
		}
	}

	if keepPruned {
		for len(results) < mMax && len(discarded) > 0 {
			results = append(results, discarded[0])
			discarded = discarded[1:]
		}
	}

	return results
}
