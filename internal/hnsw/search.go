package hnsw

import (
	"context"
	"sort"
)

// searchLayer is search_layer (Algorithm 2 of the HNSW paper, spec.md
// §4.D): greedy best-first search within a single layer, starting from
// entryPoints and returning up to ef candidates ordered closest-first.
//
// Every neighbour fetch and every distance computation is a KV read; the
// teacher's in-memory equivalent (internal/index/hnsw/search.go) walks
// node.Links directly, since its whole graph already lives in memory.
func (e *Engine) searchLayer(ctx context.Context, q []float32, entryPoints []uint32, ef, layer int) ([]*Candidate, error) {
	if len(entryPoints) == 0 {
		return nil, nil
	}

	visited := make(map[uint32]bool, ef*4)
	candidates := newCandidateHeap(ascendingByDistance)
	results := newCandidateHeap(descendingByDistance)

	entryVectors, err := e.store.GetPoints(ctx, entryPoints)
	if err != nil {
		return nil, err
	}
	for i, id := range entryPoints {
		if visited[id] {
			continue
		}
		visited[id] = true
		d := e.distance(q, entryVectors[i])
		c := &Candidate{ID: id, Distance: d}
		candidates.push(c)
		results.push(c)
	}
	for results.Len() > ef {
		results.pop()
	}

	for candidates.Len() > 0 {
		current := candidates.pop()
		furthest := results.top()
		if furthest != nil && current.Distance > furthest.Distance {
			break
		}

		neighbors, err := e.store.GetNeighbors(ctx, layer, current.ID)
		if err != nil {
			return nil, err
		}

		unvisited := make([]uint32, 0, len(neighbors))
		for neighborID := range neighbors {
			if !visited[neighborID] {
				unvisited = append(unvisited, neighborID)
				visited[neighborID] = true
			}
		}
		if len(unvisited) == 0 {
			continue
		}

		vectors, err := e.store.GetPoints(ctx, unvisited)
		if err != nil {
			return nil, err
		}

		for i, neighborID := range unvisited {
			d := e.distance(q, vectors[i])
			furthest := results.top()
			if furthest == nil || results.Len() < ef || d < furthest.Distance {
				c := &Candidate{ID: neighborID, Distance: d}
				candidates.push(c)
				results.push(c)
				if results.Len() > ef {
					results.pop()
				}
			}
		}
	}

	out := make([]*Candidate, 0, results.Len())
	for results.Len() > 0 {
		out = append(out, results.pop())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}
