package hnsw

import (
	"context"
	"fmt"
	"time"
)

// Insert implements insert (Algorithm 1, spec.md §4.D).
//
// Like the teacher's insertNode (internal/index/hnsw/insert.go), this is
// the Engine's largest single method: layer routing, connect, and
// degree-bounded pruning are all steps of one algorithm, not separable
// operations. Unlike the teacher, every step that touches the graph is a
// Graph Store call — there is no in-memory node slice to walk.
func (e *Engine) Insert(ctx context.Context, vector []float32, meta []byte) (id uint32, err error) {
	if e.metrics != nil {
		start := time.Now()
		defer func() {
			e.metrics.InsertLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				e.metrics.InsertErrors.Inc()
			} else {
				e.metrics.Inserts.Inc()
			}
		}()
	}

	if len(vector) != e.config.Dimension {
		return 0, fmt.Errorf("%w: vector has dimension %d, index has %d", ErrDimensionMismatch, len(vector), e.config.Dimension)
	}

	// Step 1: snapshot entry point and layer count before any write.
	epID, hasEP, err := e.store.GetEntryPoint(ctx)
	if err != nil {
		return 0, err
	}
	numLayers, err := e.store.NumLayers(ctx)
	if err != nil {
		return 0, err
	}
	L := int(numLayers) - 1

	// Step 2: draw the target layer.
	l := e.selectLayer()

	// Step 3: append the point.
	id, err = e.store.NewPoint(ctx, vector)
	if err != nil {
		return 0, err
	}
	if meta != nil {
		if err := e.store.SetMetadata(ctx, id, meta); err != nil {
			return 0, err
		}
	}

	// Step 4: first point in an empty index.
	if !hasEP {
		for layer := 0; layer <= l; layer++ {
			if err := e.store.PromoteToNewLayer(ctx, id); err != nil {
				return 0, err
			}
		}
		if err := e.store.SetEntryPoint(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}

	// Step 5: route from L down to l+1 with ef=1.
	currentEP := epID
	for layer := L; layer > l; layer-- {
		candidates, err := e.searchLayer(ctx, vector, []uint32{currentEP}, 1, layer)
		if err != nil {
			return 0, err
		}
		if len(candidates) > 0 {
			currentEP = candidates[0].ID
		}
	}

	// Step 6: insert-and-link from min(L, l) down to 0.
	ep := []uint32{currentEP}
	top := L
	if l < top {
		top = l
	}
	for lc := top; lc >= 0; lc-- {
		w, err := e.searchLayer(ctx, vector, ep, e.config.EfConstruction, lc)
		if err != nil {
			return 0, err
		}
		ep = candidateIDs(w)

		chosen := selectNeighbors(w, e.config.MMax(lc), true)
		chosenIDs := candidateIDs(chosen)

		currentAdjacency, err := e.store.GetNeighborsMany(ctx, lc, chosenIDs)
		if err != nil {
			return 0, err
		}

		newAdjacency := make(map[uint32]float32, len(chosen))
		updatedChosen := make(map[uint32]map[uint32]float32, len(chosen))
		for _, c := range chosen {
			newAdjacency[c.ID] = c.Distance

			adj := currentAdjacency[c.ID]
			merged := make(map[uint32]float32, len(adj)+1)
			for nid, d := range adj {
				merged[nid] = d
			}
			merged[id] = c.Distance
			updatedChosen[c.ID] = merged
		}

		// Prune overflow: any chosen neighbour whose degree now exceeds
		// MMax(lc) gets its adjacency recomputed from scratch.
		mMax := e.config.MMax(lc)
		for nid, adj := range updatedChosen {
			if len(adj) <= mMax {
				continue
			}
			candidatesFromAdj := make([]*Candidate, 0, len(adj))
			for nbrID, d := range adj {
				candidatesFromAdj = append(candidatesFromAdj, &Candidate{ID: nbrID, Distance: d})
			}
			pruned := selectNeighbors(candidatesFromAdj, mMax, true)
			prunedMap := make(map[uint32]float32, len(pruned))
			for _, c := range pruned {
				prunedMap[c.ID] = c.Distance
			}
			updatedChosen[nid] = prunedMap
		}

		if err := e.store.UpsertNeighbors(ctx, lc, id, newAdjacency); err != nil {
			return 0, err
		}
		if err := e.store.UpsertNeighborsMany(ctx, lc, updatedChosen); err != nil {
			return 0, err
		}
	}

	// Step 7: grow the graph if this point reaches a new top layer.
	if l+1 > int(numLayers) {
		for layer := int(numLayers); layer <= l; layer++ {
			if err := e.store.PromoteToNewLayer(ctx, id); err != nil {
				return 0, err
			}
		}
		if err := e.store.SetEntryPoint(ctx, id); err != nil {
			return 0, err
		}
	}

	return id, nil
}

func candidateIDs(candidates []*Candidate) []uint32 {
	ids := make([]uint32, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}
