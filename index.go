package kvhnsw

import (
	"context"

	"github.com/xDarkicex/kvhnsw/internal/hnsw"
	"github.com/xDarkicex/kvhnsw/internal/store"
)

// Index is a single contract id's HNSW graph, bound to its own namespace
// within the DB's shared backend. Grounded in the teacher's
// libravdb.Collection (libravdb/collection.go), minus the filter DSL and
// quantization options that collection exposed and this specification
// drops (spec.md Non-goals).
type Index struct {
	contractID string
	engine     *hnsw.Engine
	adapter    *store.Adapter
}

// Insert implements Index.insert(vector, metadata) -> id (spec.md §6).
func (idx *Index) Insert(ctx context.Context, vector []float32, metadata []byte) (uint32, error) {
	return idx.engine.Insert(ctx, vector, metadata)
}

// KNNSearch implements Index.knn_search(query, k) -> results (spec.md §6).
func (idx *Index) KNNSearch(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	hits, err := idx.engine.KNNSearch(ctx, query, k)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		results[i] = SearchResult{ID: h.ID, Distance: h.Distance, Metadata: h.Metadata}
	}
	return results, nil
}

// Get implements Index.get(id) -> (vector, metadata) (spec.md §6).
func (idx *Index) Get(ctx context.Context, id uint32) ([]float32, []byte, error) {
	return idx.engine.GetVector(ctx, id)
}

// Stats implements Index.stats() (spec.md §6), with the backend split
// count and circuit breaker state SPEC_FULL.md adds on top.
func (idx *Index) Stats(ctx context.Context) (Stats, error) {
	engineStats, err := idx.engine.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		NumPoints:     engineStats.NumPoints,
		NumLayers:     engineStats.NumLayers,
		Config:        engineStats.Config,
		BackendSplits: idx.adapter.Splits(),
	}
	if b := idx.adapter.Breaker(); b != nil {
		stats.CircuitState = b.State().String()
	}
	return stats, nil
}

// ContractID returns the contract id this Index is namespaced to.
func (idx *Index) ContractID() string { return idx.contractID }
