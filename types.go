package kvhnsw

import "github.com/xDarkicex/kvhnsw/internal/hnsw"

// SearchResult is one hit of Index.KNNSearch, as named in spec.md §6:
// Index.knn_search(query, k) -> [{id, distance, metadata}].
type SearchResult struct {
	ID       uint32
	Distance float32
	Metadata []byte
}

// Stats backs Index.Stats() (spec.md §6). BackendSplits and
// CircuitState are additive fields SPEC_FULL.md's "supplemented
// features" section adds on top of the three spec.md names
// ({num_points, num_layers, config}); their meaning does not change.
type Stats struct {
	NumPoints uint32
	NumLayers uint32
	Config    Config

	// BackendSplits is the number of times this index's KV Adapter has
	// bisected an oversize batch since the Index was opened.
	BackendSplits int64
	// CircuitState reports the backend circuit breaker's current state:
	// "CLOSED", "OPEN", or "HALF_OPEN".
	CircuitState string
}

// Config is the public HNSW configuration, re-exported so callers never
// need to import internal/hnsw.
type Config = hnsw.Config

// DefaultConfig returns the spec's stated defaults for every field
// except Dimension.
func DefaultConfig(dimension int) *Config {
	return hnsw.DefaultConfig(dimension)
}
