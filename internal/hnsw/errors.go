package hnsw

import "errors"

// Sentinel errors for the Engine's own failure modes (spec.md §7). Errors
// originating lower in the stack (NotFound from graphstore, DecodeError
// from codec, BackendError from kv) propagate unwrapped or wrapped with
// %w, never translated into these.
var (
	// ErrDimensionMismatch is returned when an inserted or queried
	// vector's length disagrees with the index's configured dimension.
	ErrDimensionMismatch = errors.New("hnsw: vector dimension mismatch")

	// ErrInvalidConfig is returned by open_index (or any per-call
	// validation) when a Config value is out of range, e.g.
	// ef_search < k.
	ErrInvalidConfig = errors.New("hnsw: invalid config")

	// ErrConcurrentWrite is reserved for a backend that can detect the
	// unexpected counter values a racing promote_to_new_layer would
	// produce (spec.md §7, §9 Open Question 2). Nothing in this
	// implementation raises it today; it exists so a stricter
	// compare-and-swap-capable GraphStore has somewhere to report into.
	ErrConcurrentWrite = errors.New("hnsw: concurrent write detected")
)
