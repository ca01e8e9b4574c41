package kvhnsw

import (
	"errors"

	"github.com/xDarkicex/kvhnsw/internal/codec"
	"github.com/xDarkicex/kvhnsw/internal/graphstore"
	"github.com/xDarkicex/kvhnsw/internal/hnsw"
	"github.com/xDarkicex/kvhnsw/internal/kv"
)

// Sentinel errors mirroring the taxonomy of spec.md §7, following
// libravdb/errors.go's style of exporting one var per error kind rather
// than a single opaque error type. Most of these are aliases onto the
// sentinel already defined at the layer that actually detects the
// condition; they are re-exported here so application code never needs
// to import internal/hnsw or internal/kv directly.
var (
	// ErrDimensionMismatch: insert/query vector length != index dimension.
	ErrDimensionMismatch = hnsw.ErrDimensionMismatch
	// ErrInvalidConfig: a Config value out of range (M, ef_search < k, etc).
	ErrInvalidConfig = hnsw.ErrInvalidConfig
	// ErrConcurrentWrite: reserved for a GraphStore that can detect a
	// racing promote_to_new_layer; unused by the bundled GraphStore.
	ErrConcurrentWrite = hnsw.ErrConcurrentWrite

	// ErrClosed is returned by OpenIndex on a DB after Close. Index
	// handles opened before Close keep working and never return it.
	ErrClosed = errors.New("kvhnsw: use of closed index")
)

// IsNotFound reports whether err is a graphstore.NotFoundError: a read
// of a point or layer node that does not exist.
func IsNotFound(err error) bool {
	var nf *graphstore.NotFoundError
	return errors.As(err, &nf)
}

// IsDecodeError reports whether err is a codec.DecodeError: a stored
// value that failed to decode, i.e. data corruption.
func IsDecodeError(err error) bool {
	var de *codec.DecodeError
	return errors.As(err, &de)
}

// IsBackendTransient reports whether err originates from the backend and
// is not a size-limit error the adapter already recovered from.
func IsBackendTransient(err error) bool {
	var be *kv.BackendError
	return errors.As(err, &be) && be.Kind == kv.Transient
}
