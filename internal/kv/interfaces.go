// Package kv defines the primitive, untrusted key-value backend
// interface the core depends on (spec.md §6) and the two concrete
// implementations exercising it: memkv (in-memory reference, used by
// tests and to simulate backend size limits) and pgkv (Postgres-backed,
// via jackc/pgx/v5).
//
// Backend is deliberately narrow: get/get_many/set/set_many on opaque
// string keys and byte-slice values, with no size guarantees. Everything
// above it — namespacing, batching policy, adaptive splitting — lives in
// internal/store, which depends only on this interface.
package kv

import "context"

// Backend is the core's sole dependency on the outside world. An
// implementation has no size guarantees: it may reject a get_many/set_many
// call whose combined payload is too large by returning a *BackendError
// with Kind == SizeLimitExceeded. It is free to offer no more than
// single-key atomicity.
type Backend interface {
	// Get returns the value for k, or (nil, nil) if the key is absent.
	Get(ctx context.Context, k string) ([]byte, error)

	// GetMany returns one entry per input key, in the same order. An
	// absent key's slot is nil, never an error on its own.
	GetMany(ctx context.Context, ks []string) ([][]byte, error)

	// Set writes a single key unconditionally.
	Set(ctx context.Context, k string, v []byte) error

	// SetMany writes every pair unconditionally. Implementations may
	// reject oversize batches with a SizeLimitExceeded BackendError;
	// they must not partially apply a rejected batch.
	SetMany(ctx context.Context, kvs []KeyValue) error
}

// KeyValue is one pair in a SetMany batch.
type KeyValue struct {
	Key   string
	Value []byte
}
