// Package kvhnsw implements a KV-backed HNSW vector index: a
// multi-tenant semantic memory store where the Hierarchical Navigable
// Small World graph (points, per-layer adjacency, entry point) is
// persisted entirely through an untrusted key-value backend rather than
// held in process memory.
//
// A DB binds one kv.Backend to any number of contract ids, each opening
// its own Index via OpenIndex. An Index exposes Insert, KNNSearch, Get,
// and Stats; everything else — namespacing, batch splitting, the HNSW
// algorithm itself — is an implementation detail under internal/.
package kvhnsw
