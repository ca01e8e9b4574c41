// Package graphstore implements the Graph Store of spec.md §4.C: typed
// persistence operations over the durable HNSW graph representation
// (points, per-layer adjacency, entry point, layer count, point count,
// per-point metadata). It is pure data access — no HNSW algorithm logic
// lives here, only the translation between graph-shaped calls and the KV
// Adapter's get/get_many/set/set_many.
package graphstore

import (
	"context"
	"strconv"

	"github.com/xDarkicex/kvhnsw/internal/codec"
	"github.com/xDarkicex/kvhnsw/internal/kv"
	"github.com/xDarkicex/kvhnsw/internal/store"
)

// Store is the Graph Store bound to one index's KV namespace.
type Store struct {
	adapter *store.Adapter
}

// New wraps adapter as a Graph Store.
func New(adapter *store.Adapter) *Store {
	return &Store{adapter: adapter}
}

// GetEntryPoint reads "ep". ok is false when the index is empty.
func (s *Store) GetEntryPoint(ctx context.Context) (id uint32, ok bool, err error) {
	v, err := s.adapter.Get(ctx, store.EntryPointKey)
	if err != nil || v == nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(string(v), 10, 32)
	if err != nil {
		return 0, false, err
	}
	return uint32(n), true, nil
}

// SetEntryPoint overwrites "ep".
func (s *Store) SetEntryPoint(ctx context.Context, id uint32) error {
	return s.adapter.Set(ctx, store.EntryPointKey, []byte(strconv.FormatUint(uint64(id), 10)))
}

// NumPoints reads "points", defaulting to 0 when absent.
func (s *Store) NumPoints(ctx context.Context) (uint32, error) {
	v, err := s.adapter.Get(ctx, store.PointsKey)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	n, err := strconv.ParseUint(string(v), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// NumLayers reads "layers", defaulting to 0 when absent.
func (s *Store) NumLayers(ctx context.Context) (uint32, error) {
	v, err := s.adapter.Get(ctx, store.LayersKey)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	n, err := strconv.ParseUint(string(v), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// NewPoint assigns the next id, persists the vector under it, and
// advances "points". Dimension consistency across points is the Engine's
// responsibility (spec.md §4.D); this method writes whatever vector it is
// given.
func (s *Store) NewPoint(ctx context.Context, vector []float32) (uint32, error) {
	id, err := s.NumPoints(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.adapter.Set(ctx, store.PointKey(id), codec.EncodePoint(id, vector)); err != nil {
		return 0, err
	}
	if err := s.adapter.Set(ctx, store.PointsKey, []byte(strconv.FormatUint(uint64(id)+1, 10))); err != nil {
		return 0, err
	}
	return id, nil
}

// GetPoint reads and decodes a single Point's vector.
func (s *Store) GetPoint(ctx context.Context, id uint32) ([]float32, error) {
	v, err := s.adapter.Get(ctx, store.PointKey(id))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &NotFoundError{Kind: "point", ID: id}
	}
	_, vector, err := codec.DecodePoint(v)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// GetPoints is the batched form of GetPoint, preserving input order. It
// fails fast on the first absent id encountered (in input order),
// reporting which.
func (s *Store) GetPoints(ctx context.Context, ids []uint32) ([][]float32, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = store.PointKey(id)
	}
	raws, err := s.adapter.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(ids))
	for i, raw := range raws {
		if raw == nil {
			return nil, &NotFoundError{Kind: "point", ID: ids[i]}
		}
		_, vector, err := codec.DecodePoint(raw)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// GetNeighbors reads and decodes the adjacency of id at layer.
func (s *Store) GetNeighbors(ctx context.Context, layer int, id uint32) (map[uint32]float32, error) {
	v, err := s.adapter.Get(ctx, store.LayerNodeKey(layer, id))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &NotFoundError{Kind: "layer_node", Layer: layer, ID: id}
	}
	_, _, neighbors, err := codec.DecodeLayerNode(v)
	if err != nil {
		return nil, err
	}
	return neighbors, nil
}

// GetNeighborsMany is the batched form of GetNeighbors.
func (s *Store) GetNeighborsMany(ctx context.Context, layer int, ids []uint32) (map[uint32]map[uint32]float32, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = store.LayerNodeKey(layer, id)
	}
	raws, err := s.adapter.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make(map[uint32]map[uint32]float32, len(ids))
	for i, raw := range raws {
		if raw == nil {
			return nil, &NotFoundError{Kind: "layer_node", Layer: layer, ID: ids[i]}
		}
		_, _, neighbors, err := codec.DecodeLayerNode(raw)
		if err != nil {
			return nil, err
		}
		out[ids[i]] = neighbors
	}
	return out, nil
}

// UpsertNeighbors overwrites id's adjacency at layer.
func (s *Store) UpsertNeighbors(ctx context.Context, layer int, id uint32, neighbors map[uint32]float32) error {
	return s.adapter.Set(ctx, store.LayerNodeKey(layer, id), codec.EncodeLayerNode(id, layer, neighbors))
}

// UpsertNeighborsMany is the batched overwrite form of UpsertNeighbors.
func (s *Store) UpsertNeighborsMany(ctx context.Context, layer int, byID map[uint32]map[uint32]float32) error {
	kvs := make([]kv.KeyValue, 0, len(byID))
	for id, neighbors := range byID {
		kvs = append(kvs, kv.KeyValue{
			Key:   store.LayerNodeKey(layer, id),
			Value: codec.EncodeLayerNode(id, layer, neighbors),
		})
	}
	return s.adapter.SetMany(ctx, kvs)
}

// PromoteToNewLayer creates an empty adjacency for id at the current
// NumLayers(), then advances "layers". Per spec.md §4.C this is a
// single-writer operation: it reads then writes "layers" non-atomically,
// and concurrent callers on the same index may corrupt the layer count
// (spec.md §5, §9 Open Question 2). Callers serialize inserts per index.
func (s *Store) PromoteToNewLayer(ctx context.Context, id uint32) error {
	layers, err := s.NumLayers(ctx)
	if err != nil {
		return err
	}
	if err := s.UpsertNeighbors(ctx, int(layers), id, map[uint32]float32{}); err != nil {
		return err
	}
	return s.adapter.Set(ctx, store.LayersKey, []byte(strconv.FormatUint(uint64(layers)+1, 10)))
}

// GetMetadata reads id's opaque metadata blob, nil if never set.
func (s *Store) GetMetadata(ctx context.Context, id uint32) ([]byte, error) {
	return s.adapter.Get(ctx, store.MetadataKey(id))
}

// GetMetadataMany is the batched form of GetMetadata.
func (s *Store) GetMetadataMany(ctx context.Context, ids []uint32) ([][]byte, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = store.MetadataKey(id)
	}
	return s.adapter.GetMany(ctx, keys)
}

// SetMetadata overwrites id's opaque metadata blob.
func (s *Store) SetMetadata(ctx context.Context, id uint32, data []byte) error {
	return s.adapter.Set(ctx, store.MetadataKey(id), data)
}
