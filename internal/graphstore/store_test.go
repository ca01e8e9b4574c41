package graphstore

import (
	"context"
	"errors"
	"testing"

	"github.com/xDarkicex/kvhnsw/internal/kv/memkv"
	"github.com/xDarkicex/kvhnsw/internal/store"
)

func newTestStore() *Store {
	adapter := store.NewAdapter(memkv.New(), "test-tenant")
	return New(adapter)
}

func TestEmptyIndexDefaults(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	n, err := s.NumPoints(ctx)
	if err != nil || n != 0 {
		t.Fatalf("NumPoints = %d, %v; want 0, nil", n, err)
	}
	l, err := s.NumLayers(ctx)
	if err != nil || l != 0 {
		t.Fatalf("NumLayers = %d, %v; want 0, nil", l, err)
	}
	if _, ok, err := s.GetEntryPoint(ctx); err != nil || ok {
		t.Fatalf("GetEntryPoint = ok=%v, %v; want ok=false, nil", ok, err)
	}
}

func TestNewPointAssignsContiguousIDs(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id, err := s.NewPoint(ctx, []float32{float32(i), 0, 0})
		if err != nil {
			t.Fatalf("NewPoint: %v", err)
		}
		if id != uint32(i) {
			t.Fatalf("NewPoint returned id %d, want %d", id, i)
		}
	}
	n, err := s.NumPoints(ctx)
	if err != nil || n != 5 {
		t.Fatalf("NumPoints = %d, %v; want 5, nil", n, err)
	}
}

func TestGetPointRoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	want := []float32{1.5, -2.5, 3.125}
	id, err := s.NewPoint(ctx, want)
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	got, err := s.GetPoint(ctx, id)
	if err != nil {
		t.Fatalf("GetPoint: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vector[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGetPointNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.GetPoint(context.Background(), 42)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("GetPoint on absent id: got %v, want *NotFoundError", err)
	}
}

func TestGetPointsFailsFastOnFirstAbsent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	id0, _ := s.NewPoint(ctx, []float32{1})

	_, err := s.GetPoints(ctx, []uint32{id0, 99})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != 99 {
		t.Fatalf("GetPoints: got %v, want NotFoundError for id 99", err)
	}
}

func TestPromoteToNewLayerGrowsLayerCountAndCreatesEmptyAdjacency(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	id, err := s.NewPoint(ctx, []float32{1, 0})
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}

	if err := s.PromoteToNewLayer(ctx, id); err != nil {
		t.Fatalf("PromoteToNewLayer: %v", err)
	}
	l, err := s.NumLayers(ctx)
	if err != nil || l != 1 {
		t.Fatalf("NumLayers = %d, %v; want 1, nil", l, err)
	}

	neighbors, err := s.GetNeighbors(ctx, 0, id)
	if err != nil {
		t.Fatalf("GetNeighbors: %v", err)
	}
	if len(neighbors) != 0 {
		t.Fatalf("freshly promoted layer node has %d neighbors, want 0", len(neighbors))
	}
}

func TestUpsertAndGetNeighbors(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	a, _ := s.NewPoint(ctx, []float32{1, 0})
	b, _ := s.NewPoint(ctx, []float32{0, 1})

	want := map[uint32]float32{b: 0.5}
	if err := s.UpsertNeighbors(ctx, 0, a, want); err != nil {
		t.Fatalf("UpsertNeighbors: %v", err)
	}
	got, err := s.GetNeighbors(ctx, 0, a)
	if err != nil {
		t.Fatalf("GetNeighbors: %v", err)
	}
	if got[b] != 0.5 {
		t.Fatalf("neighbors[%d] = %v, want 0.5", b, got[b])
	}
}

func TestMetadataFidelity(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	id, _ := s.NewPoint(ctx, []float32{1})

	if v, err := s.GetMetadata(ctx, id); err != nil || v != nil {
		t.Fatalf("GetMetadata before set: %v, %v; want nil, nil", v, err)
	}

	want := []byte(`{"tag":"a"}`)
	if err := s.SetMetadata(ctx, id, want); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	got, err := s.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("GetMetadata = %q, want %q", got, want)
	}
}

func TestNamespaceDoesNotLeakAcrossTenants(t *testing.T) {
	backend := memkv.New()
	s1 := New(store.NewAdapter(backend, "tenant-x"))
	s2 := New(store.NewAdapter(backend, "tenant-y"))
	ctx := context.Background()

	id, err := s1.NewPoint(ctx, []float32{1, 2})
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	if _, err := s2.GetPoint(ctx, id); err == nil {
		t.Fatal("tenant-y saw tenant-x's point")
	}
}
