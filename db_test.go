package kvhnsw

import (
	"context"
	"math/rand"
	"testing"

	"github.com/xDarkicex/kvhnsw/internal/kv/memkv"
)

// TestCircuitBreakerSurvivesSizeLimitedBackend exercises the full
// DB -> Adapter -> CircuitBreaker wiring OpenIndex builds, against a
// backend whose batch size is small enough that ordinary insert traffic
// forces repeated SizeLimitExceeded splits. A backend this constrained is
// exactly the size-bounding model spec.md §1/§4.B targets, and none of
// that splitting may ever be accounted as a breaker failure: real insert
// and search calls must keep succeeding well past the default
// MaxFailures threshold.
func TestCircuitBreakerSurvivesSizeLimitedBackend(t *testing.T) {
	backend := memkv.NewWithLimit(2)
	db := New(backend)

	cfg := DefaultConfig(8)
	idx, err := db.OpenIndex(context.Background(), "tenant-breaker", cfg, WithM(4))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 30; i++ {
		vec := make([]float32, 8)
		for j := range vec {
			vec[j] = rng.Float32()
		}
		if _, err := idx.Insert(context.Background(), vec, nil); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	stats, err := idx.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.BackendSplits == 0 {
		t.Fatal("expected the size-limited backend to have forced at least one split")
	}
	if stats.CircuitState != "CLOSED" {
		t.Fatalf("circuit state = %q after %d splits, want CLOSED", stats.CircuitState, stats.BackendSplits)
	}

	query := make([]float32, 8)
	for j := range query {
		query[j] = rng.Float32()
	}
	if _, err := idx.KNNSearch(context.Background(), query, 5); err != nil {
		t.Fatalf("KNNSearch: %v", err)
	}
}
