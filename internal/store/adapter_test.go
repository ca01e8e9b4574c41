package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/xDarkicex/kvhnsw/internal/kv"
	"github.com/xDarkicex/kvhnsw/internal/kv/memkv"
	"github.com/xDarkicex/kvhnsw/internal/obs"
)

func TestSetManySplitsOnSizeLimit(t *testing.T) {
	backend := memkv.NewWithLimit(4)
	a := NewAdapter(backend, "tenant-a")

	kvs := make([]kv.KeyValue, 17)
	for i := range kvs {
		kvs[i] = kv.KeyValue{Key: fmt.Sprintf("k%d", i), Value: []byte{byte(i)}}
	}

	if err := a.SetMany(context.Background(), kvs); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	if got := backend.Len(); got != len(kvs) {
		t.Fatalf("backend has %d keys, want %d", got, len(kvs))
	}
	if a.Splits() == 0 {
		t.Fatal("expected at least one split to have occurred")
	}
}

func TestGetManySplitsOnSizeLimitAndPreservesOrder(t *testing.T) {
	backend := memkv.NewWithLimit(3)
	a := NewAdapter(backend, "tenant-b")

	kvs := make([]kv.KeyValue, 10)
	for i := range kvs {
		kvs[i] = kv.KeyValue{Key: fmt.Sprintf("k%d", i), Value: []byte{byte(i * 2)}}
	}
	if err := a.SetMany(context.Background(), kvs); err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	keys := make([]string, len(kvs))
	for i, p := range kvs {
		keys[i] = p.Key
	}
	got, err := a.GetMany(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != len(kvs) {
		t.Fatalf("got %d results, want %d", len(got), len(kvs))
	}
	for i, v := range got {
		if len(v) != 1 || v[0] != byte(i*2) {
			t.Errorf("result[%d] = %v, want [%d]", i, v, i*2)
		}
	}
}

func TestGetManyMissingKeysAreNilNotError(t *testing.T) {
	backend := memkv.New()
	a := NewAdapter(backend, "tenant-c")

	if err := a.Set(context.Background(), "present", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := a.GetMany(context.Background(), []string{"present", "absent"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if string(got[0]) != "v" {
		t.Errorf("got[0] = %q, want %q", got[0], "v")
	}
	if got[1] != nil {
		t.Errorf("got[1] = %v, want nil", got[1])
	}
}

func TestSingleKeyFailurePropagates(t *testing.T) {
	backend := memkv.NewWithLimit(0) // unlimited batch, but Set itself can still fail via ctx
	a := NewAdapter(backend, "tenant-d")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Set(ctx, "k", []byte("v")); err == nil {
		t.Fatal("expected error from Set on a cancelled context")
	}
}

// TestCircuitBreakerIgnoresSizeLimitSplits guards against regressing into
// routing recoverable SizeLimitExceeded errors into the breaker's failure
// count: a backend that rejects oversize batches but otherwise works fine
// must never trip its adapter's breaker open, no matter how many splits a
// large batch requires.
func TestCircuitBreakerIgnoresSizeLimitSplits(t *testing.T) {
	backend := memkv.NewWithLimit(2)
	breaker := obs.NewCircuitBreaker(obs.CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 5,
		Timeout:     time.Minute,
		MaxRequests: 3,
		MinRequests: 1000, // keep the failure-rate path out of this test
	})
	a := NewAdapter(backend, "tenant-breaker", WithCircuitBreaker(breaker))

	// 33 keys against a MaxBatch of 2 forces well over 5 size-limit
	// rejections before the batch is small enough to succeed.
	kvs := make([]kv.KeyValue, 33)
	for i := range kvs {
		kvs[i] = kv.KeyValue{Key: fmt.Sprintf("k%d", i), Value: []byte{byte(i)}}
	}
	if err := a.SetMany(context.Background(), kvs); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	if a.Splits() < 5 {
		t.Fatalf("expected at least 5 splits to exercise the scenario, got %d", a.Splits())
	}
	if got := breaker.State(); got != obs.CircuitClosed {
		t.Fatalf("breaker state = %v after size-limit-only splits, want CLOSED", got)
	}
	failures, _, _ := breaker.Counts()
	if failures != 0 {
		t.Fatalf("breaker recorded %d failures from SizeLimitExceeded errors, want 0", failures)
	}

	keys := make([]string, len(kvs))
	for i, p := range kvs {
		keys[i] = p.Key
	}
	if _, err := a.GetMany(context.Background(), keys); err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if got := breaker.State(); got != obs.CircuitClosed {
		t.Fatalf("breaker state = %v after get_many splits, want CLOSED", got)
	}
}

func TestNamespaceIsolation(t *testing.T) {
	backend := memkv.New()
	a1 := NewAdapter(backend, "tenant-1")
	a2 := NewAdapter(backend, "tenant-2")

	if err := a1.Set(context.Background(), "points", []byte("3")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := a2.Get(context.Background(), "points")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Errorf("tenant-2 saw tenant-1's key: %v", v)
	}
}
