// Package memkv is an in-memory reference implementation of kv.Backend.
// It backs unit tests throughout the module and, via MaxBatch, simulates
// the oversize-batch rejection behaviour real backends exhibit (spec.md
// §8 item 13 and scenario S5) so the KV Adapter's splitting logic can be
// exercised without a real database.
package memkv

import (
	"context"
	"sync"

	"github.com/xDarkicex/kvhnsw/internal/kv"
)

// Store is a mutex-guarded map[string][]byte satisfying kv.Backend.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	// MaxBatch caps the number of entries SetMany and GetMany will
	// accept before returning a SizeLimitExceeded BackendError. Zero
	// means unlimited. Set after construction, before first use.
	MaxBatch int
}

// New returns an empty Store with no batch limit.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// NewWithLimit returns an empty Store that rejects any batch larger than
// maxBatch entries — the stub scenario S5 and property 13 call for.
func NewWithLimit(maxBatch int) *Store {
	return &Store{data: make(map[string][]byte), MaxBatch: maxBatch}
}

func (s *Store) Get(ctx context.Context, k string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[k]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) GetMany(ctx context.Context, ks []string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.MaxBatch > 0 && len(ks) > s.MaxBatch {
		return nil, &kv.BackendError{Kind: kv.SizeLimitExceeded, Op: "get_many", N: len(ks)}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, len(ks))
	for i, k := range ks {
		if v, ok := s.data[k]; ok {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[i] = cp
		}
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, k string, v []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[k] = cp
	return nil
}

func (s *Store) SetMany(ctx context.Context, kvs []kv.KeyValue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.MaxBatch > 0 && len(kvs) > s.MaxBatch {
		return &kv.BackendError{Kind: kv.SizeLimitExceeded, Op: "set_many", N: len(kvs)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range kvs {
		cp := make([]byte, len(p.Value))
		copy(cp, p.Value)
		s.data[p.Key] = cp
	}
	return nil
}

// Len reports the number of keys currently stored, for test assertions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
