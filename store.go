package kvhnsw

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xDarkicex/kvhnsw/internal/graphstore"
	"github.com/xDarkicex/kvhnsw/internal/hnsw"
	"github.com/xDarkicex/kvhnsw/internal/kv"
	"github.com/xDarkicex/kvhnsw/internal/obs"
	"github.com/xDarkicex/kvhnsw/internal/store"
)

// DB is the multi-tenant container of spec.md §1/§6: one KV backend
// shared by many contract ids, each with its own HNSW index opened on
// demand. Grounded in the teacher's libravdb.Database
// (libravdb/database.go), with collections replaced by per-contract
// Index handles and the LSM storage engine replaced by a kv.Backend.
type DB struct {
	mu      sync.RWMutex
	backend kv.Backend
	indices map[string]*Index
	metrics *obs.Metrics
	logger  *zap.Logger
	breaker *obs.CircuitBreaker
	health  *obs.HealthChecker
	closed  bool
}

// New binds a DB to backend. backend is shared unmodified across every
// Index this DB opens; namespacing by contract id happens one layer down,
// in internal/store.Adapter.
func New(backend kv.Backend, opts ...Option) *DB {
	db := &DB{
		backend: backend,
		indices: make(map[string]*Index),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.metrics == nil {
		db.metrics = obs.NewMetrics()
	}
	db.breaker = obs.NewCircuitBreaker(obs.DefaultCircuitBreakerConfig("kvhnsw-backend"))
	db.health = obs.NewHealthChecker(db.breaker)
	return db
}

// OpenIndex returns the Index for contractID, creating it with config if
// this is the first call for that contract id (spec.md §6: open_index is
// idempotent). A contract id already open ignores config on subsequent
// calls — the index keeps whatever configuration it was first opened
// with, since HNSW parameters are fixed for a graph's lifetime.
func (db *DB) OpenIndex(ctx context.Context, contractID string, config *hnsw.Config, opts ...IndexOption) (*Index, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrClosed
	}
	if idx, ok := db.indices[contractID]; ok {
		return idx, nil
	}

	cfg := *config
	for _, opt := range opts {
		opt(&cfg)
	}

	adapter := store.NewAdapter(db.backend, contractID,
		store.WithLogger(db.logger),
		store.WithCircuitBreaker(db.breaker),
		store.WithMetrics(db.metrics),
	)
	graphStore := graphstore.New(adapter)
	engine, err := hnsw.NewEngine(graphStore, &cfg,
		hnsw.WithLogger(db.logger),
		hnsw.WithMetrics(db.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("kvhnsw: opening index %q: %w", contractID, err)
	}

	idx := &Index{contractID: contractID, engine: engine, adapter: adapter}
	db.indices[contractID] = idx
	return idx, nil
}

// ListIndices returns the contract ids of every index opened so far.
func (db *DB) ListIndices() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := make([]string, 0, len(db.indices))
	for id := range db.indices {
		ids = append(ids, id)
	}
	return ids
}

// Health reports the shared backend's circuit breaker health.
func (db *DB) Health(ctx context.Context) (*obs.HealthStatus, error) {
	return db.health.Check(ctx)
}

// Close marks the DB closed; open Index handles remain usable (HNSW
// state lives in the backend, not in process memory), but OpenIndex on a
// closed DB fails.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}
