// Package store implements the KV Adapter of spec.md §4.B: a typed,
// namespaced, batch-capable interface over a primitive kv.Backend, with
// automatic request splitting when the backend reports a batch as
// oversize. The Graph Store (internal/graphstore) is the adapter's only
// caller; the adapter itself never interprets key contents beyond the
// schema in keys.go.
package store

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xDarkicex/kvhnsw/internal/kv"
	"github.com/xDarkicex/kvhnsw/internal/obs"
)

// Adapter is the KV Adapter bound to one contract id's namespace.
type Adapter struct {
	backend    kv.Backend
	contractID string
	logger     *zap.Logger
	breaker    *obs.CircuitBreaker // nil means calls reach the backend unguarded
	metrics    *obs.Metrics        // nil means metrics are not recorded

	splits atomic.Int64 // count of batch bisections performed, for Stats()
}

// Option configures an Adapter at construction time.
type Option func(*Adapter)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithCircuitBreaker guards every call this Adapter makes to the backend
// with breaker, so a backend in persistent failure stops being hit on
// every request once it is clearly down (spec.md §7's BackendTransient).
func WithCircuitBreaker(breaker *obs.CircuitBreaker) Option {
	return func(a *Adapter) { a.breaker = breaker }
}

// WithMetrics records backend split and error counts against m.
func WithMetrics(m *obs.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter binds backend to contractID's namespace. contractID is an
// opaque per-tenant identifier (spec.md §1); every key the adapter reads
// or writes is prefixed with it.
func NewAdapter(backend kv.Backend, contractID string, opts ...Option) *Adapter {
	a := &Adapter{
		backend:    backend,
		contractID: contractID,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Splits returns the number of times a batch operation has been bisected
// due to a backend size-limit error, since this Adapter was constructed.
func (a *Adapter) Splits() int64 { return a.splits.Load() }

// Breaker returns the Adapter's circuit breaker, or nil if none was
// configured. Exposed so an Index can report circuit state in Stats().
func (a *Adapter) Breaker() *obs.CircuitBreaker { return a.breaker }

// guarded runs fn through the circuit breaker if one is configured,
// otherwise calls fn directly. A SizeLimitExceeded error is recoverable —
// the caller is about to bisect the batch and retry — so it is reported to
// the breaker as a success and only re-surfaced to our own caller after
// Execute returns; the breaker's failure count, and thus whether the
// circuit opens, reflects only backend errors splitting cannot fix. A
// circuit-open rejection and any other error fn returns are both counted
// as a backend error when metrics are configured.
func (a *Adapter) guarded(ctx context.Context, fn func() error) error {
	var sizeErr error
	wrapped := func() error {
		err := fn()
		if kv.IsSizeLimitExceeded(err) {
			sizeErr = err
			return nil
		}
		return err
	}

	var err error
	if a.breaker != nil {
		err = a.breaker.Execute(ctx, wrapped)
	} else {
		err = wrapped()
	}
	if sizeErr != nil {
		err = sizeErr
	}

	if err != nil && !kv.IsSizeLimitExceeded(err) && a.metrics != nil {
		a.metrics.BackendErrors.Inc()
	}
	return err
}

// Get reads a single namespaced key. A nil, nil return means absent.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := a.guarded(ctx, func() error {
		var err error
		value, err = a.backend.Get(ctx, a.namespaced(key))
		return err
	})
	return value, err
}

// Set writes a single namespaced key unconditionally.
func (a *Adapter) Set(ctx context.Context, key string, value []byte) error {
	return a.guarded(ctx, func() error {
		return a.backend.Set(ctx, a.namespaced(key), value)
	})
}

// GetMany reads a batch of namespaced keys, preserving order and length.
// On a SizeLimitExceeded error from the backend it transparently bisects
// the batch and recurses on each half (spec.md §4.B), running the two
// halves concurrently via errgroup. A single-key failure propagates
// unchanged — splitting bottoms out there.
func (a *Adapter) GetMany(ctx context.Context, keys []string) ([][]byte, error) {
	nsKeys := make([]string, len(keys))
	for i, k := range keys {
		nsKeys[i] = a.namespaced(k)
	}
	return a.getManyRaw(ctx, nsKeys)
}

func (a *Adapter) getManyRaw(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var res [][]byte
	err := a.guarded(ctx, func() error {
		var err error
		res, err = a.backend.GetMany(ctx, keys)
		return err
	})
	if err == nil {
		return res, nil
	}
	if !kv.IsSizeLimitExceeded(err) || len(keys) <= 1 {
		return nil, err
	}

	a.splits.Add(1)
	if a.metrics != nil {
		a.metrics.BackendSplits.Inc()
	}
	a.logger.Debug("kv adapter: bisecting oversize get_many batch", zap.Int("batch_size", len(keys)))

	mid := len(keys) / 2
	var left, right [][]byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, err = a.getManyRaw(gctx, keys[:mid])
		return err
	})
	g.Go(func() error {
		var err error
		right, err = a.getManyRaw(gctx, keys[mid:])
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

// SetMany writes a batch of namespaced key-value pairs, bisecting and
// recursing on SizeLimitExceeded exactly as GetMany does.
func (a *Adapter) SetMany(ctx context.Context, kvs []kv.KeyValue) error {
	nsKvs := make([]kv.KeyValue, len(kvs))
	for i, p := range kvs {
		nsKvs[i] = kv.KeyValue{Key: a.namespaced(p.Key), Value: p.Value}
	}
	return a.setManyRaw(ctx, nsKvs)
}

func (a *Adapter) setManyRaw(ctx context.Context, kvs []kv.KeyValue) error {
	if len(kvs) == 0 {
		return nil
	}

	err := a.guarded(ctx, func() error {
		return a.backend.SetMany(ctx, kvs)
	})
	if err == nil {
		return nil
	}
	if !kv.IsSizeLimitExceeded(err) || len(kvs) <= 1 {
		return err
	}

	a.splits.Add(1)
	if a.metrics != nil {
		a.metrics.BackendSplits.Inc()
	}
	a.logger.Debug("kv adapter: bisecting oversize set_many batch", zap.Int("batch_size", len(kvs)))

	mid := len(kvs) / 2
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.setManyRaw(gctx, kvs[:mid]) })
	g.Go(func() error { return a.setManyRaw(gctx, kvs[mid:]) })
	return g.Wait()
}
