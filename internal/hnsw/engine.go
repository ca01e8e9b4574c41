// Package hnsw is the HNSW Engine of spec.md §4.D: the algorithmic core
// of layer selection, search_layer, neighbour selection, insert, and
// knn_search. It consumes internal/graphstore.Store and knows nothing of
// the KV backend underneath it (spec.md §9's "cyclic reference" note —
// the dependency runs one way, Engine -> GraphStore, never back).
package hnsw

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xDarkicex/kvhnsw/internal/graphstore"
	"github.com/xDarkicex/kvhnsw/internal/obs"
	"github.com/xDarkicex/kvhnsw/internal/util"
)

// SearchResult is one hit of KNNSearch.
type SearchResult struct {
	ID       uint32
	Distance float32
	Metadata []byte
}

// Stats is the engine-level view backing Index.stats() (spec.md §6);
// the root package adds backend/circuit-breaker health on top of this.
type Stats struct {
	NumPoints uint32
	NumLayers uint32
	Config    Config
}

// Engine is the HNSW algorithmic core bound to one Graph Store.
type Engine struct {
	config   *Config
	store    *graphstore.Store
	distance util.DistanceFunc
	logger   *zap.Logger
	metrics  *obs.Metrics // nil means insert/search counters are not recorded

	rngMu sync.Mutex // math/rand.Rand is not safe for concurrent use
	rng   *rand.Rand

	// levelHook, if set, overrides selectLayer's draw. Used only by this
	// package's own tests to pin a specific insert to a specific layer
	// without depending on math/rand's exact output sequence.
	levelHook func() int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records insert/search counts and latencies against m.
func WithMetrics(m *obs.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine validates config and binds the Engine to store.
func NewEngine(store *graphstore.Store, config *Config, opts ...Option) (*Engine, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	distanceFunc, err := util.GetDistanceFunc(config.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e := &Engine{
		config:   config,
		store:    store,
		distance: distanceFunc,
		logger:   zap.NewNop(),
		rng:      rand.New(rand.NewSource(config.RandomSeed)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// selectLayer draws the new point's target layer: floor(-ln(U) * ml),
// U uniform on (0, 1] (spec.md §4.D).
func (e *Engine) selectLayer() int {
	if e.levelHook != nil {
		return e.levelHook()
	}
	e.rngMu.Lock()
	u := e.rng.Float64()
	e.rngMu.Unlock()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return int(math.Floor(-math.Log(u) * e.config.ml()))
}

// GetVector implements Index.get(id) (spec.md §6): a straight read from
// the Graph Store, NotFound if id is out of range.
func (e *Engine) GetVector(ctx context.Context, id uint32) ([]float32, []byte, error) {
	vector, err := e.store.GetPoint(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	meta, err := e.store.GetMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return vector, meta, nil
}

// Stats implements the engine-level portion of Index.stats() (spec.md §6).
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	numPoints, err := e.store.NumPoints(ctx)
	if err != nil {
		return Stats{}, err
	}
	numLayers, err := e.store.NumLayers(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{NumPoints: numPoints, NumLayers: numLayers, Config: *e.config}, nil
}

// KNNSearch implements knn_search (Algorithm 5, spec.md §4.D).
func (e *Engine) KNNSearch(ctx context.Context, query []float32, k int) (results []SearchResult, err error) {
	if e.metrics != nil {
		start := time.Now()
		e.metrics.SearchQueries.Inc()
		defer func() {
			e.metrics.SearchLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				e.metrics.SearchErrors.Inc()
			}
		}()
	}

	if len(query) != e.config.Dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", ErrDimensionMismatch, len(query), e.config.Dimension)
	}
	if e.config.EfSearch < k {
		return nil, fmt.Errorf("%w: ef_search (%d) must be >= k (%d)", ErrInvalidConfig, e.config.EfSearch, k)
	}

	entryID, ok, err := e.store.GetEntryPoint(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	numLayers, err := e.store.NumLayers(ctx)
	if err != nil {
		return nil, err
	}

	ep := []uint32{entryID}
	for layer := int(numLayers) - 1; layer >= 1; layer-- {
		candidates, err := e.searchLayer(ctx, query, ep, 1, layer)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			ep = []uint32{candidates[0].ID}
		}
	}

	ef := e.config.EfSearch
	if k > ef {
		ef = k
	}
	candidates, err := e.searchLayer(ctx, query, ep, ef, 0)
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	ids := make([]uint32, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	metas, err := e.store.GetMetadataMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	results = make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{ID: c.ID, Distance: c.Distance, Metadata: metas[i]}
	}
	return results, nil
}
