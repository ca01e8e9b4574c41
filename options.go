package kvhnsw

import (
	"go.uber.org/zap"

	"github.com/xDarkicex/kvhnsw/internal/hnsw"
	"github.com/xDarkicex/kvhnsw/internal/obs"
	"github.com/xDarkicex/kvhnsw/internal/util"
)

// Option configures a DB at construction time, following the functional
// options pattern of libravdb/options.go.
type Option func(*DB)

// WithLogger overrides the DB's default no-op logger. Every Index opened
// from this DB inherits it.
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) { db.logger = logger }
}

// WithMetrics overrides the DB's default Prometheus metrics instance.
// Use this to share one Metrics (and one registry) across multiple DBs
// in a process that needs more than one.
func WithMetrics(m *obs.Metrics) Option {
	return func(db *DB) { db.metrics = m }
}

// IndexOption configures an hnsw.Config at open_index time. Options are
// applied on top of the Config passed to OpenIndex; fields no option
// sets keep that Config's values.
type IndexOption func(*hnsw.Config)

// WithM sets the target out-degree for layers above 0. Sensible range
// 5-48.
func WithM(m int) IndexOption {
	return func(c *hnsw.Config) { c.M = m }
}

// WithEfConstruction sets the candidate list size used while inserting.
func WithEfConstruction(ef int) IndexOption {
	return func(c *hnsw.Config) { c.EfConstruction = ef }
}

// WithEfSearch sets the default candidate list size at query time. Must
// be >= k for any given query, checked per-call.
func WithEfSearch(ef int) IndexOption {
	return func(c *hnsw.Config) { c.EfSearch = ef }
}

// WithMetric overrides the distance function. Cosine is this
// specification's default and the only metric exercised by default
// (spec.md §4.D, §9 Open Question 3); Euclidean and inner product are
// accepted substitutions provided the same metric is used consistently
// for an index's whole lifetime.
func WithMetric(metric util.DistanceMetric) IndexOption {
	return func(c *hnsw.Config) { c.Metric = metric }
}

// WithRandomSeed fixes the level-generation RNG seed, for reproducible
// tests.
func WithRandomSeed(seed int64) IndexOption {
	return func(c *hnsw.Config) { c.RandomSeed = seed }
}
