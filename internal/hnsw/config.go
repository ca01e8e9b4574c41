package hnsw

import (
	"fmt"
	"math"

	"github.com/xDarkicex/kvhnsw/internal/util"
)

// Config holds HNSW parameters, fixed at index creation and re-supplied
// identically on every open_index call thereafter (spec.md §4.D). Unlike
// the teacher's in-memory Config, this one carries no quantization
// settings — the KV-backed core has no compressed-vector path.
type Config struct {
	Dimension int

	// M is the target out-degree for layers > 0. Sensible range 5-48.
	M int
	// EfConstruction is the candidate list size during insert.
	EfConstruction int
	// EfSearch is the candidate list size at query time, layer 0. Must
	// be >= k for any query of k.
	EfSearch int
	// Metric selects the distance function; cosine is this
	// specification's default (spec.md §4.D, §9 Open Question 3).
	Metric util.DistanceMetric
	// RandomSeed seeds level generation, for reproducible tests.
	RandomSeed int64
}

// DefaultConfig returns the spec's stated defaults for every field except
// Dimension, which has no sensible default and must always be set
// explicitly.
func DefaultConfig(dimension int) *Config {
	return &Config{
		Dimension:      dimension,
		M:              16,
		EfConstruction: 200,
		EfSearch:       50,
		Metric:         util.CosineMetric,
		RandomSeed:     0,
	}
}

// MMax returns the hard out-degree cap for layer: 2*M at layer 0, M above
// it (spec.md §3 invariant 5, glossary).
func (c *Config) MMax(layer int) int {
	if layer == 0 {
		return 2 * c.M
	}
	return c.M
}

// ml is the level-generation scale factor, 1/ln(M) (spec.md §4.D).
func (c *Config) ml() float64 {
	return 1.0 / math.Log(float64(c.M))
}

func (c *Config) validate() error {
	if c.Dimension <= 0 || c.Dimension > 4096 {
		return fmt.Errorf("%w: dimension must be in [1, 4096], got %d", ErrInvalidConfig, c.Dimension)
	}
	if c.M <= 0 {
		return fmt.Errorf("%w: M must be positive, got %d", ErrInvalidConfig, c.M)
	}
	if c.EfConstruction <= 0 {
		return fmt.Errorf("%w: ef_construction must be positive, got %d", ErrInvalidConfig, c.EfConstruction)
	}
	if c.EfSearch <= 0 {
		return fmt.Errorf("%w: ef_search must be positive, got %d", ErrInvalidConfig, c.EfSearch)
	}
	return nil
}
