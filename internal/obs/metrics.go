package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the Engine, KV Adapter, and
// Index handle record against. Grounded in the teacher's obs.Metrics
// (internal/obs/metrics.go), renamed from the libravdb_* prefix to
// kvhnsw_* and extended with the KV-adapter split counter and backend
// error counter the teacher had no equivalent for, since its HNSW index
// never talked to a fallible remote backend.
type Metrics struct {
	Inserts       prometheus.Counter
	InsertErrors  prometheus.Counter
	InsertLatency prometheus.Histogram

	SearchQueries prometheus.Counter
	SearchErrors  prometheus.Counter
	SearchLatency prometheus.Histogram

	// BackendSplits counts oversize-batch bisections performed by the KV
	// Adapter (spec.md §4.B) across every open index.
	BackendSplits prometheus.Counter
	// BackendErrors counts KV Adapter backend calls that failed with any
	// error other than SizeLimitExceeded, including calls the circuit
	// breaker rejected without reaching the backend.
	BackendErrors prometheus.Counter
}

// NewMetrics registers and returns a fresh Metrics instance against the
// default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Inserts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvhnsw_inserts_total",
			Help: "Total number of successful inserts.",
		}),
		InsertErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvhnsw_insert_errors_total",
			Help: "Total number of failed inserts.",
		}),
		InsertLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "kvhnsw_insert_latency_seconds",
			Help: "Insert latency in seconds.",
		}),
		SearchQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvhnsw_search_queries_total",
			Help: "Total number of knn_search calls.",
		}),
		SearchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvhnsw_search_errors_total",
			Help: "Total number of failed knn_search calls.",
		}),
		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "kvhnsw_search_latency_seconds",
			Help: "knn_search latency in seconds.",
		}),
		BackendSplits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvhnsw_backend_splits_total",
			Help: "Total number of oversize KV batches bisected by the adapter.",
		}),
		BackendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvhnsw_backend_errors_total",
			Help: "Total number of failed backend calls, excluding recoverable size-limit errors.",
		}),
	}
}
