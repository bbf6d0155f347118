package digest

import (
	"hash"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	hasherPrometheusMetrics sync.Once

	hasherWrittenBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bb_treehash",
			Subsystem: "hasher",
			Name:      "written_bytes_total",
			Help:      "Number of bytes written into hashers.",
		},
		[]string{"function"})
	hasherSumOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bb_treehash",
			Subsystem: "hasher",
			Name:      "sum_operations_total",
			Help:      "Number of digests computed by hashers.",
		},
		[]string{"function"})
)

type metricsHasher struct {
	hash.Hash

	writtenBytes  prometheus.Counter
	sumOperations prometheus.Counter
}

// NewMetricsHasher creates a decorator for hash.Hash that exposes the
// number of bytes hashed and the number of digests computed as
// Prometheus metrics. Metrics are labeled by the name of the hashing
// algorithm and the kind of hasher. Hash tree parameters are not used
// as labels, as they can take on arbitrary values.
func NewMetricsHasher(base hash.Hash, function Function, kind HasherKind) hash.Hash {
	hasherPrometheusMetrics.Do(func() {
		prometheus.MustRegister(hasherWrittenBytes)
		prometheus.MustRegister(hasherSumOperations)
	})

	return &metricsHasher{
		Hash:          base,
		writtenBytes:  hasherWrittenBytes.WithLabelValues(function.String(), string(kind)),
		sumOperations: hasherSumOperations.WithLabelValues(function.String(), string(kind)),
	}
}

func (h *metricsHasher) Write(p []byte) (int, error) {
	n, err := h.Hash.Write(p)
	h.writtenBytes.Add(float64(n))
	return n, err
}

func (h *metricsHasher) Sum(b []byte) []byte {
	h.sumOperations.Inc()
	return h.Hash.Sum(b)
}
