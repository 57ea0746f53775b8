package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	SourceSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askdex",
			Name:      "source_search_duration_seconds",
			Help:      "Per-source ranked search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source", "status"},
	)

	FusedCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "askdex",
			Name:      "fused_candidates",
			Help:      "Number of candidates after rank fusion",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	PermissionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "permission_cache_total",
			Help:      "Permission decision cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PermissionDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "permission_denied_total",
			Help:      "Passages dropped by the permission filter",
		},
	)

	DegradedResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "degraded_responses_total",
			Help:      "Responses returned in degraded mode",
		},
		[]string{"reason"}, // "source_failed" / "deadline" / "generation_failed"
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askdex",
			Name:      "generation_duration_seconds",
			Help:      "Answer generation backend call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"status"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(SourceSearchDuration)
	prometheus.MustRegister(FusedCandidates)
	prometheus.MustRegister(PermissionCacheTotal)
	prometheus.MustRegister(PermissionDeniedTotal)
	prometheus.MustRegister(DegradedResponsesTotal)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	retrievalMetricsRegistered = true
}
