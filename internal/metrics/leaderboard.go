package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Leaderboard Prometheus metrics.
var (
	SnapshotFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elodash",
			Name:      "snapshot_fetch_total",
			Help:      "Board snapshot loads by outcome",
		},
		[]string{"board", "result"}, // "ok" / "error"
	)

	SnapshotFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "elodash",
			Name:      "snapshot_fetch_duration_seconds",
			Help:      "Board snapshot load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"board"},
	)

	SnapshotRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "elodash",
			Name:      "snapshot_records",
			Help:      "Records in the last loaded snapshot",
		},
		[]string{"board"},
	)

	SnapshotDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elodash",
			Name:      "snapshot_dropped_records_total",
			Help:      "Payload elements rejected while decoding a snapshot",
		},
		[]string{"board"},
	)

	SnapshotCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elodash",
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elodash",
			Name:      "upstream_requests_total",
			Help:      "Requests to the KV worker and static data URLs",
		},
		[]string{"op", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "elodash",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elodash",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// RegisterLeaderboardMetrics registers every elodash metric on the default
// registry. Safe to call more than once.
func RegisterLeaderboardMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			HTTPRequestsTotal,
			HTTPInFlight,
			SnapshotFetchTotal,
			SnapshotFetchDuration,
			SnapshotRecords,
			SnapshotDroppedTotal,
			SnapshotCacheTotal,
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			RegistrationsTotal,
		)
	})
}
