package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_interactions_total",
			Help: "Interactions recorded, by kind",
		},
		[]string{"kind"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_rate_limited_total",
			Help: "Interactions rejected by the rolling 24h quota, by kind",
		},
		[]string{"kind"},
	)

	MatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_matches_confirmed_total",
			Help: "Mutual likes promoted into a match",
		},
	)

	SnapshotsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_snapshots_generated_total",
			Help: "Matching snapshots generated",
		},
	)

	SnapshotCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result (hit, stale, miss, forced)",
		},
		[]string{"result"},
	)

	CandidateScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_candidate_scores",
			Help:    "Distribution of candidate scores at snapshot generation",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	SnapshotBuildSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_snapshot_build_seconds",
			Help:    "Time spent building a snapshot",
			Buckets: prometheus.DefBuckets,
		},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_rpc_duration_seconds",
			Help:    "Unary RPC latency by method and status code",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
)
