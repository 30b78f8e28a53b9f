// Package metrics provides Prometheus metrics for the Sage service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchesTotal tracks emitted match results by strategy and confidence tier
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "matching",
			Name:      "matches_total",
			Help:      "Total number of match results emitted by strategy and tier",
		},
		[]string{"strategy", "tier"},
	)

	// StrategySelections tracks which strategy settled each item
	StrategySelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "matching",
			Name:      "strategy_selections_total",
			Help:      "Total number of items settled per strategy",
		},
		[]string{"strategy"},
	)

	// BatchDuration tracks end-to-end batch match duration in seconds
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sage",
			Subsystem: "matching",
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch match requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// IndexRebuilds tracks catalog index snapshot rebuilds
	IndexRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "index",
			Name:      "rebuilds_total",
			Help:      "Total number of catalog index rebuilds",
		},
	)

	// IndexSize tracks published index size per tenant
	IndexSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sage",
			Subsystem: "index",
			Name:      "records",
			Help:      "Number of catalog records in the published index snapshot",
		},
		[]string{"tenant_id"},
	)

	// CacheHits tracks match cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of match cache hits",
		},
	)

	// CacheMisses tracks match cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of match cache misses",
		},
	)

	// KafkaMessagesConsumed tracks manifest messages consumed from Kafka
	KafkaMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Total number of messages consumed from Kafka by status",
		},
		[]string{"topic", "status"},
	)

	// KafkaMessagesPublished tracks match results published to Kafka
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka by status",
		},
		[]string{"topic", "status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sage",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordKafkaConsume records a consumed Kafka message
func RecordKafkaConsume(topic, status string) {
	KafkaMessagesConsumed.WithLabelValues(topic, status).Inc()
}

// RecordKafkaPublish records a published Kafka message
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
