// Package metrics exposes Prometheus collectors for the lineage engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph metrics
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_graph_people",
		Help: "Number of people in the served graph",
	})

	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lineage_graph_edges",
			Help: "Number of edges in the served graph",
		},
		[]string{"type"},
	)

	// Derivation metrics
	DerivedEdges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lineage_derived_edges_total",
			Help: "Total number of sibling and cousin edges added by derivation",
		},
		[]string{"type"},
	)

	DerivationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lineage_derivation_duration_seconds",
		Help:    "Time spent deriving implicit relationships",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	DerivationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_derivation_failures_total",
		Help: "Total number of derivations aborted by a data error",
	})

	// Query metrics
	RelationshipQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lineage_relationship_queries_total",
			Help: "Total relationship queries by relation and result",
		},
		[]string{"relation", "result"},
	)

	// Reload metrics
	Reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lineage_reloads_total",
			Help: "Total dataset reloads by result",
		},
		[]string{"result"},
	)
)
