package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stormgraph"

var (
	// FragmentsTotal counts fragments by extraction outcome
	// (extracted, failed, skipped).
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "fragments_total",
			Help:      "Fragments handled by the extraction pipeline by outcome",
		},
		[]string{"outcome"},
	)

	ConceptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "concepts_total",
			Help:      "Deduplicated concepts produced by extraction runs",
		},
		[]string{"type"},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "finished_total",
			Help:      "Extraction jobs that reached a terminal status",
		},
		[]string{"status"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Wall time of extraction jobs",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// GraphWritesTotal counts store writes by kind (node, edge) and result
	// (created, merged, skipped, failed).
	GraphWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "writes_total",
			Help:      "Graph store writes by kind and result",
		},
		[]string{"kind", "result"},
	)
)
