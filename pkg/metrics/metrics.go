// Package metrics exposes Prometheus counters describing engine behavior,
// in particular the degraded paths (fallback intensities, skipped resources)
// that would otherwise be invisible to operators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts processed queries by scope and output shape.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbon_estimator_queries_total",
			Help: "Number of carbon queries processed, by resource type and query type",
		},
		[]string{"resource_type", "query_type"},
	)

	// GridIntensityFallbacks counts lookups that degraded to the configured
	// default intensity.
	GridIntensityFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carbon_estimator_grid_intensity_fallbacks_total",
			Help: "Number of grid intensity lookups that fell back to the configured default",
		},
	)

	// SkippedResources counts resources dropped from aggregates because their
	// individual calculation failed.
	SkippedResources = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbon_estimator_skipped_resources_total",
			Help: "Number of resources skipped during aggregate carbon calculations",
		},
		[]string{"resource_type"},
	)

	// UnknownAggregations counts single-value queries whose aggregation
	// operator was not recognized and defaulted to sum.
	UnknownAggregations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carbon_estimator_unknown_aggregations_total",
			Help: "Number of single-value queries with an unrecognized aggregation operator",
		},
	)
)
