package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodesExpandedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daoopt_nodes_expanded_total",
		Help: "Total number of AND/OR nodes expanded during search",
	}, []string{"kind"})

	nodesPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daoopt_nodes_pruned_total",
		Help: "Total number of AND nodes pruned by the PST bound",
	})

	deadEndsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daoopt_dead_ends_total",
		Help: "Total number of nodes marked a dead end (zero label or heuristic)",
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daoopt_cache_hits_total",
		Help: "Total number of context-cache hits",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daoopt_cache_misses_total",
		Help: "Total number of context-cache misses",
	})

	incumbentValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "daoopt_incumbent_value",
		Help: "Incumbent log-value at the last ReportStats call that had one (0 before that)",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "daoopt_search_duration_seconds",
		Help:    "Wall-clock duration of a complete search run",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
	})
)

// ReportStats pushes a search run's final counters into the package's
// prometheus collectors, for scraping by an embedding service (spec §7,
// "the driver prints summary counters"; the metrics surface is an ambient
// addition, observability is not itself part of the specified core).
func ReportStats(s *BnBSearch) {
	nodeProfile, leafProfile, expanded, processed, pruned, deadEnds := s.Stats()
	_ = nodeProfile
	_ = leafProfile
	_ = processed
	nodesExpandedTotal.WithLabelValues("total").Add(float64(expanded))
	nodesPrunedTotal.Add(float64(pruned))
	deadEndsTotal.Add(float64(deadEnds))
	cacheHitsTotal.Add(float64(s.space.cache.hits))
	cacheMissesTotal.Add(float64(s.space.cache.misses))
	if v, _, ok := s.Incumbent(); ok {
		incumbentValue.Set(float64(v))
	}
}

// ObserveSearchDuration records the wall-clock time a search run took.
func ObserveSearchDuration(seconds float64) {
	searchDuration.Observe(seconds)
}
