package algo

import (
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of the solver, labelled by
// heuristic. Create one with NewMetrics and Register it.
type Metrics struct {
	NodesGenerated *prometheus.CounterVec
	NodesExpanded  *prometheus.CounterVec
	LowLevelCalls  *prometheus.CounterVec
	MDDsBuilt      *prometheus.CounterVec
	MDDCacheHits   *prometheus.CounterVec
	PairSearches   *prometheus.CounterVec
	Searches       *prometheus.CounterVec
	Runtime        *prometheus.HistogramVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cbsh",
				Subsystem: "search",
				Name:      name,
				Help:      help,
			}, labels)
	}
	return &Metrics{
		NodesGenerated: counter("nodes_generated_total", "high-level nodes generated", "heuristic"),
		NodesExpanded:  counter("nodes_expanded_total", "high-level nodes expanded", "heuristic"),
		LowLevelCalls:  counter("low_level_calls_total", "single-agent searches", "heuristic"),
		MDDsBuilt:      counter("mdds_built_total", "decision diagrams built", "heuristic"),
		MDDCacheHits:   counter("mdd_cache_hits_total", "decision diagram cache hits", "heuristic"),
		PairSearches:   counter("pair_searches_total", "two-agent sub-searches run for WDG", "heuristic"),
		Searches:       counter("searches_total", "finished searches", "heuristic", "outcome"),
		Runtime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cbsh",
				Subsystem: "search",
				Name:      "runtime_seconds",
				Help:      "bucketed histogram of search runtime",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 18),
			}, []string{"heuristic"}),
	}
}

// Register adds all collectors to registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.NodesGenerated, m.NodesExpanded, m.LowLevelCalls, m.MDDsBuilt,
		m.MDDCacheHits, m.PairSearches, m.Searches, m.Runtime,
	} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// observe records the outcome of one search.
func (m *Metrics) observe(heuristic HeuristicKind, outcome string, st core.Stats) {
	if m == nil {
		return
	}
	h := heuristic.String()
	m.NodesGenerated.WithLabelValues(h).Add(float64(st.NodesGenerated))
	m.NodesExpanded.WithLabelValues(h).Add(float64(st.NodesExpanded))
	m.LowLevelCalls.WithLabelValues(h).Add(float64(st.LowLevelCalls))
	m.MDDsBuilt.WithLabelValues(h).Add(float64(st.MDDsBuilt))
	m.MDDCacheHits.WithLabelValues(h).Add(float64(st.MDDCacheHits))
	m.PairSearches.WithLabelValues(h).Add(float64(st.PairSearches))
	m.Searches.WithLabelValues(h, outcome).Inc()
	m.Runtime.WithLabelValues(h).Observe(st.Runtime.Seconds())
}
