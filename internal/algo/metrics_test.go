package algo

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordSearches(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(registry))
	require.Error(t, m.Register(registry), "collectors are registered once")

	opts := withHeuristic(HeuristicWDG)
	opts.Metrics = m
	sol, err := NewCBSH(opts).Solve(context.Background(), plusCrossing())
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("WDG", "solved")))
	require.Equal(t, float64(sol.Stats.NodesExpanded), testutil.ToFloat64(m.NodesExpanded.WithLabelValues("WDG")))
	require.Equal(t, float64(sol.Stats.LowLevelCalls), testutil.ToFloat64(m.LowLevelCalls.WithLabelValues("WDG")))
	require.Equal(t, float64(sol.Stats.PairSearches), testutil.ToFloat64(m.PairSearches.WithLabelValues("WDG")))
	require.Equal(t, 1, testutil.CollectAndCount(m.Runtime))

	_, err = NewCBSH(opts).Solve(context.Background(), instanceOf(gridOf(
		"...",
		"..@",
		".@.",
	), [4]int{0, 0, 2, 2}))
	require.Error(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("WDG", "infeasible")))
}
