package algo

import (
	"testing"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/stretchr/testify/require"
)

// rootEstimate returns the root g and h of inst under the heuristic.
func rootEstimate(t *testing.T, inst *core.Instance, h HeuristicKind) (g, est int) {
	t.Helper()
	s := newSearch(NewCBSH(withHeuristic(h)).Options(), inst)
	defer s.shutdown()
	root, err := s.root()
	require.NoError(t, err)
	s.evaluate(root, nil)
	return root.g, root.h
}

func TestHeuristicsAreOrderedAndAdmissible(t *testing.T) {
	instances := map[string]func() *core.Instance{
		"plus":      plusCrossing,
		"four way":  fourWayCrossing,
		"rectangle": rectangleCrossing,
		"corridor":  corridorSwap,
	}
	for name, mk := range instances {
		t.Run(name, func(t *testing.T) {
			optimal := solve(t, mk(), withHeuristic(HeuristicWDG)).Cost
			prev := -1
			for _, h := range []HeuristicKind{HeuristicNone, HeuristicCG, HeuristicDG, HeuristicWDG} {
				g, est := rootEstimate(t, mk(), h)
				require.GreaterOrEqual(t, est, prev, "%s below the weaker heuristic", h)
				require.LessOrEqual(t, g+est, optimal, "%s overestimates", h)
				prev = est
			}
		})
	}
}

func TestCrossingRootEstimates(t *testing.T) {
	for _, h := range []HeuristicKind{HeuristicCG, HeuristicDG, HeuristicWDG} {
		g, est := rootEstimate(t, plusCrossing(), h)
		require.Equal(t, 4, g)
		require.Equal(t, 1, est, h.String())
	}
}

func TestIndependentAgentsEstimateZero(t *testing.T) {
	inst := instanceOf(openGrid(3, 3), [4]int{0, 0, 2, 0}, [4]int{0, 2, 2, 2})
	for _, h := range []HeuristicKind{HeuristicNone, HeuristicCG, HeuristicDG, HeuristicWDG} {
		_, est := rootEstimate(t, inst, h)
		require.Zero(t, est, h.String())
	}
}

func TestPairWeight(t *testing.T) {
	inst := fourWayCrossing()
	s := newSearch(NewCBSH(withHeuristic(HeuristicWDG)).Options(), inst)
	defer s.shutdown()
	root, err := s.root()
	require.NoError(t, err)
	paths := s.paths(root)

	// head-on agents on the same row: one of them must step aside
	s.opts.PairNodeLimit = 10000
	w, ok := s.pairWeight(0, 1, nil, nil, paths[0], paths[1])
	require.True(t, ok)
	require.Equal(t, 2, w)
	require.Equal(t, 1, s.stats.PairSearches)

	// with no room to expand, the bound falls back to at least one
	s.opts.PairNodeLimit = 1
	w, ok = s.pairWeight(0, 1, nil, nil, paths[0], paths[1])
	require.True(t, ok)
	require.Equal(t, 1, w)
}

func TestPairWeightWithoutPlan(t *testing.T) {
	inst := plusCrossing()
	s := newSearch(NewCBSH(withHeuristic(HeuristicWDG)).Options(), inst)
	defer s.shutdown()
	root, err := s.root()
	require.NoError(t, err)
	paths := s.paths(root)

	// neither agent may ever settle, so both children of the pair root die
	consA := []Constraint{Range(0, inst.GoalLoc(0), 0, Forever)}
	consB := []Constraint{Range(1, inst.GoalLoc(1), 0, Forever)}
	_, ok := s.pairWeight(0, 1, consA, consB, paths[0], paths[1])
	require.False(t, ok)
}

func TestPairCache(t *testing.T) {
	c := newPairCache(2)
	k := pairKey{a: 0, b: 1, costA: 2, costB: 3, fpA: 7, fpB: 9}
	_, ok := c.get(k, []byte{1}, []byte{2})
	require.False(t, ok)

	c.add(k, pairEntry{sigA: []byte{1}, sigB: []byte{2}, value: 4})
	e, ok := c.get(k, []byte{1}, []byte{2})
	require.True(t, ok)
	require.Equal(t, 4, e.value)
	require.False(t, e.dead)

	// a fingerprint collision is caught by the signature check
	_, ok = c.get(k, []byte{1}, []byte{3})
	require.False(t, ok)

	disabled := newPairCache(0)
	disabled.add(k, pairEntry{value: 1})
	_, ok = disabled.get(k, nil, nil)
	require.False(t, ok)
}
