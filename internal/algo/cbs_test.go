package algo

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	cerrors "github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, inst *core.Instance, opts Options) *core.Solution {
	t.Helper()
	sol, err := NewCBSH(opts).Solve(context.Background(), inst)
	require.NoError(t, err)
	requirePlan(t, inst, sol)
	return sol
}

// requirePlan checks that sol is a feasible conflict-free plan of inst.
func requirePlan(t *testing.T, inst *core.Instance, sol *core.Solution) {
	t.Helper()
	require.True(t, sol.Feasible)
	require.Len(t, sol.Paths, len(inst.Agents))
	cost := 0
	for i, p := range sol.Paths {
		requireValidPath(t, inst.Grid, p, inst.StartLoc(i), inst.GoalLoc(i))
		cost += p.Cost()
	}
	require.Equal(t, cost, sol.Cost)
	require.Empty(t, FindConflicts(sol.Paths))
}

func withHeuristic(h HeuristicKind) Options {
	opts := DefaultOptions()
	opts.Heuristic = h
	return opts
}

func rectangleCrossing() *core.Instance {
	return instanceOf(openGrid(5, 5), [4]int{0, 1, 4, 3}, [4]int{1, 0, 3, 4})
}

// targetBlocking has agent 0 park on a cell that agent 1 passes later.
func targetBlocking() *core.Instance {
	return instanceOf(openGrid(4, 3), [4]int{1, 1, 2, 1}, [4]int{0, 1, 3, 1})
}

func TestSolveCrossingWaitsOnce(t *testing.T) {
	for _, h := range []HeuristicKind{HeuristicNone, HeuristicCG, HeuristicDG, HeuristicWDG} {
		t.Run(h.String(), func(t *testing.T) {
			sol := solve(t, plusCrossing(), withHeuristic(h))
			require.Equal(t, 5, sol.Cost)
			require.Equal(t, 3, sol.Makespan)
			require.Equal(t, 4, sol.Stats.RootCost)
		})
	}
}

func TestSolveFourWayCrossing(t *testing.T) {
	plain := solve(t, fourWayCrossing(), withHeuristic(HeuristicNone))
	wdg := solve(t, fourWayCrossing(), withHeuristic(HeuristicWDG))
	require.Equal(t, plain.Cost, wdg.Cost)
	require.Greater(t, plain.Cost, 16)
	require.LessOrEqual(t, wdg.Stats.NodesExpanded, plain.Stats.NodesExpanded)
	require.Positive(t, wdg.Stats.PairSearches)
}

func TestSolveVariantsAgree(t *testing.T) {
	variants := map[string]Options{
		"CBS":  {Heuristic: HeuristicNone},
		"ICBS": withHeuristic(HeuristicNone),
		"CG":   withHeuristic(HeuristicCG),
		"DG":   withHeuristic(HeuristicDG),
		"WDG":  withHeuristic(HeuristicWDG),
		"WDG+R+C+T": {
			Heuristic: HeuristicWDG, PrioritizeConflicts: true,
			RectangleReasoning: true, CorridorReasoning: true, TargetReasoning: true,
		},
		"seeded DG+R+C+T": {
			Heuristic: HeuristicDG, PrioritizeConflicts: true,
			RectangleReasoning: true, CorridorReasoning: true, TargetReasoning: true,
			Seed: 3, MaxMDDs: 8,
		},
	}
	instances := []struct {
		name string
		inst func() *core.Instance
		cost int
	}{
		{name: "plus", inst: plusCrossing, cost: 5},
		{name: "rectangle", inst: rectangleCrossing, cost: 13},
		{name: "corridor", inst: corridorSwap, cost: 16},
		{name: "target", inst: targetBlocking, cost: 6},
	}
	for _, in := range instances {
		for name, opts := range variants {
			t.Run(in.name+"/"+name, func(t *testing.T) {
				sol := solve(t, in.inst(), opts)
				require.Equal(t, in.cost, sol.Cost)
			})
		}
	}
}

func TestRectangleReasoning(t *testing.T) {
	opts := withHeuristic(HeuristicNone)
	plain := solve(t, rectangleCrossing(), opts)
	opts.RectangleReasoning = true
	rect := solve(t, rectangleCrossing(), opts)

	require.Equal(t, 13, rect.Cost)
	require.Equal(t, plain.Cost, rect.Cost)
	require.Positive(t, rect.Stats.RectangleSplits)
	require.Zero(t, plain.Stats.RectangleSplits)
	require.LessOrEqual(t, rect.Stats.NodesExpanded, plain.Stats.NodesExpanded)
}

func TestCorridorReasoning(t *testing.T) {
	opts := withHeuristic(HeuristicNone)
	plain := solve(t, corridorSwap(), opts)
	opts.CorridorReasoning = true
	corr := solve(t, corridorSwap(), opts)

	require.Equal(t, 16, corr.Cost)
	require.Equal(t, plain.Cost, corr.Cost)
	require.Positive(t, corr.Stats.CorridorSplits)
	require.Zero(t, plain.Stats.CorridorSplits)
}

func TestTargetReasoning(t *testing.T) {
	opts := withHeuristic(HeuristicNone)
	plain := solve(t, targetBlocking(), opts)
	opts.TargetReasoning = true
	target := solve(t, targetBlocking(), opts)

	require.Equal(t, 6, target.Cost)
	require.Equal(t, plain.Cost, target.Cost)
	require.Positive(t, target.Stats.TargetSplits)
	require.Zero(t, plain.Stats.TargetSplits)
}

func TestSolveEnclosedGoalIsInfeasible(t *testing.T) {
	g := gridOf(
		"...",
		"..@",
		".@.",
	)
	sol, err := NewCBSH(DefaultOptions()).Solve(context.Background(), instanceOf(g, [4]int{0, 0, 2, 2}))
	require.True(t, cerrors.ErrInfeasible.Equal(err), "%v", err)
	require.True(t, cerrors.IsSearchFailure(err))
	require.NotNil(t, sol)
	require.False(t, sol.Feasible)
}

func TestSolveRejectsInvalidInstance(t *testing.T) {
	inst := instanceOf(openGrid(3, 3), [4]int{0, 0, 2, 2}, [4]int{0, 0, 1, 1})
	_, err := NewCBSH(DefaultOptions()).Solve(context.Background(), inst)
	require.True(t, cerrors.ErrInvalidInstance.Equal(err), "%v", err)
	require.False(t, cerrors.IsSearchFailure(err))
}

func TestSolveEmptyInstance(t *testing.T) {
	sol := solve(t, core.NewInstance(openGrid(2, 2)), DefaultOptions())
	require.Zero(t, sol.Cost)
}

// advancingObserver moves a mock clock forward on every expansion.
type advancingObserver struct {
	mock *clock.Mock
	step time.Duration
}

func (o *advancingObserver) OnNodeExpanded(NodeInfo) { o.mock.Add(o.step) }
func (o *advancingObserver) OnConflictSelected(*Conflict) {}
func (o *advancingObserver) OnSolutionFound(*core.Solution) {}

func TestSolveCutoff(t *testing.T) {
	mock := clock.NewMock()
	opts := DefaultOptions()
	opts.Cutoff = time.Second
	opts.Clock = mock
	opts.Observer = &advancingObserver{mock: mock, step: 2 * time.Second}

	sol, err := NewCBSH(opts).Solve(context.Background(), plusCrossing())
	require.True(t, cerrors.ErrTimeout.Equal(err), "%v", err)
	require.False(t, sol.Feasible)
	require.Equal(t, 1, sol.Stats.NodesExpanded)
	require.Equal(t, 4, sol.Stats.LowerBound)
	require.Equal(t, 2*time.Second, sol.Stats.Runtime)
}

// trappedTrio has no conflict-free plan. The agent starting at (2,1) can
// only leave its dead end through the goal of the agent at (3,0).
func trappedTrio() *core.Instance {
	g := gridOf(
		"@....",
		"@@.@.",
	)
	return instanceOf(g, [4]int{3, 0, 2, 0}, [4]int{2, 1, 4, 0}, [4]int{1, 0, 4, 1})
}

func TestSolveInfeasibleTrioRespectsCutoff(t *testing.T) {
	for _, h := range []HeuristicKind{HeuristicDG, HeuristicWDG} {
		t.Run(h.String(), func(t *testing.T) {
			mock := clock.NewMock()
			opts := withHeuristic(h)
			opts.TargetReasoning = true
			opts.Cutoff = time.Second
			opts.Clock = mock
			opts.Observer = &advancingObserver{mock: mock, step: time.Millisecond}

			sol, err := NewCBSH(opts).Solve(context.Background(), trappedTrio())
			require.True(t, cerrors.IsSearchFailure(err), "%v", err)
			require.False(t, sol.Feasible)
			require.LessOrEqual(t, sol.Stats.NodesExpanded, 1000)
		})
	}
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCBSH(DefaultOptions()).Solve(ctx, plusCrossing())
	require.Error(t, err)
	require.Equal(t, context.Canceled, cerrors.Cause(err))
	require.False(t, cerrors.IsSearchFailure(err))
}

func TestSolveDeterministic(t *testing.T) {
	opts := withHeuristic(HeuristicWDG)
	opts.Seed = 11
	opts.RectangleReasoning = true
	a := solve(t, fourWayCrossing(), opts)
	b := solve(t, fourWayCrossing(), opts)
	require.Equal(t, a.Paths, b.Paths)
	a.Stats.Runtime, b.Stats.Runtime = 0, 0
	require.Equal(t, a.Stats, b.Stats)
}

type recordingObserver struct {
	nodes     []NodeInfo
	conflicts []*Conflict
	solutions int
}

func (o *recordingObserver) OnNodeExpanded(n NodeInfo) { o.nodes = append(o.nodes, n) }
func (o *recordingObserver) OnConflictSelected(c *Conflict) { o.conflicts = append(o.conflicts, c) }
func (o *recordingObserver) OnSolutionFound(*core.Solution) { o.solutions++ }

func TestSolveNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	opts := withHeuristic(HeuristicCG)
	opts.Observer = obs
	sol := solve(t, plusCrossing(), opts)

	require.Len(t, obs.nodes, sol.Stats.NodesExpanded)
	require.Len(t, obs.conflicts, sol.Stats.NodesExpanded-1)
	require.Equal(t, 1, obs.solutions)

	root := obs.nodes[0]
	require.Equal(t, -1, root.ParentID)
	require.Equal(t, -1, root.Agent)
	require.Equal(t, 4, root.G)
	require.Equal(t, 1, root.H)
	require.Equal(t, Cardinal, obs.conflicts[0].Cardinality)
	for _, n := range obs.nodes[1:] {
		require.NotEmpty(t, n.Constraints)
		require.GreaterOrEqual(t, n.G+n.H, root.G+root.H)
	}
}

func TestSolverName(t *testing.T) {
	opts := withHeuristic(HeuristicWDG)
	opts.RectangleReasoning = true
	opts.TargetReasoning = true
	require.Equal(t, "CBSH-WDG+PC+R+T", NewCBSH(opts).Name())
	require.Equal(t, "CBSH-NONE", NewCBSH(Options{}).Name())
}

func TestParseHeuristic(t *testing.T) {
	for _, name := range []string{"NONE", "CG", "DG", "WDG", "wdg"} {
		_, err := ParseHeuristic(name)
		require.NoError(t, err, name)
	}
	h, _ := ParseHeuristic("DG")
	require.Equal(t, HeuristicDG, h)

	_, err := ParseHeuristic("MAX")
	require.True(t, cerrors.ErrUnknownHeuristic.Equal(err))
}
