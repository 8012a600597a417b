package observer

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	cerrors "github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// swapInstance makes two agents trade the ends of the top row of a 3x2
// grid, so one of them has to detour through the bottom row.
func swapInstance() *core.Instance {
	inst := core.NewInstance(core.NewGrid(3, 2, nil))
	inst.AddAgent(core.Cell{X: 0, Y: 0}, core.Cell{X: 2, Y: 0})
	inst.AddAgent(core.Cell{X: 2, Y: 0}, core.Cell{X: 0, Y: 0})
	return inst
}

func TestRunLoadsPlan(t *testing.T) {
	st := state.NewState(swapInstance(), nil, clock.NewMock())
	changes := 0
	sol, err := Run(context.Background(), st, algo.DefaultOptions(), func() { changes++ })
	require.NoError(t, err)
	require.Equal(t, 6, sol.Cost)

	require.True(t, st.HasPlan())
	require.Equal(t, 6, st.Cost())
	require.Empty(t, st.Collisions())

	snap := st.Search.Snapshot()
	require.False(t, snap.Active)
	require.NoError(t, snap.Err)
	require.GreaterOrEqual(t, snap.Expanded, 2)
	require.GreaterOrEqual(t, snap.Conflicts, 1)
	require.Equal(t, snap.CurrentNode, snap.SolutionNode)
	require.Equal(t, -1, snap.Nodes[0].ParentID)
	require.Greater(t, changes, snap.Expanded)
}

func TestRunStepsWhilePaused(t *testing.T) {
	st := state.NewState(swapInstance(), nil, clock.NewMock())
	st.Search.Pause()

	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), st, algo.DefaultOptions(), nil)
		done <- err
	}()

	st.Search.Step()
	require.Eventually(t, func() bool {
		snap := st.Search.Snapshot()
		return snap.Expanded == 1 && snap.Conflicts == 1
	}, testTimeout, testTick)
	snap := st.Search.Snapshot()
	require.True(t, snap.Active)
	require.True(t, snap.Paused)

	st.Search.Resume()
	require.NoError(t, <-done)
	require.True(t, st.HasPlan())
	require.Equal(t, 6, st.Cost())
}

func TestRunPausedThenCancelled(t *testing.T) {
	st := state.NewState(swapInstance(), nil, clock.NewMock())
	st.Search.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, st, algo.DefaultOptions(), nil)
		done <- err
	}()
	cancel()

	err := <-done
	require.Error(t, err)
	require.Equal(t, context.Canceled, cerrors.Cause(err))
	require.False(t, st.HasPlan())

	snap := st.Search.Snapshot()
	require.False(t, snap.Active)
	require.Error(t, snap.Err)
}

const (
	testTimeout = 5 * time.Second
	testTick    = time.Millisecond
)
