package state

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// twoLanes is a 3x2 grid: agent 0 runs along the top row and agent 1
// takes one step left on the bottom row.
func twoLanes() (*core.Instance, []core.Path) {
	inst := core.NewInstance(core.NewGrid(3, 2, nil))
	inst.AddAgent(core.Cell{X: 0, Y: 0}, core.Cell{X: 2, Y: 0})
	inst.AddAgent(core.Cell{X: 2, Y: 1}, core.Cell{X: 1, Y: 1})
	return inst, []core.Path{{0, 1, 2}, {5, 4}}
}

func TestPositionsWithoutPlan(t *testing.T) {
	inst, _ := twoLanes()
	st := NewState(inst, nil, clock.NewMock())
	require.False(t, st.HasPlan())
	require.Equal(t, []Pos{{0, 0}, {2, 1}}, st.CurrentPositions())
	require.Nil(t, st.PathHistory(0))
	require.Nil(t, st.FuturePath(0))
	require.False(t, st.Arrived(0))
}

func TestInterpolatedPositions(t *testing.T) {
	inst, paths := twoLanes()
	st := NewState(inst, paths, clock.NewMock())
	require.True(t, st.HasPlan())
	require.Equal(t, 3, st.Cost())
	require.Equal(t, 2.0, st.Playback.MaxTime())

	st.Playback.SetTime(0.5)
	require.Equal(t, []Pos{{0.5, 0}, {1.5, 1}}, st.CurrentPositions())

	st.Playback.SetTime(1.5)
	require.Equal(t, []Pos{{1.5, 0}, {1, 1}}, st.CurrentPositions())
	require.Equal(t, []Pos{{0, 0}, {1, 0}, {1.5, 0}}, st.PathHistory(0))
	require.Equal(t, []Pos{{1.5, 0}, {2, 0}}, st.FuturePath(0))
	require.False(t, st.Arrived(0))
	require.True(t, st.Arrived(1))

	st.Playback.SetTime(5)
	require.Equal(t, []Pos{{2, 0}, {1, 1}}, st.CurrentPositions())
	require.True(t, st.Arrived(0))
}

func TestActiveCollisions(t *testing.T) {
	inst := core.NewInstance(core.NewGrid(3, 1, nil))
	inst.AddAgent(core.Cell{X: 0, Y: 0}, core.Cell{X: 2, Y: 0})
	inst.AddAgent(core.Cell{X: 2, Y: 0}, core.Cell{X: 0, Y: 0})
	st := NewState(inst, []core.Path{{0, 1, 2}, {2, 1, 0}}, clock.NewMock())

	cols := st.Collisions()
	require.Len(t, cols, 1)
	require.Equal(t, 1, cols[0].T)
	require.Equal(t, core.Cell{X: 1, Y: 0}, cols[0].Cell)

	st.Playback.SetTime(0.4)
	require.Empty(t, st.ActiveCollisions())
	st.Playback.SetTime(0.6)
	require.Len(t, st.ActiveCollisions(), 1)
	st.Playback.SetTime(1.5)
	require.Len(t, st.ActiveCollisions(), 1)
	st.Playback.SetTime(1.6)
	require.Empty(t, st.ActiveCollisions())
}

func TestSetPlanRewinds(t *testing.T) {
	inst, paths := twoLanes()
	st := NewState(inst, nil, clock.NewMock())
	require.Zero(t, st.Playback.MaxTime())

	st.SetPlan(paths)
	require.Equal(t, 2.0, st.Playback.MaxTime())
	st.Playback.SetTime(2)
	st.SetPlan([]core.Path{{0, 1, 2}, {5, 4, 3}})
	require.Zero(t, st.Playback.Time())
	require.Equal(t, 4, st.Cost())
}

func TestPlaybackAdvance(t *testing.T) {
	clk := clock.NewMock()
	pb := NewPlaybackState(4, clk)
	require.Equal(t, 2.0, pb.Speed())

	pb.Advance()
	require.Zero(t, pb.Time(), "paused playback does not move")

	pb.TogglePlay()
	require.True(t, pb.Playing())
	clk.Add(500 * time.Millisecond)
	pb.Advance()
	require.InDelta(t, 1.0, pb.Time(), 1e-9)
	require.InDelta(t, 0.25, pb.Progress(), 1e-9)

	clk.Add(10 * time.Second)
	pb.Advance()
	require.Equal(t, 4.0, pb.Time())
	require.False(t, pb.Playing(), "playback stops at the end")

	// playing from the end starts over
	pb.TogglePlay()
	require.Zero(t, pb.Time())
}

func TestPlaybackSteps(t *testing.T) {
	pb := NewPlaybackState(3, clock.NewMock())
	pb.SetTime(1.4)
	pb.StepForward()
	require.Equal(t, 2.0, pb.Time())
	pb.StepForward()
	pb.StepForward()
	require.Equal(t, 3.0, pb.Time())

	pb.SetTime(1.4)
	pb.StepBack()
	require.Equal(t, 1.0, pb.Time())
	pb.StepBack()
	pb.StepBack()
	require.Zero(t, pb.Time())

	pb.SetTime(-1)
	require.Zero(t, pb.Time())
	pb.SetTime(2.5)
	pb.SetMaxTime(2)
	require.Equal(t, 2.0, pb.Time())

	pb.TogglePlay()
	pb.Reset()
	require.False(t, pb.Playing())
	require.Zero(t, pb.Time())
}

func TestPlaybackSpeedClamp(t *testing.T) {
	pb := NewPlaybackState(1, clock.NewMock())
	pb.SetSpeed(100)
	require.Equal(t, float64(maxSpeed), pb.Speed())
	pb.SetSpeed(0)
	require.Equal(t, float64(minSpeed), pb.Speed())
	require.Zero(t, NewPlaybackState(0, nil).Progress())
}
