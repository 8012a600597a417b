// Package state holds the viewer state: the instance, the plan being
// played back and the progress of a running search.
package state

import (
	"math"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/sim"
)

// Pos is a position in cell units. Cell (x, y) has its center at (x, y).
type Pos struct {
	X, Y float64
}

func posOf(c core.Cell) Pos { return Pos{X: float64(c.X), Y: float64(c.Y)} }

func lerp(a, b Pos, alpha float64) Pos {
	return Pos{X: a.X + alpha*(b.X-a.X), Y: a.Y + alpha*(b.Y-a.Y)}
}

// State is everything the widgets draw.
type State struct {
	Instance *core.Instance
	Playback *PlaybackState
	Search   *SearchState

	mu         sync.Mutex
	paths      []core.Path
	collisions []sim.Collision
	cost       int
}

// NewState creates the state for inst. paths may be nil while a search
// is still running.
func NewState(inst *core.Instance, paths []core.Path, clk clock.Clock) *State {
	s := &State{
		Instance: inst,
		Playback: NewPlaybackState(0, clk),
		Search:   NewSearchState(),
	}
	if paths != nil {
		s.SetPlan(paths)
	}
	return s
}

// SetPlan replaces the plan and rewinds playback.
func (s *State) SetPlan(paths []core.Path) {
	sm := sim.NewSimulator(s.Instance, paths, nil)
	var cols []sim.Collision
	for _, f := range sm.Frames() {
		cols = append(cols, f.Collisions...)
	}

	s.mu.Lock()
	s.paths = paths
	s.collisions = cols
	s.cost = sm.Metrics().Cost
	s.mu.Unlock()

	s.Playback.SetMaxTime(float64(sm.Horizon()))
	s.Playback.Reset()
}

// HasPlan reports whether a plan is loaded.
func (s *State) HasPlan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths != nil
}

// Cost returns the sum of costs of the plan.
func (s *State) Cost() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cost
}

// Collisions returns every collision of the plan.
func (s *State) Collisions() []sim.Collision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collisions
}

// CurrentPositions returns the interpolated agent positions at the
// playback time. Without a plan agents stand on their starts.
func (s *State) CurrentPositions() []Pos {
	t := s.Playback.Time()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Pos, len(s.Instance.Agents))
	for i, a := range s.Instance.Agents {
		if s.paths == nil {
			out[i] = posOf(a.Start)
			continue
		}
		out[i] = s.positionAt(s.paths[i], t)
	}
	return out
}

func (s *State) positionAt(p core.Path, t float64) Pos {
	g := s.Instance.Grid
	step := int(math.Floor(t))
	if step < 0 {
		step = 0
	}
	from := posOf(g.Cell(p.At(step)))
	to := posOf(g.Cell(p.At(step + 1)))
	return lerp(from, to, t-float64(step))
}

// PathHistory returns the cells agent i has visited up to the playback
// time, ending at its current position.
func (s *State) PathHistory(i int) []Pos {
	t := s.Playback.Time()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths == nil {
		return nil
	}

	p := s.paths[i]
	var out []Pos
	for step := 0; step < len(p) && float64(step) <= t; step++ {
		out = append(out, posOf(s.Instance.Grid.Cell(p[step])))
	}
	return append(out, s.positionAt(p, t))
}

// FuturePath returns the current position of agent i followed by the
// cells it has yet to enter.
func (s *State) FuturePath(i int) []Pos {
	t := s.Playback.Time()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths == nil {
		return nil
	}

	p := s.paths[i]
	out := []Pos{s.positionAt(p, t)}
	for step := int(math.Floor(t)) + 1; step < len(p); step++ {
		out = append(out, posOf(s.Instance.Grid.Cell(p[step])))
	}
	return out
}

// ActiveCollisions returns the collisions within half a timestep of the
// playback time.
func (s *State) ActiveCollisions() []sim.Collision {
	t := s.Playback.Time()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []sim.Collision
	for _, c := range s.collisions {
		if math.Abs(float64(c.T)-t) <= 0.5 {
			out = append(out, c)
		}
	}
	return out
}

// Arrived reports whether agent i has reached its goal for good.
func (s *State) Arrived(i int) bool {
	t := s.Playback.Time()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths != nil && t >= float64(s.paths[i].Cost())
}
