package sim

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"go.uber.org/zap"
)

// Metrics summarizes a plan.
type Metrics struct {
	Cost       int `json:"cost"`
	Makespan   int `json:"makespan"`
	Moves      int `json:"moves"`
	Waits      int `json:"waits"`
	Collisions int `json:"collisions"`
}

func measure(paths []core.Path, collisions int) Metrics {
	m := Metrics{Collisions: collisions}
	for _, p := range paths {
		m.Cost += p.Cost()
		m.Makespan = max(m.Makespan, p.Cost())
		for t := 1; t < len(p); t++ {
			if p[t] == p[t-1] {
				m.Waits++
			} else {
				m.Moves++
			}
		}
	}
	return m
}

// Frame is the state of the plan at one timestep.
type Frame struct {
	T          int
	Cells      []core.Cell
	Collisions []Collision
}

// Simulator plays a validated plan back one timestep at a time.
type Simulator struct {
	mu sync.Mutex

	inst   *core.Instance
	paths  []core.Path
	logger *zap.Logger

	t       int
	horizon int
	byTime  map[int][]Collision
	metrics Metrics
}

// NewSimulator prepares the playback of paths, which must have passed
// Validate apart from collisions.
func NewSimulator(inst *core.Instance, paths []core.Path, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cols := collisions(inst.Grid, paths)
	s := &Simulator{
		inst:    inst,
		paths:   paths,
		logger:  logger,
		byTime:  make(map[int][]Collision),
		metrics: measure(paths, len(cols)),
	}
	s.horizon = s.metrics.Makespan
	for _, c := range cols {
		s.byTime[c.T] = append(s.byTime[c.T], c)
	}
	return s
}

// Horizon returns the last timestep of the plan.
func (s *Simulator) Horizon() int { return s.horizon }

// FrameAt returns the state at timestep t. Agents that have arrived stay
// on their goal.
func (s *Simulator) FrameAt(t int) Frame {
	f := Frame{T: t, Cells: make([]core.Cell, len(s.paths)), Collisions: s.byTime[t]}
	for i, p := range s.paths {
		f.Cells[i] = s.inst.Grid.Cell(p.At(t))
	}
	return f
}

// Step advances the playback and returns the new frame, or false once
// the plan is over.
func (s *Simulator) Step() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t >= s.horizon {
		return Frame{}, false
	}
	s.t++
	f := s.FrameAt(s.t)
	for _, c := range f.Collisions {
		s.logger.Warn("collision", zap.Int("t", c.T), zap.Int("agent1", c.A1), zap.Int("agent2", c.A2), zap.Stringer("cell", c.Cell))
	}
	return f, true
}

// Run plays the whole plan back and returns its metrics.
func (s *Simulator) Run(ctx context.Context) (Metrics, error) {
	for {
		if err := ctx.Err(); err != nil {
			return s.Metrics(), err
		}
		if _, ok := s.Step(); !ok {
			break
		}
	}
	s.logger.Info("plan executed",
		zap.Int("cost", s.metrics.Cost),
		zap.Int("makespan", s.metrics.Makespan),
		zap.Int("collisions", s.metrics.Collisions))
	return s.Metrics(), nil
}

// Frames returns every frame from t=0 to the horizon.
func (s *Simulator) Frames() []Frame {
	frames := make([]Frame, 0, s.horizon+1)
	for t := 0; t <= s.horizon; t++ {
		frames = append(frames, s.FrameAt(t))
	}
	return frames
}

// Time returns the current playback timestep.
func (s *Simulator) Time() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

// Metrics returns the plan metrics.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes the metrics to a JSON file.
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
