// Package sim executes grid plans step by step and validates them:
// every agent starts and ends at its own cells, moves only between
// adjacent free cells, and never collides with another agent.
package sim

import (
	"fmt"
	"strings"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"go.uber.org/multierr"
)

// Collision is a vertex or edge collision between two agents. For edge
// collisions Cell and Other are the swapped cells.
type Collision struct {
	T      int
	A1, A2 int
	Edge   bool
	Cell   core.Cell
	Other  core.Cell
}

func (c Collision) String() string {
	if c.Edge {
		return fmt.Sprintf("agents %d and %d swap %v and %v at t=%d", c.A1, c.A2, c.Cell, c.Other, c.T)
	}
	return fmt.Sprintf("agents %d and %d meet at %v at t=%d", c.A1, c.A2, c.Cell, c.T)
}

// Report is the outcome of validating a plan.
type Report struct {
	Metrics    Metrics
	Collisions []Collision
	Problems   []string
}

// Valid reports whether the plan has neither collisions nor problems.
func (r *Report) Valid() bool { return len(r.Collisions) == 0 && len(r.Problems) == 0 }

// Validate checks paths against inst. The report is always returned; the
// error is ErrInvalidSchedule listing every problem when the plan is not
// valid.
func Validate(inst *core.Instance, paths []core.Path) (*Report, error) {
	r := &Report{}
	var errs error
	if len(paths) != len(inst.Agents) {
		errs = multierr.Append(errs, fmt.Errorf("plan has %d paths for %d agents", len(paths), len(inst.Agents)))
	}
	shapeOK := errs == nil
	for i := 0; i < len(paths) && i < len(inst.Agents); i++ {
		err := checkPath(inst, i, paths[i])
		if err != nil {
			shapeOK = false
		}
		errs = multierr.Append(errs, err)
	}
	for _, err := range multierr.Errors(errs) {
		r.Problems = append(r.Problems, err.Error())
	}

	if shapeOK {
		r.Collisions = collisions(inst.Grid, paths)
		r.Metrics = measure(paths, len(r.Collisions))
		for _, c := range r.Collisions {
			errs = multierr.Append(errs, fmt.Errorf("%s", c))
		}
	}
	if errs == nil {
		return r, nil
	}

	msgs := make([]string, 0, len(multierr.Errors(errs)))
	for _, err := range multierr.Errors(errs) {
		msgs = append(msgs, err.Error())
	}
	return r, errors.ErrInvalidSchedule.GenWithStackByArgs(strings.Join(msgs, "; "))
}

func checkPath(inst *core.Instance, i int, p core.Path) error {
	g := inst.Grid
	if len(p) == 0 {
		return fmt.Errorf("agent %d has an empty path", i)
	}
	var errs error
	for t, loc := range p {
		if loc < 0 || loc >= g.Size() || g.Blocked(loc) {
			errs = multierr.Append(errs, fmt.Errorf("agent %d is on an invalid cell at t=%d", i, t))
			return errs
		}
		if t > 0 && loc != p[t-1] && !g.Adjacent(p[t-1], loc) {
			errs = multierr.Append(errs, fmt.Errorf("agent %d jumps from %v to %v at t=%d", i, g.Cell(p[t-1]), g.Cell(loc), t))
		}
	}
	if p[0] != inst.StartLoc(i) {
		errs = multierr.Append(errs, fmt.Errorf("agent %d starts at %v instead of %v", i, g.Cell(p[0]), inst.Agents[i].Start))
	}
	if last := p[len(p)-1]; last != inst.GoalLoc(i) {
		errs = multierr.Append(errs, fmt.Errorf("agent %d ends at %v instead of %v", i, g.Cell(last), inst.Agents[i].Goal))
	}
	return errs
}

func collisions(g *core.Grid, paths []core.Path) []Collision {
	var out []Collision
	for _, c := range algo.FindConflicts(paths) {
		col := Collision{T: c.T, A1: min(c.A1, c.A2), A2: max(c.A1, c.A2), Cell: g.Cell(c.Loc1)}
		if c.Type == algo.EdgeConflict {
			col.Edge = true
			col.Other = g.Cell(c.Loc2)
		}
		out = append(out, col)
	}
	return out
}
