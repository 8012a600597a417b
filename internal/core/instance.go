package core

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
)

// Instance is a MAPF problem: a grid and a list of agents.
type Instance struct {
	Grid   *Grid
	Agents []Agent
}

// NewInstance creates an instance without agents.
func NewInstance(g *Grid) *Instance {
	return &Instance{Grid: g}
}

// StartLoc returns the start location index of agent i.
func (inst *Instance) StartLoc(i int) int { return inst.Grid.Loc(inst.Agents[i].Start) }

// GoalLoc returns the goal location index of agent i.
func (inst *Instance) GoalLoc(i int) int { return inst.Grid.Loc(inst.Agents[i].Goal) }

// Validate checks that every start and goal is a free in-bounds cell and
// that no two agents share a start or a goal. All problems are reported.
func (inst *Instance) Validate() error {
	if inst.Grid == nil || inst.Grid.Width <= 0 || inst.Grid.Height <= 0 {
		return errors.ErrInvalidInstance.GenWithStackByArgs("grid must have positive dimensions")
	}

	var errs error
	starts := make(map[Cell]int)
	goals := make(map[Cell]int)
	for i, a := range inst.Agents {
		errs = multierr.Append(errs, inst.checkCell(i, "start", a.Start))
		errs = multierr.Append(errs, inst.checkCell(i, "goal", a.Goal))
		if j, ok := starts[a.Start]; ok {
			errs = multierr.Append(errs, fmt.Errorf("agents %d and %d share start %v", j, i, a.Start))
		}
		if j, ok := goals[a.Goal]; ok {
			errs = multierr.Append(errs, fmt.Errorf("agents %d and %d share goal %v", j, i, a.Goal))
		}
		starts[a.Start] = i
		goals[a.Goal] = i
	}
	if errs == nil {
		return nil
	}

	msgs := make([]string, 0, len(multierr.Errors(errs)))
	for _, err := range multierr.Errors(errs) {
		msgs = append(msgs, err.Error())
	}
	return errors.ErrInvalidInstance.GenWithStackByArgs(strings.Join(msgs, "; "))
}

func (inst *Instance) checkCell(agent int, what string, c Cell) error {
	if !inst.Grid.InBounds(c) {
		return fmt.Errorf("agent %d %s %v is outside the %dx%d grid", agent, what, c, inst.Grid.Width, inst.Grid.Height)
	}
	if inst.Grid.Blocked(inst.Grid.Loc(c)) {
		return fmt.Errorf("agent %d %s %v is an obstacle", agent, what, c)
	}
	return nil
}
