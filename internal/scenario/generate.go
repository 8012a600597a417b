package scenario

import (
	"fmt"
	"math/rand"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
)

// RandomWalkSteps is the default walk length used to place a goal.
const RandomWalkSteps = 100000

// Params controls instance generation. A positive WarehouseWidth selects
// the warehouse layout; otherwise obstacles are scattered at
// ObstacleRatio and goals are placed by a random walk from each start.
type Params struct {
	Seed           int64
	Width, Height  int
	Agents         int
	ObstacleRatio  float64
	WarehouseWidth int
	WalkSteps      int
}

// Generate builds a valid instance from p. The same parameters always
// produce the same instance.
func Generate(p Params) (*core.Instance, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs(fmt.Sprintf("map dimensions %dx%d must be positive", p.Width, p.Height))
	}
	if p.Agents < 0 || p.ObstacleRatio < 0 || p.ObstacleRatio >= 1 || p.WarehouseWidth < 0 {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs("agents, obstacle ratio and warehouse width must be non-negative, obstacle ratio below 1")
	}
	rng := rand.New(rand.NewSource(p.Seed))
	if p.WarehouseWidth > 0 {
		return warehouse(rng, p)
	}
	return randomWalk(rng, p)
}

func randomWalk(rng *rand.Rand, p Params) (*core.Instance, error) {
	var obstacles []core.Cell
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if rng.Float64() < p.ObstacleRatio {
				obstacles = append(obstacles, core.Cell{X: x, Y: y})
			}
		}
	}
	g := core.NewGrid(p.Width, p.Height, obstacles)
	if g.FreeCells() < p.Agents {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs(fmt.Sprintf("cannot place %d agents on %d free cells", p.Agents, g.FreeCells()))
	}

	steps := p.WalkSteps
	if steps <= 0 {
		steps = RandomWalkSteps
	}
	free := freeCells(g)
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	inst := core.NewInstance(g)
	goals := make(map[int]bool)
	for _, start := range free {
		if len(inst.Agents) == p.Agents {
			break
		}
		goal, ok := walk(rng, g, start, steps, goals)
		if !ok {
			continue
		}
		goals[goal] = true
		inst.AddAgent(g.Cell(start), g.Cell(goal))
	}
	if len(inst.Agents) < p.Agents {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs(fmt.Sprintf("placed %d of %d agents", len(inst.Agents), p.Agents))
	}
	return inst, nil
}

// walk takes random steps from start and returns the first cell reached
// after the walk that is not already a goal. Isolated cells fail.
func walk(rng *rand.Rand, g *core.Grid, start, steps int, taken map[int]bool) (int, bool) {
	loc := start
	if g.Degree(loc) == 0 {
		return loc, !taken[loc]
	}
	for i := 0; i < steps || taken[loc]; i++ {
		if i >= 2*steps {
			return 0, false
		}
		nbrs := g.Neighbors(loc)
		loc = nbrs[rng.Intn(len(nbrs))]
	}
	return loc, true
}

func warehouse(rng *rand.Rand, p Params) (*core.Instance, error) {
	ww := p.WarehouseWidth
	if 2*ww+3 > p.Width {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs(fmt.Sprintf("warehouse width %d leaves no storage area in a %d wide map", ww, p.Width))
	}

	// Shelves fill odd rows of the storage area with an aisle every
	// shelfLength cells. Even rows and the border bands stay free.
	const shelfLength = 5
	var obstacles []core.Cell
	for y := 1; y < p.Height-1; y += 2 {
		for x := ww + 1; x < p.Width-ww-1; x++ {
			if (x-ww)%(shelfLength+1) != 0 {
				obstacles = append(obstacles, core.Cell{X: x, Y: y})
			}
		}
	}
	g := core.NewGrid(p.Width, p.Height, obstacles)

	var left, right []int
	for y := 0; y < p.Height; y++ {
		for x := 0; x < ww; x++ {
			left = append(left, g.Loc(core.Cell{X: x, Y: y}))
			right = append(right, g.Loc(core.Cell{X: p.Width - 1 - x, Y: y}))
		}
	}
	if p.Agents > len(left) {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs(fmt.Sprintf("cannot place %d agents in two bands of %d cells", p.Agents, len(left)))
	}
	shuffle := func(s []int) { rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] }) }
	leftStarts, rightStarts := append([]int(nil), left...), append([]int(nil), right...)
	leftGoals, rightGoals := append([]int(nil), left...), append([]int(nil), right...)
	shuffle(leftStarts)
	shuffle(rightStarts)
	shuffle(leftGoals)
	shuffle(rightGoals)

	// Even agents cross left to right, odd agents right to left.
	inst := core.NewInstance(g)
	for i := 0; i < p.Agents; i++ {
		k := i / 2
		if i%2 == 0 {
			inst.AddAgent(g.Cell(leftStarts[k]), g.Cell(rightGoals[k]))
		} else {
			inst.AddAgent(g.Cell(rightStarts[k]), g.Cell(leftGoals[k]))
		}
	}
	return inst, nil
}

func freeCells(g *core.Grid) []int {
	out := make([]int, 0, g.FreeCells())
	for loc := 0; loc < g.Size(); loc++ {
		if !g.Blocked(loc) {
			out = append(out, loc)
		}
	}
	return out
}
