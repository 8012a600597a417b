package core

import "time"

// Path is the sequence of locations an agent occupies, one per timestep
// starting at 0. The last entry is the goal, held forever after.
type Path []int

// Cost returns the arrival time at the goal.
func (p Path) Cost() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// At returns the location at timestep t, holding the last entry.
func (p Path) At(t int) int {
	if t >= len(p) {
		return p[len(p)-1]
	}
	return p[t]
}

// Cells converts the path to grid coordinates.
func (p Path) Cells(g *Grid) []Cell {
	cells := make([]Cell, len(p))
	for i, loc := range p {
		cells[i] = g.Cell(loc)
	}
	return cells
}

// Stats summarizes the effort of one search.
type Stats struct {
	NodesGenerated   int
	NodesExpanded    int
	LowLevelCalls    int
	LowLevelExpanded int
	MDDsBuilt        int
	MDDCacheHits     int
	PairSearches     int
	// DeadNodes counts children dropped because a pair of their agents
	// had no conflict-free plan left.
	DeadNodes        int

	RectangleSplits int
	CorridorSplits  int
	TargetSplits    int

	RootCost       int
	RootLowerBound int
	LowerBound     int
	Runtime        time.Duration
}

// Solution is a complete plan, or the partial result of a failed search
// when Feasible is false.
type Solution struct {
	Paths    []Path
	Cost     int
	Makespan int
	Feasible bool
	Stats    Stats
}

// NewSolution builds a feasible solution and computes its cost and makespan.
func NewSolution(paths []Path) *Solution {
	s := &Solution{Paths: paths, Feasible: true}
	for _, p := range paths {
		s.Cost += p.Cost()
		if p.Cost() > s.Makespan {
			s.Makespan = p.Cost()
		}
	}
	return s
}
