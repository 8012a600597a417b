package core

import "fmt"

// Cell is a grid coordinate. X grows to the right, Y grows downward.
type Cell struct {
	X, Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Grid is an immutable 4-connected occupancy grid. Cells are addressed
// either by Cell or by their location index Y*Width+X.
type Grid struct {
	Width, Height int

	blocked   []bool
	neighbors [][]int
	free      int
}

// NewGrid builds a grid of the given size with the listed cells blocked.
// Obstacles outside the grid are ignored.
func NewGrid(width, height int, obstacles []Cell) *Grid {
	g := &Grid{
		Width:   width,
		Height:  height,
		blocked: make([]bool, width*height),
	}
	for _, c := range obstacles {
		if g.InBounds(c) {
			g.blocked[g.Loc(c)] = true
		}
	}

	g.neighbors = make([][]int, len(g.blocked))
	for loc := range g.blocked {
		if g.blocked[loc] {
			continue
		}
		g.free++
		c := g.Cell(loc)
		for _, d := range moves {
			n := Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if g.InBounds(n) && !g.blocked[g.Loc(n)] {
				g.neighbors[loc] = append(g.neighbors[loc], g.Loc(n))
			}
		}
	}
	return g
}

// moves lists the four cardinal directions.
var moves = [4]Cell{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// Size returns the number of cells, free or blocked.
func (g *Grid) Size() int { return len(g.blocked) }

// FreeCells returns the number of traversable cells.
func (g *Grid) FreeCells() int { return g.free }

// Loc converts a cell to its location index.
func (g *Grid) Loc(c Cell) int { return c.Y*g.Width + c.X }

// Cell converts a location index back to a cell.
func (g *Grid) Cell(loc int) Cell { return Cell{X: loc % g.Width, Y: loc / g.Width} }

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Blocked reports whether the location is an obstacle.
func (g *Grid) Blocked(loc int) bool { return g.blocked[loc] }

// Neighbors returns the free 4-neighbours of a free location.
// The returned slice is shared and must not be modified.
func (g *Grid) Neighbors(loc int) []int { return g.neighbors[loc] }

// Degree returns the number of free neighbours.
func (g *Grid) Degree(loc int) int { return len(g.neighbors[loc]) }

// Adjacent reports whether a single move (or a wait) leads from a to b.
func (g *Grid) Adjacent(a, b int) bool {
	if a == b {
		return true
	}
	for _, n := range g.neighbors[a] {
		if n == b {
			return true
		}
	}
	return false
}

// Manhattan returns the obstacle-free distance between two locations.
func (g *Grid) Manhattan(a, b int) int {
	ca, cb := g.Cell(a), g.Cell(b)
	return abs(ca.X-cb.X) + abs(ca.Y-cb.Y)
}

// BFS returns the shortest distance from src to every location, or -1 for
// unreachable ones. Locations for which skip returns true are treated as
// obstacles; skip may be nil.
func (g *Grid) BFS(src int, skip func(loc int) bool) []int {
	dist := make([]int, len(g.blocked))
	for i := range dist {
		dist[i] = -1
	}
	if g.blocked[src] || (skip != nil && skip(src)) {
		return dist
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.neighbors[cur] {
			if dist[n] >= 0 || (skip != nil && skip(n)) {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return dist
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
