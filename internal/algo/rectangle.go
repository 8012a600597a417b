package algo

import (
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

// orientation returns the sign d in {+1,-1} along one axis such that both
// agents move monotonically in direction d from start through v to goal,
// or 0 if no such sign exists.
func orientation(s1, s2, v, g1, g2 int) int {
	for _, d := range [2]int{1, -1} {
		if d*(v-s1) >= 0 && d*(v-s2) >= 0 && d*(g1-v) >= 0 && d*(g2-v) >= 0 {
			return d
		}
	}
	return 0
}

// rectangle tries to turn a vertex conflict into a rectangle conflict.
//
// Both agents must reach the conflict cell on a Manhattan-shortest route
// from their starts, move into the same quadrant, and enter the rectangle
// spanned by start and goal corners from different sides. Then any two
// paths that cross the two exit borders at their earliest possible times
// collide inside the rectangle, so it suffices to forbid the first agent
// its exit border or the second agent its own. Barrier constraints that
// the current paths do not violate are rejected, which keeps branching
// strictly productive.
func rectangle(inst *core.Instance, c *Conflict, paths []core.Path) (*Conflict, bool) {
	if c.Type != VertexConflict {
		return nil, false
	}
	g := inst.Grid
	v := g.Cell(c.Loc1)
	s1, s2 := inst.Agents[c.A1].Start, inst.Agents[c.A2].Start
	g1, g2 := inst.Agents[c.A1].Goal, inst.Agents[c.A2].Goal
	if manhattan(s1, v) != c.T || manhattan(s2, v) != c.T {
		return nil, false
	}

	dx := orientation(s1.X, s2.X, v.X, g1.X, g2.X)
	dy := orientation(s1.Y, s2.Y, v.Y, g1.Y, g2.Y)
	if dx == 0 || dy == 0 {
		return nil, false
	}
	// oriented coordinates in which both agents move towards +u, +w
	u := func(p core.Cell) int { return dx * p.X }
	w := func(p core.Cell) int { return dy * p.Y }
	back := func(pu, pw int) core.Cell { return core.Cell{X: dx * pu, Y: dy * pw} }

	if (u(s1)-u(s2))*(w(s1)-w(s2)) >= 0 {
		return nil, false
	}

	// agent a enters above the rectangle, agent b to its left
	a, b := c.A1, c.A2
	sa, sb, ga, gb := s1, s2, g1, g2
	if u(s1) < u(s2) {
		a, b = b, a
		sa, sb, ga, gb = s2, s1, g2, g1
	}
	rsU, rsW := u(sa), w(sb)
	rgU, rgW := min(u(ga), u(gb)), min(w(ga), w(gb))
	if rgU < rsU || rgW < rsW || u(v) < rsU || u(v) > rgU || w(v) < rsW || w(v) > rgW {
		return nil, false
	}

	var barrierA, barrierB []Constraint
	hitA, hitB := false, false
	for pu := rsU; pu <= rgU; pu++ {
		cell := back(pu, rgW)
		loc := g.Loc(cell)
		if g.Blocked(loc) {
			continue
		}
		t := manhattan(sa, cell)
		barrierA = append(barrierA, Vertex(a, loc, t))
		hitA = hitA || paths[a].At(t) == loc
	}
	for pw := rsW; pw <= rgW; pw++ {
		cell := back(rgU, pw)
		loc := g.Loc(cell)
		if g.Blocked(loc) {
			continue
		}
		t := manhattan(sb, cell)
		barrierB = append(barrierB, Vertex(b, loc, t))
		hitB = hitB || paths[b].At(t) == loc
	}
	if !hitA || !hitB {
		return nil, false
	}

	// A barrier blocks every optimal path of its agent when the agent is
	// on a shortest unconstrained route and its goal lies on the border line.
	cardA := u(ga) == rgU && paths[a].Cost() == manhattan(sa, ga)
	cardB := w(gb) == rgW && paths[b].Cost() == manhattan(sb, gb)
	card := cardinalityOf(cardA, cardB)
	if card == NonCardinal {
		return nil, false
	}

	r := *c
	r.Type = RectangleConflict
	if card < r.Cardinality || r.Cardinality == Unclassified {
		r.Cardinality = card
	}
	if a == c.A1 {
		r.Constraints1, r.Constraints2 = barrierA, barrierB
	} else {
		r.Constraints1, r.Constraints2 = barrierB, barrierA
	}
	return &r, true
}

func manhattan(a, b core.Cell) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
