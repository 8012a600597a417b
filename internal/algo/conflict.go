package algo

import (
	"fmt"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

// ConflictType is the geometry of a conflict.
type ConflictType uint8

const (
	// VertexConflict: both agents occupy Loc1 at T.
	VertexConflict ConflictType = iota
	// EdgeConflict: A1 moves Loc1->Loc2 while A2 moves Loc2->Loc1, arriving at T.
	EdgeConflict
	// TargetConflict: A1 has settled on its goal Loc1 and A2 is there at T.
	TargetConflict
	// RectangleConflict: a vertex conflict resolved by barrier constraints.
	RectangleConflict
	// CorridorConflict: a conflict inside a corridor resolved by range constraints.
	CorridorConflict
)

func (t ConflictType) String() string {
	switch t {
	case VertexConflict:
		return "vertex"
	case EdgeConflict:
		return "edge"
	case TargetConflict:
		return "target"
	case RectangleConflict:
		return "rectangle"
	case CorridorConflict:
		return "corridor"
	}
	return "unknown"
}

// rank orders geometries for selection: symmetry reasoning first, then
// target conflicts, then plain vertex and edge conflicts.
func (t ConflictType) rank() int {
	switch t {
	case RectangleConflict, CorridorConflict:
		return 0
	case TargetConflict:
		return 1
	}
	return 2
}

// Cardinality says for how many of the two agents every optimal path
// contains the conflicting event.
type Cardinality uint8

const (
	// Cardinal: resolving the conflict raises the cost.
	Cardinal Cardinality = iota
	// SemiCardinal: unavoidable for exactly one agent.
	SemiCardinal
	// NonCardinal: avoidable for both agents.
	NonCardinal
	// Unclassified: cardinality was not computed.
	Unclassified
)

func (c Cardinality) String() string {
	switch c {
	case Cardinal:
		return "cardinal"
	case SemiCardinal:
		return "semi-cardinal"
	case NonCardinal:
		return "non-cardinal"
	}
	return "unclassified"
}

func cardinalityOf(first, second bool) Cardinality {
	switch {
	case first && second:
		return Cardinal
	case first || second:
		return SemiCardinal
	}
	return NonCardinal
}

// Conflict is a collision between two agents together with the two
// constraint sets that branching adds, one per child.
type Conflict struct {
	A1, A2      int
	Type        ConflictType
	Cardinality Cardinality
	Loc1, Loc2  int
	T           int

	Constraints1 []Constraint
	Constraints2 []Constraint
}

func (c *Conflict) String() string {
	switch c.Type {
	case EdgeConflict:
		return fmt.Sprintf("%s %s a%d/a%d %d<->%d @%d", c.Cardinality, c.Type, c.A1, c.A2, c.Loc1, c.Loc2, c.T)
	}
	return fmt.Sprintf("%s %s a%d/a%d %d @%d", c.Cardinality, c.Type, c.A1, c.A2, c.Loc1, c.T)
}

// naive fills in the standard constraints that forbid each agent its
// part of the event.
func (c *Conflict) naive() {
	switch c.Type {
	case EdgeConflict:
		c.Constraints1 = []Constraint{Edge(c.A1, c.Loc1, c.Loc2, c.T)}
		c.Constraints2 = []Constraint{Edge(c.A2, c.Loc2, c.Loc1, c.T)}
	default:
		c.Constraints1 = []Constraint{Vertex(c.A1, c.Loc1, c.T)}
		c.Constraints2 = []Constraint{Vertex(c.A2, c.Loc1, c.T)}
	}
}

// targetSplit replaces the constraints of a target conflict: either the
// settled agent arrives for good after T, or the other agent stays off the
// goal from T on.
func (c *Conflict) targetSplit() {
	c.Constraints1 = []Constraint{Length(c.A1, c.T)}
	c.Constraints2 = []Constraint{Range(c.A2, c.Loc1, c.T, Forever)}
}

// better reports whether a should be resolved before b.
func better(a, b *Conflict, prioritize bool) bool {
	if prioritize {
		if a.Cardinality != b.Cardinality {
			return a.Cardinality < b.Cardinality
		}
		if ra, rb := a.Type.rank(), b.Type.rank(); ra != rb {
			return ra < rb
		}
	}
	if a.T != b.T {
		return a.T < b.T
	}
	if a.A1 != b.A1 {
		return a.A1 < b.A1
	}
	if a.A2 != b.A2 {
		return a.A2 < b.A2
	}
	return a.Type < b.Type
}

// pairConflicts returns every vertex, edge and target conflict between
// the paths of agents i and j, in time order.
func pairConflicts(i, j int, pi, pj core.Path) []*Conflict {
	var out []*Conflict
	ci, cj := pi.Cost(), pj.Cost()
	horizon := max(ci, cj)
	for t := 0; t <= horizon; t++ {
		li, lj := pi.At(t), pj.At(t)
		if li == lj {
			c := &Conflict{A1: i, A2: j, Type: VertexConflict, Loc1: li, Loc2: -1, T: t, Cardinality: Unclassified}
			switch {
			case t >= ci:
				c.Type = TargetConflict
			case t >= cj:
				c.Type = TargetConflict
				c.A1, c.A2 = j, i
			}
			out = append(out, c)
			continue
		}
		if t > 0 {
			pi0, pj0 := pi.At(t-1), pj.At(t-1)
			if pi0 == lj && pj0 == li {
				out = append(out, &Conflict{A1: i, A2: j, Type: EdgeConflict, Loc1: pi0, Loc2: li, T: t, Cardinality: Unclassified})
			}
		}
	}
	return out
}

// FindConflicts returns every pairwise conflict of a set of paths with
// the standard constraints filled in.
func FindConflicts(paths []core.Path) []*Conflict {
	var out []*Conflict
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			for _, c := range pairConflicts(i, j, paths[i], paths[j]) {
				c.naive()
				out = append(out, c)
			}
		}
	}
	return out
}

// unavoidable reports whether every path of m contains the part of c that
// belongs to the agent in the given role (1 or 2).
func unavoidable(m *MDD, c *Conflict, role int) bool {
	switch c.Type {
	case EdgeConflict:
		from, to := c.Loc1, c.Loc2
		if role == 2 {
			from, to = to, from
		}
		a, okA := m.Singleton(c.T - 1)
		b, okB := m.Singleton(c.T)
		return okA && okB && a == from && b == to
	case TargetConflict:
		if role == 1 {
			return true
		}
	}
	loc, ok := m.Singleton(c.T)
	return ok && loc == c.Loc1
}
