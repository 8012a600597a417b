package algo

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/google/btree"
)

// Forever is the open end of a Range constraint.
const Forever = math.MaxInt32

// ConstraintKind selects how a Constraint restricts its agent.
type ConstraintKind uint8

const (
	// VertexConstraint forbids Loc at timestep T.
	VertexConstraint ConstraintKind = iota
	// EdgeConstraint forbids moving Loc->To arriving at timestep T.
	EdgeConstraint
	// RangeConstraint forbids Loc during [T, EndT].
	RangeConstraint
	// LengthConstraint requires the final arrival at the goal after T.
	LengthConstraint
)

func (k ConstraintKind) String() string {
	switch k {
	case VertexConstraint:
		return "vertex"
	case EdgeConstraint:
		return "edge"
	case RangeConstraint:
		return "range"
	case LengthConstraint:
		return "length"
	}
	return "unknown"
}

// Constraint is an immutable prohibition on one agent.
type Constraint struct {
	Kind  ConstraintKind
	Agent int
	Loc   int
	To    int
	T     int
	EndT  int
}

// Vertex returns a vertex constraint.
func Vertex(agent, loc, t int) Constraint {
	return Constraint{Kind: VertexConstraint, Agent: agent, Loc: loc, To: -1, T: t, EndT: t}
}

// Edge returns an edge constraint for the move from -> to arriving at t.
func Edge(agent, from, to, t int) Constraint {
	return Constraint{Kind: EdgeConstraint, Agent: agent, Loc: from, To: to, T: t, EndT: t}
}

// Range returns a constraint forbidding loc during [from, to].
func Range(agent, loc, from, to int) Constraint {
	return Constraint{Kind: RangeConstraint, Agent: agent, Loc: loc, To: -1, T: from, EndT: to}
}

// Length returns a constraint forcing the agent to reach its goal for the
// last time strictly after t.
func Length(agent, t int) Constraint {
	return Constraint{Kind: LengthConstraint, Agent: agent, Loc: -1, To: -1, T: t, EndT: t}
}

func (c Constraint) String() string {
	switch c.Kind {
	case EdgeConstraint:
		return fmt.Sprintf("<a%d %d->%d @%d>", c.Agent, c.Loc, c.To, c.T)
	case RangeConstraint:
		if c.EndT == Forever {
			return fmt.Sprintf("<a%d %d @[%d,inf)>", c.Agent, c.Loc, c.T)
		}
		return fmt.Sprintf("<a%d %d @[%d,%d]>", c.Agent, c.Loc, c.T, c.EndT)
	case LengthConstraint:
		return fmt.Sprintf("<a%d len>%d>", c.Agent, c.T)
	}
	return fmt.Sprintf("<a%d %d @%d>", c.Agent, c.Loc, c.T)
}

func constraintLess(a, b Constraint) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Loc != b.Loc {
		return a.Loc < b.Loc
	}
	if a.To != b.To {
		return a.To < b.To
	}
	if a.T != b.T {
		return a.T < b.T
	}
	return a.EndT < b.EndT
}

// canonical sorts a copy of cons and encodes it. Two constraint sets with
// the same members give the same bytes regardless of insertion order.
func canonical(cons []Constraint) []byte {
	sorted := append([]Constraint(nil), cons...)
	sort.Slice(sorted, func(i, j int) bool { return constraintLess(sorted[i], sorted[j]) })

	buf := make([]byte, 0, len(sorted)*17)
	var prev *Constraint
	for i := range sorted {
		c := &sorted[i]
		if prev != nil && *prev == *c {
			continue
		}
		buf = append(buf, byte(c.Kind))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Loc))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.To))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.T))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.EndT))
		prev = c
	}
	return buf
}

// Fingerprint hashes the canonical form of an agent's constraint set.
func Fingerprint(cons []Constraint) uint64 {
	return xxhash.Sum64(canonical(cons))
}

// tableItem is one forbidden interval on a vertex or edge key.
type tableItem struct {
	key        int
	start, end int
}

func tableItemLess(a, b tableItem) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	if a.start != b.start {
		return a.start < b.start
	}
	return a.end < b.end
}

// ConstraintTable is the compiled constraint set of one agent. Entries are
// kept in a B-tree ordered by (key, start) so a lookup only visits the
// intervals of one vertex or edge.
type ConstraintTable struct {
	numCells int
	tree     *btree.BTreeG[tableItem]

	// lengthMin is the latest timestep at which the agent may not have
	// settled at its goal, -1 when unconstrained.
	lengthMin int
	// maxT is the largest finite timestep mentioned by any constraint.
	maxT int
}

// NewConstraintTable compiles cons for a grid of numCells locations.
func NewConstraintTable(numCells int, cons []Constraint) *ConstraintTable {
	ct := &ConstraintTable{
		numCells:  numCells,
		tree:      btree.NewG[tableItem](8, tableItemLess),
		lengthMin: -1,
	}
	for _, c := range cons {
		ct.Add(c)
	}
	return ct
}

// Add inserts c into the table.
func (ct *ConstraintTable) Add(c Constraint) {
	switch c.Kind {
	case VertexConstraint, RangeConstraint:
		ct.tree.ReplaceOrInsert(tableItem{key: c.Loc, start: c.T, end: c.EndT})
	case EdgeConstraint:
		ct.tree.ReplaceOrInsert(tableItem{key: ct.edgeKey(c.Loc, c.To), start: c.T, end: c.T})
	case LengthConstraint:
		if c.T > ct.lengthMin {
			ct.lengthMin = c.T
		}
	}
	if c.EndT != Forever && c.EndT > ct.maxT {
		ct.maxT = c.EndT
	}
	if c.T > ct.maxT {
		ct.maxT = c.T
	}
}

// Clone returns an independent copy; later additions to either table are
// not visible in the other.
func (ct *ConstraintTable) Clone() *ConstraintTable {
	cp := *ct
	cp.tree = ct.tree.Clone()
	return &cp
}

// Len returns the number of vertex, range and edge entries.
func (ct *ConstraintTable) Len() int { return ct.tree.Len() }

// MaxTime returns the largest finite timestep any constraint mentions.
func (ct *ConstraintTable) MaxTime() int { return ct.maxT }

func (ct *ConstraintTable) edgeKey(from, to int) int {
	return ct.numCells + from*ct.numCells + to
}

// covered reports whether any interval on key contains t.
func (ct *ConstraintTable) covered(key, t int) bool {
	hit := false
	ct.tree.AscendRange(
		tableItem{key: key, start: math.MinInt32, end: math.MinInt32},
		tableItem{key: key, start: t + 1, end: math.MinInt32},
		func(it tableItem) bool {
			if it.end >= t {
				hit = true
				return false
			}
			return true
		},
	)
	return hit
}

// VertexBlocked reports whether loc is forbidden at t.
func (ct *ConstraintTable) VertexBlocked(loc, t int) bool {
	return ct.covered(loc, t)
}

// EdgeBlocked reports whether the move from -> to arriving at t is forbidden.
func (ct *ConstraintTable) EdgeBlocked(from, to, t int) bool {
	if from == to {
		return false
	}
	return ct.covered(ct.edgeKey(from, to), t)
}

// Blocked reports whether moving from -> to arriving at t breaks any
// vertex, range or edge constraint.
func (ct *ConstraintTable) Blocked(from, to, t int) bool {
	return ct.VertexBlocked(to, t) || ct.EdgeBlocked(from, to, t)
}

// SettleTime returns the earliest timestep at which the agent may arrive at
// goal and stay there forever, or Forever when some constraint covers the
// goal without end.
func (ct *ConstraintTable) SettleTime(goal int) int {
	earliest := ct.lengthMin + 1
	ct.tree.AscendRange(
		tableItem{key: goal, start: math.MinInt32, end: math.MinInt32},
		tableItem{key: goal + 1, start: math.MinInt32, end: math.MinInt32},
		func(it tableItem) bool {
			if it.end == Forever {
				earliest = Forever
				return false
			}
			if it.end+1 > earliest {
				earliest = it.end + 1
			}
			return true
		},
	)
	return earliest
}

// LengthMin returns the timestep after which the agent must settle, -1
// when no length constraint applies.
func (ct *ConstraintTable) LengthMin() int { return ct.lengthMin }
