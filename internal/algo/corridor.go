package algo

import (
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

// corridorSpan is a maximal chain of degree-2 cells with its two exits.
type corridorSpan struct {
	interior map[int]bool
	first    int // interior cell next to e1, used to tell parallel corridors apart
	e1, e2   int
	length   int // number of moves from e1 to e2
}

// findCorridor grows the chain of degree-2 cells through loc. It fails on
// cycles and on chains that end in a dead end.
func findCorridor(g *core.Grid, loc int) (*corridorSpan, bool) {
	if g.Degree(loc) != 2 {
		return nil, false
	}
	span := &corridorSpan{interior: map[int]bool{loc: true}}
	ends := [2]int{}
	chains := [2][]int{}
	for side, start := range g.Neighbors(loc) {
		prev, cur := loc, start
		for g.Degree(cur) == 2 {
			if cur == loc {
				return nil, false
			}
			span.interior[cur] = true
			chains[side] = append(chains[side], cur)
			nbrs := g.Neighbors(cur)
			next := nbrs[0]
			if next == prev {
				next = nbrs[1]
			}
			prev, cur = cur, next
		}
		if g.Degree(cur) < 2 {
			return nil, false
		}
		ends[side] = cur
	}
	span.e1, span.e2 = ends[0], ends[1]
	if span.e1 == span.e2 {
		return nil, false
	}
	span.length = len(span.interior) + 1
	if n := len(chains[0]); n > 0 {
		span.first = chains[0][n-1]
	} else {
		span.first = loc
	}
	return span, true
}

// traversal finds the corridor exit the path last touched at or before t
// and the first one it touches at or after t.
func traversal(p core.Path, span *corridorSpan, t int) (in, out, outT int) {
	in, out, outT = -1, -1, -1
	for k := t; k >= 0; k-- {
		if l := p.At(k); l == span.e1 || l == span.e2 {
			in = l
			break
		}
	}
	for k := t; k <= p.Cost(); k++ {
		if l := p.At(k); l == span.e1 || l == span.e2 {
			out, outT = l, k
			break
		}
	}
	return in, out, outT
}

// corridor tries to turn a vertex or edge conflict inside a corridor into
// a corridor conflict. With t1 the earliest arrival of A1 at its exit e2,
// t1b its earliest arrival there without using the corridor, k the
// corridor length and t2, t2b, e1 likewise for A2, any solution either
// keeps A1 off e2 during [0, min(t1b-1, t2+k)] or A2 off e1 during
// [0, min(t2b-1, t1+k)]: otherwise both cross the corridor in opposite
// directions within overlapping time windows and meet.
func (s *search) corridor(c *Conflict, paths []core.Path) (*Conflict, bool) {
	if c.Type != VertexConflict && c.Type != EdgeConflict {
		return nil, false
	}
	g := s.grid
	span, ok := findCorridor(g, c.Loc1)
	if !ok && c.Type == EdgeConflict {
		span, ok = findCorridor(g, c.Loc2)
	}
	if !ok {
		return nil, false
	}
	for _, a := range [2]int{c.A1, c.A2} {
		if span.interior[s.agents[a].Start] || span.interior[s.agents[a].Goal] {
			return nil, false
		}
	}

	in1, out1, arrive1 := traversal(paths[c.A1], span, c.T)
	in2, out2, arrive2 := traversal(paths[c.A2], span, c.T)
	if in1 < 0 || out1 < 0 || in2 < 0 || out2 < 0 || in1 == out1 || in2 == out2 || in1 != out2 {
		return nil, false
	}

	t1 := s.distance(out1, -1, span)[s.agents[c.A1].Start]
	t2 := s.distance(out2, -1, span)[s.agents[c.A2].Start]
	t1b := s.distance(out1, span.first, span)[s.agents[c.A1].Start]
	t2b := s.distance(out2, span.first, span)[s.agents[c.A2].Start]
	if t1 < 0 || t2 < 0 {
		return nil, false
	}
	bound1 := t2 + span.length
	if t1b >= 0 && t1b-1 < bound1 {
		bound1 = t1b - 1
	}
	bound2 := t1 + span.length
	if t2b >= 0 && t2b-1 < bound2 {
		bound2 = t2b - 1
	}
	if arrive1 > bound1 || arrive2 > bound2 {
		return nil, false
	}

	r := *c
	r.Type = CorridorConflict
	r.Constraints1 = []Constraint{Range(c.A1, out1, 0, bound1)}
	r.Constraints2 = []Constraint{Range(c.A2, out2, 0, bound2)}
	return &r, true
}

type distKey struct {
	from    int
	through int
}

// distance returns the BFS distance map from a corridor exit. With through
// set to an interior cell of span the corridor is treated as blocked. The
// maps are static and cached for the whole search.
func (s *search) distance(from, through int, span *corridorSpan) []int {
	key := distKey{from: from, through: through}
	if d, ok := s.dists[key]; ok {
		return d
	}
	var skip func(int) bool
	if through >= 0 {
		skip = func(loc int) bool { return span.interior[loc] }
	}
	d := s.grid.BFS(from, skip)
	s.dists[key] = d
	return d
}
