package algo

import (
	"container/heap"
	"math/rand"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

// lowNode is one (location, timestep) state of the time-expanded search.
type lowNode struct {
	loc, t    int
	h         int
	conflicts int
	seq       int
	parent    *lowNode
	index     int // heap index, -1 once closed
}

// lowHeap orders states by f, then fewer conflicts with other agents,
// then deeper states, then insertion order.
type lowHeap []*lowNode

func (h lowHeap) Len() int { return len(h) }
func (h lowHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if fa, fb := a.t+a.h, b.t+b.h; fa != fb {
		return fa < fb
	}
	if a.conflicts != b.conflicts {
		return a.conflicts < b.conflicts
	}
	if a.t != b.t {
		return a.t > b.t
	}
	return a.seq < b.seq
}
func (h lowHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *lowHeap) Push(x any) {
	n := x.(*lowNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *lowHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	x.index = -1
	*h = old[0 : n-1]
	return x
}

// SingleAgentSolver plans paths for one agent. The distance-to-goal table
// is computed once and reused by every call, since the grid never changes.
type SingleAgentSolver struct {
	Agent int
	Start int
	Goal  int

	grid     *core.Grid
	dist     []int
	rotation int
}

// NewSingleAgentSolver prepares the solver of agent i. When rng is not nil
// it fixes a neighbour rotation for the agent, which changes the choice
// among equal-cost paths but never their cost.
func NewSingleAgentSolver(inst *core.Instance, i int, rng *rand.Rand) *SingleAgentSolver {
	s := &SingleAgentSolver{
		Agent: i,
		Start: inst.StartLoc(i),
		Goal:  inst.GoalLoc(i),
		grid:  inst.Grid,
	}
	s.dist = inst.Grid.BFS(s.Goal, nil)
	if rng != nil {
		s.rotation = rng.Intn(4)
	}
	return s
}

// Reachable reports whether the goal can be reached from the start at all.
func (s *SingleAgentSolver) Reachable() bool { return s.dist[s.Start] >= 0 }

// successors returns the wait move followed by the neighbours of loc in
// the agent's rotation.
func (s *SingleAgentSolver) successors(loc int, buf []int) []int {
	buf = append(buf[:0], loc)
	nbrs := s.grid.Neighbors(loc)
	for i := range nbrs {
		buf = append(buf, nbrs[(i+s.rotation)%len(nbrs)])
	}
	return buf
}

// FindPath returns a minimum-cost path that respects ct, preferring among
// equal-cost paths the ones with fewer conflicts in cat. A negative bound
// means no cost bound. It returns nil when no path exists, together with
// the number of expanded states.
func (s *SingleAgentSolver) FindPath(ct *ConstraintTable, cat *ConflictAvoidanceTable, bound int) (core.Path, int) {
	if !s.Reachable() || ct.VertexBlocked(s.Start, 0) {
		return nil, 0
	}
	settle := ct.SettleTime(s.Goal)
	if settle == Forever {
		return nil, 0
	}

	// Past the last constrained timestep waiting never helps, so any path
	// longer than that plus one visit of every free cell is dominated.
	horizon := max(ct.MaxTime(), settle) + s.grid.FreeCells()
	if bound >= 0 && bound < horizon {
		horizon = bound
	}

	size := s.grid.Size()
	nodes := make(map[int]*lowNode)
	open := &lowHeap{}
	seq := 0

	root := &lowNode{loc: s.Start, t: 0, h: s.heuristic(s.Start, 0, settle)}
	if root.h > horizon {
		return nil, 0
	}
	nodes[s.Start] = root
	heap.Push(open, root)

	expanded := 0
	var buf []int
	for open.Len() > 0 {
		cur := heap.Pop(open).(*lowNode)
		if cur.loc == s.Goal && cur.t >= settle {
			return reconstructPath(cur), expanded
		}
		expanded++
		if cur.t >= horizon {
			continue
		}

		nt := cur.t + 1
		buf = s.successors(cur.loc, buf)
		for _, next := range buf {
			if ct.Blocked(cur.loc, next, nt) {
				continue
			}
			h := s.heuristic(next, nt, settle)
			if nt+h > horizon {
				continue
			}
			conflicts := cur.conflicts + cat.Count(cur.loc, next, nt)

			key := nt*size + next
			if old, ok := nodes[key]; ok {
				// Same timestep means same g, so only the conflict count
				// can improve, and only while the state is still open.
				if old.index >= 0 && conflicts < old.conflicts {
					old.conflicts = conflicts
					old.parent = cur
					heap.Fix(open, old.index)
				}
				continue
			}

			seq++
			n := &lowNode{loc: next, t: nt, h: h, conflicts: conflicts, seq: seq, parent: cur}
			nodes[key] = n
			heap.Push(open, n)
		}
	}

	return nil, expanded // No path found
}

// heuristic is the distance to goal, raised when the agent may not settle
// at its goal before the given timestep.
func (s *SingleAgentSolver) heuristic(loc, t, settle int) int {
	return max(s.dist[loc], settle-t)
}

func reconstructPath(node *lowNode) core.Path {
	path := make(core.Path, node.t+1)
	for n := node; n != nil; n = n.parent {
		path[n.t] = n.loc
	}
	return path
}
