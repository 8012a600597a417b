package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

type pairNode struct {
	tables [2]*ConstraintTable
	paths  [2]core.Path
	cost  int
	id    int
	index int
}

type pairHeap []*pairNode

func (h pairHeap) Len() int { return len(h) }
func (h pairHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].id < h[j].id
}
func (h pairHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *pairHeap) Push(x any) {
	n := x.(*pairNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *pairHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// pairWeight runs plain CBS on agents a and b alone, starting from their
// current constraints and paths, and returns how much the pair's optimal
// conflict-free cost exceeds the current one. When the expansion limit is
// hit, the best cost left in the open list is used instead, at least 1
// since the pair is known to be dependent. It reports false when the pair
// has no conflict-free plan under its constraints at all, which no further
// constraint can change.
func (s *search) pairWeight(a, b int, consA, consB []Constraint, pa, pb core.Path) (int, bool) {
	s.stats.PairSearches++
	base := pa.Cost() + pb.Cost()
	size := s.grid.Size()
	agents := [2]int{a, b}

	open := &pairHeap{}
	heap.Push(open, &pairNode{
		tables: [2]*ConstraintTable{NewConstraintTable(size, consA), NewConstraintTable(size, consB)},
		paths:  [2]core.Path{pa, pb},
		cost:   base,
	})
	nextID := 1

	for expanded := 0; open.Len() > 0; expanded++ {
		if expanded >= s.opts.PairNodeLimit {
			return max(1, (*open)[0].cost-base), true
		}
		n := heap.Pop(open).(*pairNode)
		cs := s.prepare(pairConflicts(a, b, n.paths[0], n.paths[1]))
		if len(cs) == 0 {
			return max(1, n.cost-base), true
		}
		c := cs[0]
		for role := 1; role <= 2; role++ {
			agent, delta := c.A1, c.Constraints1
			if role == 2 {
				agent, delta = c.A2, c.Constraints2
			}
			slot := 0
			if agent == agents[1] {
				slot = 1
			}
			child := &pairNode{tables: n.tables, paths: n.paths, id: nextID}
			ct := n.tables[slot].Clone()
			for _, con := range delta {
				ct.Add(con)
			}
			child.tables[slot] = ct
			p, exp := s.agents[agent].FindPath(ct, nil, -1)
			s.stats.LowLevelCalls++
			s.stats.LowLevelExpanded += exp
			if p == nil {
				continue
			}
			nextID++
			child.paths[slot] = p
			child.cost = n.cost - n.paths[slot].Cost() + p.Cost()
			heap.Push(open, child)
		}
	}
	return 0, false
}
