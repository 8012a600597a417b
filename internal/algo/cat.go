package algo

import "github.com/elektrokombinacija/cbsh-mapf/internal/core"

// ConflictAvoidanceTable counts how many other agents a move would collide
// with. It only breaks ties between equal-cost paths.
type ConflictAvoidanceTable struct {
	size   int
	vertex map[int]int
	edge   map[int]int
	// parked maps a goal to the timesteps from which agents sit on it.
	parked map[int][]int
}

// NewConflictAvoidanceTable indexes every path except the one of skip.
func NewConflictAvoidanceTable(size int, paths []core.Path, skip int) *ConflictAvoidanceTable {
	cat := &ConflictAvoidanceTable{
		size:   size,
		vertex: make(map[int]int),
		edge:   make(map[int]int),
		parked: make(map[int][]int),
	}
	for i, p := range paths {
		if i == skip || len(p) == 0 {
			continue
		}
		last := len(p) - 1
		for t := 0; t < last; t++ {
			cat.vertex[t*size+p[t]]++
			if t > 0 && p[t-1] != p[t] {
				cat.edge[cat.edgeKey(p[t-1], p[t], t)]++
			}
		}
		if last > 0 && p[last-1] != p[last] {
			cat.edge[cat.edgeKey(p[last-1], p[last], last)]++
		}
		cat.parked[p[last]] = append(cat.parked[p[last]], last)
	}
	return cat
}

func (cat *ConflictAvoidanceTable) edgeKey(from, to, t int) int {
	return (t*cat.size+from)*cat.size + to
}

// Count returns the number of collisions caused by moving from -> to
// arriving at t. A nil table counts nothing.
func (cat *ConflictAvoidanceTable) Count(from, to, t int) int {
	if cat == nil {
		return 0
	}
	n := cat.vertex[t*cat.size+to]
	if from != to {
		n += cat.edge[cat.edgeKey(to, from, t)]
	}
	for _, since := range cat.parked[to] {
		if t >= since {
			n++
		}
	}
	return n
}
