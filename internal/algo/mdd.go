package algo

// MDDNode is one (location, level) entry of a decision diagram.
type MDDNode struct {
	Loc      int
	Level    int
	Children []*MDDNode
	Parents  []*MDDNode
}

// MDD is the multi-valued decision diagram of all paths of exactly Cost
// timesteps from an agent's start to its goal under a constraint set.
// It is never modified after construction.
type MDD struct {
	Agent  int
	Cost   int
	Goal   int
	Levels [][]*MDDNode
}

// Empty reports whether no path of the given cost exists.
func (m *MDD) Empty() bool { return len(m.Levels) == 0 }

// Width returns the number of locations on a level. Levels past the cost
// hold only the goal.
func (m *MDD) Width(level int) int {
	if m.Empty() {
		return 0
	}
	if level >= len(m.Levels) {
		return 1
	}
	return len(m.Levels[level])
}

// Singleton returns the only location of a level, if the level has one.
func (m *MDD) Singleton(level int) (int, bool) {
	if m.Empty() {
		return -1, false
	}
	if level >= len(m.Levels) {
		return m.Goal, true
	}
	if len(m.Levels[level]) != 1 {
		return -1, false
	}
	return m.Levels[level][0].Loc, true
}

// Contains reports whether some path visits loc at level.
func (m *MDD) Contains(level, loc int) bool {
	if m.Empty() {
		return false
	}
	if level >= len(m.Levels) {
		return loc == m.Goal
	}
	for _, n := range m.Levels[level] {
		if n.Loc == loc {
			return true
		}
	}
	return false
}

// NumNodes returns the total number of nodes over all levels.
func (m *MDD) NumNodes() int {
	total := 0
	for _, l := range m.Levels {
		total += len(l)
	}
	return total
}

// mddState is a construction state. settled marks an agent that has sat on
// its goal since a timestep not later than the length constraint.
type mddState struct {
	loc      int
	settled  bool
	children []*mddState
	parents  []*mddState
	alive    bool
}

// BuildMDD constructs the diagram of all cost-timestep paths of the agent
// under ct. An empty diagram is returned when there is none.
//
// Length constraints are tracked with the settled flag during
// construction; merging both flag variants of a goal node afterwards can
// only add paths, so the diagram stays a superset of the optimal paths.
func (s *SingleAgentSolver) BuildMDD(ct *ConstraintTable, cost int) *MDD {
	m := &MDD{Agent: s.Agent, Cost: cost, Goal: s.Goal}
	if !s.Reachable() || s.dist[s.Start] > cost || ct.SettleTime(s.Goal) > cost || ct.VertexBlocked(s.Start, 0) {
		return m
	}
	lengthMin := ct.LengthMin()

	levels := make([][]*mddState, cost+1)
	root := &mddState{loc: s.Start, settled: s.Start == s.Goal && lengthMin >= 0}
	levels[0] = []*mddState{root}

	var buf []int
	for t := 0; t < cost; t++ {
		nt := t + 1
		index := make(map[int]*mddState)
		for _, st := range levels[t] {
			buf = s.successors(st.loc, buf)
			for _, next := range buf {
				d := s.dist[next]
				if d < 0 || d > cost-nt {
					continue
				}
				if ct.Blocked(st.loc, next, nt) {
					continue
				}
				settled := false
				if next == s.Goal {
					if st.loc == s.Goal {
						settled = st.settled
					} else {
						settled = nt <= lengthMin
					}
				}
				if nt == cost && settled {
					continue
				}
				key := next * 2
				if settled {
					key++
				}
				child, ok := index[key]
				if !ok {
					child = &mddState{loc: next, settled: settled}
					index[key] = child
					levels[nt] = append(levels[nt], child)
				}
				st.children = append(st.children, child)
				child.parents = append(child.parents, st)
			}
		}
		if len(levels[nt]) == 0 {
			return m
		}
	}

	// Keep only states that lie on a path ending at the goal.
	for _, st := range levels[cost] {
		if st.loc == s.Goal && !st.settled {
			st.alive = true
		}
	}
	for t := cost - 1; t >= 0; t-- {
		for _, st := range levels[t] {
			for _, c := range st.children {
				if c.alive {
					st.alive = true
					break
				}
			}
		}
	}
	if !root.alive {
		return m
	}

	// Project states onto (location, level) nodes.
	m.Levels = make([][]*MDDNode, cost+1)
	proj := make([]map[int]*MDDNode, cost+1)
	for t := 0; t <= cost; t++ {
		proj[t] = make(map[int]*MDDNode)
		for _, st := range levels[t] {
			if !st.alive {
				continue
			}
			if _, ok := proj[t][st.loc]; !ok {
				n := &MDDNode{Loc: st.loc, Level: t}
				proj[t][st.loc] = n
				m.Levels[t] = append(m.Levels[t], n)
			}
		}
	}
	for t := 0; t < cost; t++ {
		for _, st := range levels[t] {
			if !st.alive {
				continue
			}
			from := proj[t][st.loc]
			for _, c := range st.children {
				if !c.alive {
					continue
				}
				link(from, proj[t+1][c.loc])
			}
		}
	}
	return m
}

func link(parent, child *MDDNode) {
	for _, c := range parent.Children {
		if c == child {
			return
		}
	}
	parent.Children = append(parent.Children, child)
	child.Parents = append(child.Parents, parent)
}

// Dependent reports whether the two agents cannot follow paths of their
// diagrams at the same time without a vertex or edge collision. The
// shorter diagram is extended by waiting at its goal.
func Dependent(a, b *MDD) bool {
	if a.Empty() || b.Empty() {
		return true
	}
	type pair struct{ x, y *MDDNode }
	ra, rb := a.Levels[0][0], b.Levels[0][0]
	if ra.Loc == rb.Loc {
		return true
	}

	depth := max(a.Cost, b.Cost)
	cur := []pair{{ra, rb}}
	for t := 0; t < depth; t++ {
		seen := make(map[pair]struct{})
		var next []pair
		for _, p := range cur {
			for _, x := range stepOf(a, p.x, t) {
				for _, y := range stepOf(b, p.y, t) {
					if x.Loc == y.Loc || (x.Loc == p.y.Loc && y.Loc == p.x.Loc) {
						continue
					}
					np := pair{x, y}
					if _, ok := seen[np]; ok {
						continue
					}
					seen[np] = struct{}{}
					next = append(next, np)
				}
			}
		}
		if len(next) == 0 {
			return true
		}
		cur = next
	}
	return false
}

// stepOf returns the successors of n at level t, staying on the goal node
// once the diagram has ended.
func stepOf(m *MDD, n *MDDNode, t int) []*MDDNode {
	if t >= m.Cost {
		return []*MDDNode{n}
	}
	return n.Children
}
