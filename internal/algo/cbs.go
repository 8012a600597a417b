package algo

import (
	"container/heap"
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	cerrors "github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"go.uber.org/zap"
)

// hlNode is a node of the constraint tree. Only the constraints and the
// path of the replanned agent are stored; everything else is inherited
// from the parent.
type hlNode struct {
	id     int
	depth  int
	parent *hlNode

	agent     int // -1 at the root
	delta     []Constraint
	path      core.Path
	rootPaths []core.Path

	g, h      int
	conflicts []*Conflict
	mdds      map[int]MDDHandle

	index int
}

func (n *hlNode) f() int { return n.g + n.h }

// nodeHeap orders nodes by f, then fewer conflicts, then creation order.
type nodeHeap []*hlNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if fa, fb := a.f(), b.f(); fa != fb {
		return fa < fb
	}
	if len(a.conflicts) != len(b.conflicts) {
		return len(a.conflicts) < len(b.conflicts)
	}
	return a.id < b.id
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*hlNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	x.index = -1
	*h = old[0 : n-1]
	return x
}

// search is the state of one Solve call.
type search struct {
	opts   Options
	logger *zap.Logger

	inst   *core.Instance
	grid   *core.Grid
	agents []*SingleAgentSolver
	mdds   *MDDCache
	dists  map[distKey][]int

	classify  bool
	estimator estimator

	open   nodeHeap
	nextID int
	stats  core.Stats
}

func newSearch(opts Options, inst *core.Instance) *search {
	s := &search{
		opts:   opts,
		logger: opts.Logger,
		inst:   inst,
		grid:   inst.Grid,
		mdds:   NewMDDCache(len(inst.Agents), opts.MaxMDDs),
		dists:  make(map[distKey][]int),
		// cardinality is needed for prioritizing and by every heuristic
		classify: opts.PrioritizeConflicts || opts.Heuristic != HeuristicNone,
	}
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	s.agents = make([]*SingleAgentSolver, len(inst.Agents))
	for i := range inst.Agents {
		s.agents[i] = NewSingleAgentSolver(inst, i, rng)
	}
	s.estimator = newEstimator(s)
	return s
}

// Solve runs CBSH on inst.
func (c *CBSH) Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error) {
	if err := inst.Validate(); err != nil {
		return nil, cerrors.Trace(err)
	}
	s := newSearch(c.opts, inst)
	defer s.shutdown()

	start := c.opts.Clock.Now()
	sol, err := s.run(ctx, start)
	sol.Stats = s.finishStats(c.opts.Clock.Since(start))

	outcome := "solved"
	switch {
	case cerrors.ErrTimeout.Equal(err):
		outcome = "timeout"
	case cerrors.ErrInfeasible.Equal(err):
		outcome = "infeasible"
	case err != nil:
		outcome = "cancelled"
	}
	c.opts.Metrics.observe(c.opts.Heuristic, outcome, sol.Stats)
	s.logger.Info("search finished",
		zap.String("solver", c.Name()),
		zap.String("outcome", outcome),
		zap.Int("cost", sol.Cost),
		zap.Int("lowerBound", sol.Stats.LowerBound),
		zap.Int("expanded", sol.Stats.NodesExpanded),
		zap.Int("generated", sol.Stats.NodesGenerated),
		zap.Duration("runtime", sol.Stats.Runtime))

	if err == nil && c.opts.Observer != nil {
		c.opts.Observer.OnSolutionFound(sol)
	}
	return sol, err
}

func (s *search) run(ctx context.Context, start time.Time) (*core.Solution, error) {
	root, err := s.root()
	if err != nil {
		return &core.Solution{}, err
	}
	if !s.evaluate(root, nil) {
		s.release(root)
		return &core.Solution{}, cerrors.ErrInfeasible.GenWithStackByArgs("a pair of agents has no conflict-free plan")
	}
	s.stats.RootCost = root.g
	s.stats.RootLowerBound = root.f()
	s.stats.LowerBound = root.f()
	s.stats.NodesGenerated++
	heap.Push(&s.open, root)

	for s.open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return &core.Solution{}, cerrors.Annotate(err, "search interrupted")
		}
		if s.opts.Cutoff > 0 && s.opts.Clock.Since(start) >= s.opts.Cutoff {
			return &core.Solution{}, cerrors.ErrTimeout.GenWithStackByArgs(s.opts.Cutoff, s.stats.LowerBound)
		}

		n := heap.Pop(&s.open).(*hlNode)
		s.stats.LowerBound = max(s.stats.LowerBound, n.f())
		s.stats.NodesExpanded++
		s.notifyExpanded(n)

		if len(n.conflicts) == 0 {
			sol := core.NewSolution(s.paths(n))
			s.stats.LowerBound = sol.Cost
			return sol, nil
		}

		c := s.selectConflict(n)
		if s.opts.Observer != nil {
			s.opts.Observer.OnConflictSelected(c)
		}
		s.countSplit(c)
		for role := 1; role <= 2; role++ {
			child := s.generate(n, c, role)
			if child == nil {
				continue
			}
			if !s.evaluate(child, n) {
				s.release(child)
				continue
			}
			s.stats.NodesGenerated++
			heap.Push(&s.open, child)
		}
		s.release(n)
	}
	return &core.Solution{}, cerrors.ErrInfeasible.GenWithStackByArgs("every branch of the constraint tree is blocked")
}

// root plans every agent without constraints. Each agent avoids the
// agents planned before it where a tie allows.
func (s *search) root() (*hlNode, error) {
	size := s.grid.Size()
	paths := make([]core.Path, len(s.agents))
	empty := NewConstraintTable(size, nil)
	g := 0
	for i, a := range s.agents {
		cat := NewConflictAvoidanceTable(size, paths, i)
		p, exp := a.FindPath(empty, cat, -1)
		s.stats.LowLevelCalls++
		s.stats.LowLevelExpanded += exp
		if p == nil {
			return nil, cerrors.ErrInfeasible.GenWithStackByArgs(
				"agent "+s.grid.Cell(a.Start).String()+"->"+s.grid.Cell(a.Goal).String()+" cannot reach its goal")
		}
		paths[i] = p
		g += p.Cost()
	}

	n := &hlNode{id: s.nextID, agent: -1, rootPaths: paths, g: g, mdds: make(map[int]MDDHandle)}
	s.nextID++
	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			n.conflicts = append(n.conflicts, s.prepare(pairConflicts(i, j, paths[i], paths[j]))...)
		}
	}
	return n, nil
}

// generate creates the child of n that adds the constraints of the given
// role of c, or nil when the constrained agent has no path left.
func (s *search) generate(n *hlNode, c *Conflict, role int) *hlNode {
	agent, delta := c.A1, c.Constraints1
	if role == 2 {
		agent, delta = c.A2, c.Constraints2
	}
	child := &hlNode{
		id:     s.nextID,
		depth:  n.depth + 1,
		parent: n,
		agent:  agent,
		delta:  delta,
	}

	size := s.grid.Size()
	paths := s.paths(n)
	ct := NewConstraintTable(size, s.constraintsOf(child, agent))
	cat := NewConflictAvoidanceTable(size, paths, agent)
	p, exp := s.agents[agent].FindPath(ct, cat, -1)
	s.stats.LowLevelCalls++
	s.stats.LowLevelExpanded += exp
	if p == nil {
		return nil
	}
	s.nextID++

	child.path = p
	child.g = n.g - paths[agent].Cost() + p.Cost()
	paths[agent] = p

	for _, old := range n.conflicts {
		if old.A1 != agent && old.A2 != agent {
			child.conflicts = append(child.conflicts, old)
		}
	}
	for j := range paths {
		if j == agent {
			continue
		}
		lo, hi := min(agent, j), max(agent, j)
		child.conflicts = append(child.conflicts, s.prepare(pairConflicts(lo, hi, paths[lo], paths[hi]))...)
	}

	child.mdds = make(map[int]MDDHandle, len(n.mdds))
	for a, h := range n.mdds {
		if a != agent && s.mdds.Retain(h) {
			child.mdds[a] = h
		}
	}
	return child
}

// prepare fills in the branching constraints of freshly detected conflicts.
func (s *search) prepare(cs []*Conflict) []*Conflict {
	for _, c := range cs {
		c.naive()
		if c.Type == TargetConflict && s.opts.TargetReasoning {
			c.targetSplit()
		}
	}
	return cs
}

// evaluate classifies the new conflicts of n and computes its heuristic.
// Conflicts inherited from the parent are already classified, since
// neither the paths nor the constraints of their agents changed. It
// returns false when n has no solution below it.
func (s *search) evaluate(n, parent *hlNode) bool {
	paths := s.paths(n)
	for i, c := range n.conflicts {
		if c.Cardinality != Unclassified {
			continue
		}
		if s.classify {
			s.classifyConflict(n, c, paths)
		}
		n.conflicts[i] = s.upgrade(c, paths)
	}

	h, ok := s.estimator.estimate(n, paths)
	if !ok {
		s.stats.DeadNodes++
		return false
	}
	n.h = h
	if parent != nil {
		// path-max keeps f monotone along every branch
		n.h = max(n.h, parent.f()-n.g)
	}
	return true
}

func (s *search) classifyConflict(n *hlNode, c *Conflict, paths []core.Path) {
	m1 := s.mddFor(n, c.A1, paths)
	m2 := s.mddFor(n, c.A2, paths)
	c.Cardinality = cardinalityOf(unavoidable(m1, c, 1), unavoidable(m2, c, 2))
}

// upgrade replaces a vertex or edge conflict by a rectangle or corridor
// conflict when symmetry reasoning applies.
func (s *search) upgrade(c *Conflict, paths []core.Path) *Conflict {
	if s.opts.RectangleReasoning {
		if r, ok := rectangle(s.inst, c, paths); ok {
			return r
		}
	}
	if s.opts.CorridorReasoning {
		if r, ok := s.corridor(c, paths); ok {
			return r
		}
	}
	return c
}

func (s *search) selectConflict(n *hlNode) *Conflict {
	best := n.conflicts[0]
	for _, c := range n.conflicts[1:] {
		if better(c, best, s.opts.PrioritizeConflicts) {
			best = c
		}
	}
	return best
}

func (s *search) countSplit(c *Conflict) {
	switch c.Type {
	case RectangleConflict:
		s.stats.RectangleSplits++
	case CorridorConflict:
		s.stats.CorridorSplits++
	case TargetConflict:
		if s.opts.TargetReasoning {
			s.stats.TargetSplits++
		}
	}
}

// paths reconstructs the full plan of n by walking up to the root.
func (s *search) paths(n *hlNode) []core.Path {
	out := make([]core.Path, len(s.agents))
	for cur := n; cur != nil; cur = cur.parent {
		if cur.agent < 0 {
			for i, p := range cur.rootPaths {
				if out[i] == nil {
					out[i] = p
				}
			}
			break
		}
		if out[cur.agent] == nil {
			out[cur.agent] = cur.path
		}
	}
	return out
}

// constraintsOf collects the constraints of agent along the branch of n.
func (s *search) constraintsOf(n *hlNode, agent int) []Constraint {
	var out []Constraint
	for cur := n; cur != nil; cur = cur.parent {
		if cur.agent == agent {
			out = append(out, cur.delta...)
		}
	}
	return out
}

// mddFor returns the diagram of agent at its current cost in n, acquiring
// it from the cache on first use.
func (s *search) mddFor(n *hlNode, agent int, paths []core.Path) *MDD {
	if h, ok := n.mdds[agent]; ok {
		m, ok := s.mdds.Get(h)
		if !ok {
			s.logger.Panic("held diagram was evicted", zap.Int("node", n.id), zap.Int("agent", agent))
		}
		return m
	}
	cons := s.constraintsOf(n, agent)
	cost := paths[agent].Cost()
	h, m := s.mdds.Acquire(agent, cost, cons, func() *MDD {
		m := s.agents[agent].BuildMDD(NewConstraintTable(s.grid.Size(), cons), cost)
		if ce := s.logger.Check(zap.DebugLevel, "build diagram"); ce != nil {
			ce.Write(zap.Int("agent", agent), zap.Int("cost", cost), zap.Int("nodes", m.NumNodes()))
		}
		return m
	})
	n.mdds[agent] = h
	return m
}

// release returns the diagrams held by an expanded node to the cache.
func (s *search) release(n *hlNode) {
	agents := make([]int, 0, len(n.mdds))
	for a := range n.mdds {
		agents = append(agents, a)
	}
	// a fixed order keeps idle eviction reproducible
	sort.Ints(agents)
	for _, a := range agents {
		s.mdds.Release(n.mdds[a])
	}
	n.mdds = nil
}

func (s *search) notifyExpanded(n *hlNode) {
	if ce := s.logger.Check(zap.DebugLevel, "expand node"); ce != nil {
		ce.Write(
			zap.Int("id", n.id),
			zap.Int("depth", n.depth),
			zap.Int("agent", n.agent),
			zap.Int("g", n.g),
			zap.Int("h", n.h),
			zap.Int("conflicts", len(n.conflicts)))
	}
	if s.opts.Observer == nil {
		return
	}
	info := NodeInfo{
		ID:           n.id,
		ParentID:     -1,
		Depth:        n.depth,
		Agent:        n.agent,
		G:            n.g,
		H:            n.h,
		NumConflicts: len(n.conflicts),
		Constraints:  n.delta,
	}
	if n.parent != nil {
		info.ParentID = n.parent.id
	}
	s.opts.Observer.OnNodeExpanded(info)
}

func (s *search) finishStats(runtime time.Duration) core.Stats {
	st := s.stats
	st.MDDsBuilt = s.mdds.Built
	st.MDDCacheHits = s.mdds.Hits
	st.Runtime = runtime
	return st
}

// shutdown frees every diagram still held by open nodes.
func (s *search) shutdown() {
	s.mdds.Reset()
	s.open = nil
	s.agents = nil
}
