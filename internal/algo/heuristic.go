package algo

import (
	"bytes"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	lru "github.com/hashicorp/golang-lru"
)

// estimator computes the admissible h value of a node. It reports false
// when the node provably has no solution below it.
type estimator interface {
	estimate(n *hlNode, paths []core.Path) (int, bool)
}

func newEstimator(s *search) estimator {
	switch s.opts.Heuristic {
	case HeuristicCG:
		return cgEstimator{}
	case HeuristicDG:
		return &dgEstimator{s: s, cache: newPairCache(s.opts.MaxMDDs)}
	case HeuristicWDG:
		return &dgEstimator{s: s, weighted: true, cache: newPairCache(s.opts.MaxMDDs)}
	}
	return noneEstimator{}
}

type noneEstimator struct{}

func (noneEstimator) estimate(*hlNode, []core.Path) (int, bool) { return 0, true }

// conflictPairs returns the agent pairs that conflict in n, each with
// whether any of their conflicts is cardinal.
func conflictPairs(n *hlNode) (pairs [][2]int, cardinal map[[2]int]bool) {
	cardinal = make(map[[2]int]bool)
	for _, c := range n.conflicts {
		p := [2]int{min(c.A1, c.A2), max(c.A1, c.A2)}
		was, seen := cardinal[p]
		if !seen {
			pairs = append(pairs, p)
		}
		cardinal[p] = was || c.Cardinality == Cardinal
	}
	return pairs, cardinal
}

func newMatrix(n int) [][]int {
	w := make([][]int, n)
	for i := range w {
		w[i] = make([]int, n)
	}
	return w
}

// cgEstimator covers the graph of cardinal conflicts: each cardinal pair
// needs at least one of its agents to take a longer path.
type cgEstimator struct{}

func (cgEstimator) estimate(n *hlNode, paths []core.Path) (int, bool) {
	pairs, cardinal := conflictPairs(n)
	w := newMatrix(len(paths))
	edges := 0
	for _, p := range pairs {
		if cardinal[p] {
			w[p[0]][p[1]], w[p[1]][p[0]] = 1, 1
			edges++
		}
	}
	if edges == 0 {
		return 0, true
	}
	return minVertexCover(w), true
}

// dgEstimator covers the dependency graph, where two agents are joined
// when no pair of their optimal paths is conflict-free. The weighted
// variant labels each edge with the exact extra cost of the pair.
type dgEstimator struct {
	s        *search
	weighted bool
	cache    *pairCache
}

func (e *dgEstimator) estimate(n *hlNode, paths []core.Path) (int, bool) {
	pairs, cardinal := conflictPairs(n)
	w := newMatrix(len(paths))
	edges := 0
	for _, p := range pairs {
		v, ok := e.edge(n, p[0], p[1], cardinal[p], paths)
		if !ok {
			return 0, false
		}
		if v > 0 {
			w[p[0]][p[1]], w[p[1]][p[0]] = v, v
			edges++
		}
	}
	if edges == 0 {
		return 0, true
	}
	if e.weighted {
		return weightedVertexCover(w), true
	}
	return minVertexCover(w), true
}

// edge returns the weight of the pair a, b in n, and false when the pair
// has no conflict-free plan under the constraints of n.
func (e *dgEstimator) edge(n *hlNode, a, b int, cardinal bool, paths []core.Path) (int, bool) {
	if !e.weighted && cardinal {
		return 1, true
	}
	s := e.s
	consA, consB := s.constraintsOf(n, a), s.constraintsOf(n, b)
	key := pairKey{
		a: a, b: b,
		costA: paths[a].Cost(), costB: paths[b].Cost(),
		fpA: Fingerprint(consA), fpB: Fingerprint(consB),
	}
	sigA, sigB := canonical(consA), canonical(consB)
	if ent, ok := e.cache.get(key, sigA, sigB); ok {
		return ent.value, !ent.dead
	}

	dependent := cardinal || Dependent(s.mddFor(n, a, paths), s.mddFor(n, b, paths))
	ent := pairEntry{sigA: sigA, sigB: sigB}
	if dependent {
		ent.value = 1
		if e.weighted {
			v, ok := s.pairWeight(a, b, consA, consB, paths[a], paths[b])
			ent.value, ent.dead = v, !ok
		}
	}
	e.cache.add(key, ent)
	return ent.value, !ent.dead
}

type pairKey struct {
	a, b         int
	costA, costB int
	fpA, fpB     uint64
}

type pairEntry struct {
	sigA, sigB []byte
	value      int
	dead       bool
}

// pairCache remembers edge values per agent pair. Each pair has its own
// LRU so a busy pair cannot evict the results of quieter ones.
type pairCache struct {
	size  int
	pairs map[[2]int]*lru.Cache
}

func newPairCache(size int) *pairCache {
	return &pairCache{size: size, pairs: make(map[[2]int]*lru.Cache)}
}

func (c *pairCache) get(k pairKey, sigA, sigB []byte) (pairEntry, bool) {
	l, ok := c.pairs[[2]int{k.a, k.b}]
	if !ok {
		return pairEntry{}, false
	}
	v, ok := l.Get(k)
	if !ok {
		return pairEntry{}, false
	}
	e := v.(pairEntry)
	if !bytes.Equal(e.sigA, sigA) || !bytes.Equal(e.sigB, sigB) {
		return pairEntry{}, false
	}
	return e, true
}

func (c *pairCache) add(k pairKey, e pairEntry) {
	if c.size <= 0 {
		return
	}
	p := [2]int{k.a, k.b}
	l, ok := c.pairs[p]
	if !ok {
		// size is positive so New cannot fail
		l, _ = lru.New(c.size)
		c.pairs[p] = l
	}
	l.Add(k, e)
}
