package algo

import "sort"

// Component sizes above these limits fall back to matching lower bounds,
// which are still admissible but weaker.
const (
	exactCoverLimit    = 24
	weightedCoverLimit = 10
)

// components splits the vertices with at least one positive edge into
// connected components.
func components(n int, w [][]int) [][]int {
	seen := make([]bool, n)
	var out [][]int
	for v := 0; v < n; v++ {
		if seen[v] {
			continue
		}
		hasEdge := false
		for u := 0; u < n; u++ {
			if w[v][u] > 0 {
				hasEdge = true
				break
			}
		}
		if !hasEdge {
			continue
		}
		seen[v] = true
		comp := []int{v}
		for k := 0; k < len(comp); k++ {
			for u := 0; u < n; u++ {
				if w[comp[k]][u] > 0 && !seen[u] {
					seen[u] = true
					comp = append(comp, u)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

// minVertexCover returns the size of a minimum vertex cover of the graph
// whose edges are the positive entries of w.
func minVertexCover(w [][]int) int {
	total := 0
	for _, comp := range components(len(w), w) {
		total += unitCover(componentEdges(comp, w), len(comp))
	}
	return total
}

func componentEdges(comp []int, w [][]int) [][2]int {
	var edges [][2]int
	for i, a := range comp {
		for _, b := range comp[i+1:] {
			if w[a][b] > 0 {
				edges = append(edges, [2]int{a, b})
			}
		}
	}
	return edges
}

// unitCover is the cover size of one component of the given number of
// vertices, exact up to exactCoverLimit.
func unitCover(edges [][2]int, vertices int) int {
	k := matchingBound(edges, func(a, b int) int { return 1 })
	if vertices > exactCoverLimit {
		return k
	}
	for !kVertexCover(edges, k) {
		k++
	}
	return k
}

// kVertexCover reports whether k vertices can cover every edge.
func kVertexCover(edges [][2]int, k int) bool {
	if len(edges) == 0 {
		return true
	}
	if k == 0 {
		return false
	}
	for _, v := range edges[0] {
		rest := make([][2]int, 0, len(edges))
		for _, e := range edges {
			if e[0] != v && e[1] != v {
				rest = append(rest, e)
			}
		}
		if kVertexCover(rest, k-1) {
			return true
		}
	}
	return false
}

// matchingBound sums the weights of a greedy set of vertex-disjoint edges.
// Every such edge needs its own share of any cover.
func matchingBound(edges [][2]int, weight func(a, b int) int) int {
	sorted := append([][2]int(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return weight(sorted[i][0], sorted[i][1]) > weight(sorted[j][0], sorted[j][1])
	})
	used := make(map[int]bool)
	bound := 0
	for _, e := range sorted {
		if used[e[0]] || used[e[1]] {
			continue
		}
		used[e[0]], used[e[1]] = true, true
		bound += weight(e[0], e[1])
	}
	return bound
}

// weightedVertexCover returns the minimum of sum(x) over non-negative
// integers x with x[a]+x[b] >= w[a][b] for every edge. Components above
// weightedCoverLimit get the larger of the weighted matching bound and the
// unweighted cover, so the result never drops below minVertexCover.
func weightedVertexCover(w [][]int) int {
	total := 0
	for _, comp := range components(len(w), w) {
		edges := componentEdges(comp, w)
		if len(comp) > weightedCoverLimit {
			weighted := matchingBound(edges, func(a, b int) int { return w[a][b] })
			total += max(weighted, unitCover(edges, len(comp)))
			continue
		}
		total += exactWeightedCover(comp, w)
	}
	return total
}

func exactWeightedCover(comp []int, w [][]int) int {
	// Assign high-degree vertices first so constraints bite early.
	order := append([]int(nil), comp...)
	degree := func(v int) int {
		d := 0
		for _, u := range comp {
			if w[v][u] > 0 {
				d++
			}
		}
		return d
	}
	sort.SliceStable(order, func(i, j int) bool { return degree(order[i]) > degree(order[j]) })

	maxIncident := make([]int, len(order))
	best := 0
	for i, v := range order {
		for _, u := range comp {
			maxIncident[i] = max(maxIncident[i], w[v][u])
		}
		best += maxIncident[i]
	}

	// rest[i] bounds what the vertices order[i:] must pay among themselves,
	// whatever the earlier vertices were given.
	rest := make([]int, len(order)+1)
	for i := range order {
		var edges [][2]int
		for a := i; a < len(order); a++ {
			for b := a + 1; b < len(order); b++ {
				if w[order[a]][order[b]] > 0 {
					edges = append(edges, [2]int{order[a], order[b]})
				}
			}
		}
		rest[i] = matchingBound(edges, func(a, b int) int { return w[a][b] })
	}

	x := make([]int, len(order))
	demand := make([]int, len(order))
	// residual bounds what order[i:] must still pay: each vertex at least
	// its largest leftover demand from assigned neighbours, plus a greedy
	// matching over whatever their edges still need beyond that.
	residual := func(i int) int {
		lb := 0
		for a := i; a < len(order); a++ {
			demand[a] = 0
			for j := 0; j < i; j++ {
				demand[a] = max(demand[a], w[order[a]][order[j]]-x[j])
			}
			lb += demand[a]
		}
		used := make([]bool, len(order))
		for a := i; a < len(order); a++ {
			if used[a] {
				continue
			}
			pick, need := -1, 0
			for b := a + 1; b < len(order); b++ {
				if r := w[order[a]][order[b]] - demand[a] - demand[b]; !used[b] && r > need {
					pick, need = b, r
				}
			}
			if pick >= 0 {
				used[a], used[pick] = true, true
				lb += need
			}
		}
		return lb
	}

	var dfs func(i, sum int)
	dfs = func(i, sum int) {
		if sum+rest[i] >= best || sum+residual(i) >= best {
			return
		}
		if i == len(order) {
			best = sum
			return
		}
		lo := 0
		for j := 0; j < i; j++ {
			lo = max(lo, w[order[i]][order[j]]-x[j])
		}
		for val := lo; val <= maxIncident[i]; val++ {
			if sum+val+rest[i+1] >= best {
				break
			}
			x[i] = val
			dfs(i+1, sum+val)
		}
	}
	dfs(0, 0)
	return best
}
