package engine

import "math/rand"

// A Graph is the undirected interaction graph over a variable set: node set
// equals the variable set, edges are exactly the pairs that co-occur in some
// factor scope (spec §3). It is mutated only during elimination ordering
// (fill-in edges added as a node is eliminated, then the node removed).
type Graph struct {
	n         int
	neighbors []map[Var]bool
	alive     []bool
}

// NewGraph returns an empty graph over n variables.
func NewGraph(n int) *Graph {
	g := &Graph{n: n, neighbors: make([]map[Var]bool, n), alive: make([]bool, n)}
	for i := range g.neighbors {
		g.neighbors[i] = map[Var]bool{}
		g.alive[i] = true
	}
	return g
}

// AddEdge connects u and v (no-op if u == v or already connected).
func (g *Graph) AddEdge(u, v Var) {
	if u == v {
		return
	}
	g.neighbors[u][v] = true
	g.neighbors[v][u] = true
}

// Neighbors returns the (live) neighbors of v.
func (g *Graph) Neighbors(v Var) []Var {
	out := make([]Var, 0, len(g.neighbors[v]))
	for u := range g.neighbors[v] {
		if g.alive[u] {
			out = append(out, u)
		}
	}
	return out
}

// Degree returns the number of live neighbors of v.
func (g *Graph) Degree(v Var) int {
	d := 0
	for u := range g.neighbors[v] {
		if g.alive[u] {
			d++
		}
	}
	return d
}

// Remove marks v as removed: its edges stay recorded (see everAdjacent), but
// Neighbors, Degree and ConnectedComponents no longer report it.
func (g *Graph) Remove(v Var) {
	g.alive[v] = false
}

// everAdjacent reports whether an edge between u and v was ever recorded,
// regardless of whether either endpoint is still alive. Pseudo-tree
// construction needs this raw form: attaching an already-eliminated
// subtree as a child of the variable currently being processed relies on
// an edge to a now-dead vertex, which Neighbors (alive-filtered) can never
// report.
func (g *Graph) everAdjacent(u, v Var) bool {
	return g.neighbors[u][v]
}

// Clone returns a deep copy of g, so elimination ordering search can try
// several candidate orders without rebuilding the graph from scratch.
func (g *Graph) Clone() *Graph {
	ng := &Graph{n: g.n, neighbors: make([]map[Var]bool, g.n), alive: append([]bool{}, g.alive...)}
	for i, nb := range g.neighbors {
		m := make(map[Var]bool, len(nb))
		for k, v := range nb {
			m[k] = v
		}
		ng.neighbors[i] = m
	}
	return ng
}

// ConnectedComponents returns the connected components of the graph, each as
// a slice of variable ids in discovery order, used to detect when a dummy root is
// needed to connect the pseudo-tree (spec §4.9).
func (g *Graph) ConnectedComponents() [][]Var {
	seen := make([]bool, g.n)
	var comps [][]Var
	for v := 0; v < g.n; v++ {
		if seen[v] || !g.alive[v] {
			continue
		}
		var comp []Var
		stack := []Var{Var(v)}
		seen[v] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, u)
			for w := range g.neighbors[u] {
				if g.alive[w] && !seen[w] {
					seen[w] = true
					stack = append(stack, w)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// fillScore is the number of missing edges among v's live neighbors: the
// min-fill heuristic's score for eliminating v next.
func (g *Graph) fillScore(v Var) int {
	nb := g.Neighbors(v)
	missing := 0
	for i := 0; i < len(nb); i++ {
		for j := i + 1; j < len(nb); j++ {
			if !g.neighbors[nb[i]][nb[j]] {
				missing++
			}
		}
	}
	return missing
}

// eliminate connects v's live neighbors into a clique (adding fill-in
// edges) and removes v, returning the induced width contributed by v, i.e.
// the number of neighbors v had right before elimination.
func (g *Graph) eliminate(v Var) int {
	nb := g.Neighbors(v)
	for i := 0; i < len(nb); i++ {
		for j := i + 1; j < len(nb); j++ {
			g.AddEdge(nb[i], nb[j])
		}
	}
	g.Remove(v)
	return len(nb)
}

// EliminationOrder computes a min-fill-with-tolerance ordering of g (spec
// §4.2). limit bounds the induced width; as soon as the chosen elimination
// pushes the width above limit, ErrWidthExceeded is returned (other
// candidates are not tried). tolerance widens the randomized candidate pool
// to up to tolerance+1 distinct nonzero-score ranks. rng drives the
// tie-breaking; pass a seeded *rand.Rand for reproducible orders, or nil
// for a source seeded with 1.
func EliminationOrder(g *Graph, limit int, tolerance int, rng *rand.Rand) ([]Var, int, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	work := g.Clone()
	remaining := make([]Var, 0, work.n)
	for v := 0; v < work.n; v++ {
		if work.alive[v] {
			remaining = append(remaining, Var(v))
		}
	}
	order := make([]Var, 0, len(remaining))
	width := 0
	for len(remaining) > 0 {
		scores := make([]scored, 0, len(remaining))
		var alive []Var
		for _, v := range remaining {
			if !work.alive[v] {
				continue
			}
			alive = append(alive, v)
			scores = append(scores, scored{v, work.fillScore(v)})
		}
		remaining = alive
		if len(scores) == 0 {
			break
		}

		// simplicial nodes (score 0) go first, in insertion order.
		var simplicial []Var
		minNonZero := -1
		for _, s := range scores {
			if s.score == 0 {
				simplicial = append(simplicial, s.v)
			} else if minNonZero < 0 || s.score < minNonZero {
				minNonZero = s.score
			}
		}

		var chosen Var
		if len(simplicial) > 0 {
			chosen = simplicial[0]
		} else {
			// Collect candidates within the top tolerance+1 distinct score ranks.
			ranks := distinctRanksUpTo(scores, minNonZero, tolerance)
			var candidates []Var
			for _, s := range scores {
				if ranks[s.score] {
					candidates = append(candidates, s.v)
				}
			}
			chosen = candidates[rng.Intn(len(candidates))]
		}

		deg := work.eliminate(chosen)
		if deg > width {
			width = deg
		}
		if width > limit {
			return nil, 0, ErrWidthExceeded
		}
		order = append(order, chosen)
		next := remaining[:0]
		for _, v := range remaining {
			if v != chosen {
				next = append(next, v)
			}
		}
		remaining = next
	}
	return order, width, nil
}

type scored struct {
	v     Var
	score int
}

// distinctRanksUpTo returns the set of scores within the tolerance+1
// smallest distinct nonzero scores starting at minNonZero.
func distinctRanksUpTo(scores []scored, minNonZero int, tolerance int) map[int]bool {
	seen := map[int]bool{}
	for _, s := range scores {
		if s.score > 0 {
			seen[s.score] = true
		}
	}
	uniq := make([]int, 0, len(seen))
	for s := range seen {
		uniq = append(uniq, s)
	}
	sortInts(uniq)
	ranks := map[int]bool{}
	for i, s := range uniq {
		if i > tolerance {
			break
		}
		ranks[s] = true
	}
	return ranks
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
