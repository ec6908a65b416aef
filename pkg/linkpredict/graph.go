package linkpredict

import "math"

// graph is an adjacency map over entity IDs. It is rebuilt from the entity
// batch at the start of every engine call and discarded afterwards, so
// results are a pure function of the current batch.
type graph map[string]nodeSet

// nodeSet is a set of adjacent entity IDs.
type nodeSet map[string]struct{}

func (ns nodeSet) contains(id string) bool {
	_, ok := ns[id]
	return ok
}

// addEdge records an undirected edge.
func (g graph) addEdge(a, b string) {
	if a == b {
		return
	}
	if g[a] == nil {
		g[a] = make(nodeSet)
	}
	if g[b] == nil {
		g[b] = make(nodeSet)
	}
	g[a][b] = struct{}{}
	g[b][a] = struct{}{}
}

func (g graph) neighbors(id string) nodeSet {
	return g[id]
}

func (g graph) degree(id string) int {
	return len(g[id])
}

// jaccard is |N(a) ∩ N(b)| / |N(a) ∪ N(b)|. Symmetric; zero when either
// neighborhood is empty. Self-pairs are never scored.
func (g graph) jaccard(a, b string) float64 {
	na, nb := g.neighbors(a), g.neighbors(b)
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}

	intersection := 0
	for n := range na {
		if nb.contains(n) {
			intersection++
		}
	}
	union := len(na) + len(nb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// adamicAdar sums 1/ln(degree) over common neighbors, weighting rare shared
// connections above well-connected hubs. Degree-1 neighbors are skipped
// (ln 1 = 0).
func (g graph) adamicAdar(a, b string) float64 {
	na, nb := g.neighbors(a), g.neighbors(b)
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}

	sum := 0.0
	for n := range na {
		if !nb.contains(n) {
			continue
		}
		degree := g.degree(n)
		if degree > 1 {
			sum += 1.0 / math.Log(float64(degree))
		}
	}
	return sum
}
