package trip

import "math"

// approxTSPOrder computes an open visiting order over the cost matrix,
// starting at vertex 0 and visiting every vertex exactly once. It
// builds a minimum spanning tree (Prim), takes its preorder walk, then
// tightens the walk with a 2-opt pass. Returns nil when the matrix is
// disconnected, since no spanning order exists.
func approxTSPOrder(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []int{0}
	}

	parent := primMST(cost)
	if parent == nil {
		return nil
	}

	children := make([][]int, n)
	for v := 1; v < n; v++ {
		p := parent[v]
		children[p] = append(children[p], v)
	}

	order := make([]int, 0, n)
	var walk func(v int)
	walk = func(v int) {
		order = append(order, v)
		for _, c := range children[v] {
			walk(c)
		}
	}
	walk(0)

	return twoOptOpen(order, cost)
}

// primMST returns the parent of each vertex in a minimum spanning tree
// rooted at 0, or nil when some vertex is unreachable.
func primMST(cost [][]float64) []int {
	n := len(cost)
	inTree := make([]bool, n)
	best := make([]float64, n)
	parent := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
		parent[i] = -1
	}
	best[0] = 0

	for range n {
		u := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (u == -1 || best[v] < best[u]) {
				u = v
			}
		}
		if math.IsInf(best[u], 1) {
			return nil
		}
		inTree[u] = true
		for v := 0; v < n; v++ {
			if !inTree[v] && cost[u][v] < best[v] {
				best[v] = cost[u][v]
				parent[v] = u
			}
		}
	}
	return parent
}

// twoOptOpen improves an open path with 2-opt segment reversals. The
// start vertex stays fixed; the end is free.
func twoOptOpen(order []int, cost [][]float64) []int {
	n := len(order)
	improved := true
	for improved {
		improved = false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				delta := reversalDelta(order, cost, i, j)
				if delta < -1e-9 {
					reverse(order, i, j)
					improved = true
				}
			}
		}
	}
	return order
}

// reversalDelta is the path length change from reversing order[i..j].
func reversalDelta(order []int, cost [][]float64, i, j int) float64 {
	n := len(order)
	removed := cost[order[i-1]][order[i]]
	added := cost[order[i-1]][order[j]]
	if j < n-1 {
		removed += cost[order[j]][order[j+1]]
		added += cost[order[i]][order[j+1]]
	}
	return added - removed
}

func reverse(order []int, i, j int) {
	for i < j {
		order[i], order[j] = order[j], order[i]
		i++
		j--
	}
}

// greedyNNOrder computes a visiting order by repeatedly hopping to the
// nearest unvisited vertex, starting at 0. Returns nil when the walk
// strands with only unreachable vertices left.
func greedyNNOrder(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}

	visited := make([]bool, n)
	order := make([]int, 1, n)
	order[0] = 0
	visited[0] = true
	cur := 0

	for len(order) < n {
		next := -1
		bestDist := math.Inf(1)
		for v := 0; v < n; v++ {
			if !visited[v] && cost[cur][v] < bestDist {
				bestDist = cost[cur][v]
				next = v
			}
		}
		if next == -1 {
			return nil
		}
		visited[next] = true
		order = append(order, next)
		cur = next
	}
	return order
}
