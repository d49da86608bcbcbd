package trip

import (
	"container/heap"
	"context"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

// Node is a walking network junction in geographic coordinates.
type Node struct {
	ID       int64
	Location orb.Point
}

func (n *Node) Point() orb.Point { return n.Location }

type edge struct {
	to     int64
	meters float64
}

// Graph is an undirected walking network with edge lengths in meters.
type Graph struct {
	nodes map[int64]*Node
	adj   map[int64][]edge
	index *quadtree.Quadtree
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[int64]*Node),
		adj:   make(map[int64][]edge),
	}
}

// AddNode registers a junction. Re-adding an existing id replaces its
// location and invalidates the spatial index.
func (g *Graph) AddNode(id int64, loc orb.Point) {
	g.nodes[id] = &Node{ID: id, Location: loc}
	g.index = nil
}

// AddEdge connects two registered nodes in both directions. Unknown
// endpoints and non-positive lengths are ignored.
func (g *Graph) AddEdge(from, to int64, meters float64) {
	if meters <= 0 || from == to {
		return
	}
	if _, ok := g.nodes[from]; !ok {
		return
	}
	if _, ok := g.nodes[to]; !ok {
		return
	}
	g.adj[from] = append(g.adj[from], edge{to: to, meters: meters})
	g.adj[to] = append(g.adj[to], edge{to: from, meters: meters})
}

// NodeCount returns the number of junctions.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeLocation returns the coordinates of a node.
func (g *Graph) NodeLocation(id int64) (orb.Point, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return orb.Point{}, false
	}
	return n.Location, true
}

// NearestNode returns the network node closest to a geographic point,
// or false when the graph is empty.
func (g *Graph) NearestNode(pt orb.Point) (int64, bool) {
	if len(g.nodes) == 0 {
		return 0, false
	}
	if g.index == nil {
		g.buildIndex()
	}
	found := g.index.Find(pt)
	if found == nil {
		return 0, false
	}
	return found.(*Node).ID, true
}

func (g *Graph) buildIndex() {
	pts := make([]orb.Point, 0, len(g.nodes))
	for _, n := range g.nodes {
		pts = append(pts, n.Location)
	}
	qt := quadtree.New(orb.MultiPoint(pts).Bound().Pad(1e-6))
	for _, n := range g.nodes {
		_ = qt.Add(n)
	}
	g.index = qt
}

// ShortestPath returns the node sequence and total length in meters of
// the shortest walk between two nodes. An unreachable target yields a
// nil path and +Inf, not an error.
func (g *Graph) ShortestPath(from, to int64) ([]int64, float64) {
	dist, prev := g.dijkstra(from, to)
	d, ok := dist[to]
	if !ok {
		return nil, math.Inf(1)
	}

	path := []int64{to}
	for path[len(path)-1] != from {
		path = append(path, prev[path[len(path)-1]])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, d
}

// PathLength returns just the shortest-walk length between two nodes,
// +Inf when unreachable.
func (g *Graph) PathLength(from, to int64) float64 {
	_, d := g.ShortestPath(from, to)
	return d
}

// PathLengthsFrom returns the shortest-walk length from one source to
// each of the given targets in a single traversal. Unreachable targets
// map to +Inf.
func (g *Graph) PathLengthsFrom(from int64, targets []int64) map[int64]float64 {
	dist, _ := g.dijkstra(from, noStop)
	out := make(map[int64]float64, len(targets))
	for _, t := range targets {
		if d, ok := dist[t]; ok {
			out[t] = d
		} else {
			out[t] = math.Inf(1)
		}
	}
	return out
}

// noStop disables early termination in dijkstra. OSM node ids are
// positive so the sentinel never collides.
const noStop = int64(math.MinInt64)

// dijkstra runs a full shortest-path traversal from the source. When
// stopAt names a node the traversal halts early once that node is
// settled. The heap holds stale duplicate entries instead of a
// decrease-key operation; settled nodes are skipped on pop.
func (g *Graph) dijkstra(from, stopAt int64) (map[int64]float64, map[int64]int64) {
	dist := make(map[int64]float64, len(g.nodes))
	prev := make(map[int64]int64)
	settled := make(map[int64]bool, len(g.nodes))

	if _, ok := g.nodes[from]; !ok {
		return dist, prev
	}

	pq := &nodeQueue{{id: from, dist: 0}}
	dist[from] = 0

	for pq.Len() > 0 {
		item := heap.Pop(pq).(nodeItem)
		if settled[item.id] {
			continue
		}
		settled[item.id] = true
		if item.id == stopAt {
			break
		}

		for _, e := range g.adj[item.id] {
			if settled[e.to] {
				continue
			}
			next := item.dist + e.meters
			if cur, ok := dist[e.to]; !ok || next < cur {
				dist[e.to] = next
				prev[e.to] = item.id
				heap.Push(pq, nodeItem{id: e.to, dist: next})
			}
		}
	}

	return dist, prev
}

type nodeItem struct {
	id   int64
	dist float64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// HaversineMeters returns the great-circle distance between two
// geographic points.
func HaversineMeters(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// Provider supplies walking networks for a region.
type Provider interface {
	FetchWalkingGraph(ctx context.Context, center orb.Point, radiusMeters float64) (*Graph, error)
}
