package trip

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

const (
	// DefaultFetchRadiusFloor is the minimum walking network fetch
	// radius around the hotel.
	DefaultFetchRadiusFloor = 5000.0

	// DefaultSafetyMargin is added to the farthest straight-line stop
	// distance so street detours near the boundary stay inside the
	// fetched region.
	DefaultSafetyMargin = 500.0

	// DefaultRouteTimeout bounds walking network acquisition per request.
	DefaultRouteTimeout = 2 * time.Minute
)

// RouteEngine plans walking tours from a hotel through attraction
// stops on a real street network.
type RouteEngine struct {
	Provider         Provider
	FetchRadiusFloor float64
	SafetyMargin     float64
	Timeout          time.Duration
}

// NewRouteEngine creates an engine with default radii and timeout.
func NewRouteEngine(provider Provider) *RouteEngine {
	return &RouteEngine{
		Provider:         provider,
		FetchRadiusFloor: DefaultFetchRadiusFloor,
		SafetyMargin:     DefaultSafetyMargin,
		Timeout:          DefaultRouteTimeout,
	}
}

// tourPlan holds the resolved network state shared by both strategies.
// The cost matrix indexes the hotel at 0 and stops at 1..n; unreachable
// pairs hold +Inf.
type tourPlan struct {
	graph *Graph
	names []string
	nodes []int64
	cost  [][]float64
}

// PlanApproxTSP plans an open tour: the hotel first, every stop exactly
// once, no return leg. The visiting order comes from an MST-based TSP
// approximation over real street distances.
func (e *RouteEngine) PlanApproxTSP(ctx context.Context, hotel Hotel, stops []Attraction) (*TourResult, error) {
	plan, err := e.prepare(ctx, hotel, stops)
	if err != nil {
		return nil, err
	}

	order := approxTSPOrder(plan.cost)
	if order == nil {
		return nil, fmt.Errorf("%w: network does not connect all stops", ErrRouteUnavailable)
	}
	return plan.stitch(StrategyApproxTSP, order, false), nil
}

// PlanGreedyNN plans a closed loop: from the hotel, repeatedly walk to
// the nearest unvisited stop by street distance, then return to the
// hotel.
func (e *RouteEngine) PlanGreedyNN(ctx context.Context, hotel Hotel, stops []Attraction) (*TourResult, error) {
	plan, err := e.prepare(ctx, hotel, stops)
	if err != nil {
		return nil, err
	}

	order := greedyNNOrder(plan.cost)
	if order == nil {
		return nil, fmt.Errorf("%w: network does not connect all stops", ErrRouteUnavailable)
	}
	return plan.stitch(StrategyGreedyNN, order, true), nil
}

// PlanBoth runs both strategies over one shared network fetch. Either
// result may fail independently.
func (e *RouteEngine) PlanBoth(ctx context.Context, hotel Hotel, stops []Attraction) (tsp *TourResult, nn *TourResult, err error) {
	plan, err := e.prepare(ctx, hotel, stops)
	if err != nil {
		return nil, nil, err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if order := approxTSPOrder(plan.cost); order != nil {
			tsp = plan.stitch(StrategyApproxTSP, order, false)
		}
	}()
	go func() {
		defer wg.Done()
		if order := greedyNNOrder(plan.cost); order != nil {
			nn = plan.stitch(StrategyGreedyNN, order, true)
		}
	}()
	wg.Wait()

	if tsp == nil && nn == nil {
		return nil, nil, fmt.Errorf("%w: network does not connect all stops", ErrRouteUnavailable)
	}
	return tsp, nn, nil
}

// prepare validates the request, fetches the walking network, resolves
// every location onto it, and builds the all-pairs cost matrix.
func (e *RouteEngine) prepare(ctx context.Context, hotel Hotel, stops []Attraction) (*tourPlan, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops requested", ErrDegenerateInput)
	}
	if !ValidLocation(hotel.Location) {
		return nil, fmt.Errorf("%w: hotel %q has invalid coordinates", ErrDegenerateInput, hotel.Name)
	}
	for _, s := range stops {
		if !ValidLocation(s.Location) {
			return nil, fmt.Errorf("%w: stop %q has invalid coordinates", ErrDegenerateInput, s.Name)
		}
	}

	radius := e.fetchRadius(hotel, stops)

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultRouteTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	graph, err := e.Provider.FetchWalkingGraph(fetchCtx, hotel.Location, radius)
	if err != nil {
		return nil, err
	}

	plan := &tourPlan{
		graph: graph,
		names: make([]string, 0, len(stops)+1),
		nodes: make([]int64, 0, len(stops)+1),
	}

	hotelNode, ok := graph.NearestNode(hotel.Location)
	if !ok {
		return nil, fmt.Errorf("%w: hotel %q cannot be placed on the walking network", ErrDegenerateInput, hotel.Name)
	}
	plan.names = append(plan.names, hotel.Name)
	plan.nodes = append(plan.nodes, hotelNode)

	for _, s := range stops {
		node, ok := graph.NearestNode(s.Location)
		if !ok {
			return nil, fmt.Errorf("%w: stop %q cannot be placed on the walking network", ErrDegenerateInput, s.Name)
		}
		plan.names = append(plan.names, s.Name)
		plan.nodes = append(plan.nodes, node)
	}

	plan.cost = costMatrix(graph, plan.nodes)
	return plan, nil
}

// fetchRadius sizes the network fetch to cover every stop with margin.
func (e *RouteEngine) fetchRadius(hotel Hotel, stops []Attraction) float64 {
	floor := e.FetchRadiusFloor
	if floor <= 0 {
		floor = DefaultFetchRadiusFloor
	}
	margin := e.SafetyMargin
	if margin <= 0 {
		margin = DefaultSafetyMargin
	}

	farthest := 0.0
	for _, s := range stops {
		if d := HaversineMeters(hotel.Location, s.Location); d > farthest {
			farthest = d
		}
	}
	return math.Max(floor, farthest+margin)
}

// costMatrix computes street distances between every pair of resolved
// nodes, one Dijkstra traversal per row.
func costMatrix(g *Graph, nodes []int64) [][]float64 {
	n := len(nodes)
	cost := make([][]float64, n)
	for i := range cost {
		lengths := g.PathLengthsFrom(nodes[i], nodes)
		row := make([]float64, n)
		for j, target := range nodes {
			row[j] = lengths[target]
		}
		row[i] = 0
		cost[i] = row
	}
	return cost
}

// stitch turns a visiting order into a TourResult with per-segment
// distances and a concatenated street polyline. A segment whose
// geometry cannot be recovered is logged and skipped in the polyline
// but keeps its distance entry.
func (p *tourPlan) stitch(strategy string, order []int, closed bool) *TourResult {
	result := &TourResult{
		Strategy: strategy,
		Stops:    make([]string, len(order)),
	}
	for i, idx := range order {
		result.Stops[i] = p.names[idx]
	}

	hops := make([][2]int, 0, len(order))
	for i := 1; i < len(order); i++ {
		hops = append(hops, [2]int{order[i-1], order[i]})
	}
	if closed {
		hops = append(hops, [2]int{order[len(order)-1], order[0]})
	}

	for _, hop := range hops {
		from, to := p.nodes[hop[0]], p.nodes[hop[1]]
		path, meters := p.graph.ShortestPath(from, to)

		result.SegmentMeters = append(result.SegmentMeters, meters)
		result.TotalMeters += meters

		if path == nil {
			log.Printf("[route] %s: cannot stitch segment %s -> %s, keeping distance only",
				strategy, p.names[hop[0]], p.names[hop[1]])
			result.Gaps++
			continue
		}
		for i, nodeID := range path {
			// Consecutive segments share a joint node; keep one copy.
			if i == 0 && len(result.Polyline) > 0 {
				continue
			}
			if loc, ok := p.graph.NodeLocation(nodeID); ok {
				result.Polyline = append(result.Polyline, loc)
			}
		}
	}

	return result
}
