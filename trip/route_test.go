package trip

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves a fixed graph and records fetch calls.
type fakeProvider struct {
	graph  *Graph
	err    error
	calls  int
	radius float64
}

func (p *fakeProvider) FetchWalkingGraph(_ context.Context, center orb.Point, radiusMeters float64) (*Graph, error) {
	p.calls++
	p.radius = radiusMeters
	if p.err != nil {
		return nil, &NetworkError{Center: center, RadiusMeters: radiusMeters, Err: p.err}
	}
	return p.graph, nil
}

// downtownGrid builds a 5x5 street grid around the Vancouver origin
// with 200m blocks.
func downtownGrid() *Graph {
	proj := NewProjection(vancouverOrigin)
	g := NewGraph()

	id := func(row, col int) int64 { return int64(row*5 + col + 1) }
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			loc := proj.ToGeographic(orb.Point{float64(col) * 200, float64(row) * 200})
			g.AddNode(id(row, col), loc)
		}
	}
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			if col < 4 {
				g.AddEdge(id(row, col), id(row, col+1), 200)
			}
			if row < 4 {
				g.AddEdge(id(row, col), id(row+1, col), 200)
			}
		}
	}
	return g
}

func gridAttraction(name string, dx, dy float64) Attraction {
	return Attraction{Name: name, Location: metersToDegrees(dx, dy)}
}

func downtownHotel() Hotel {
	return Hotel{Name: "Hotel Vancouver", Location: orb.Point{-123.1207, 49.2827}}
}

// ---------------------------------------------------------------------------
// PlanGreedyNN
// ---------------------------------------------------------------------------

func TestPlanGreedyNN_ClosedTour(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)

	stops := []Attraction{
		gridAttraction("Gallery", 400, 0),
		gridAttraction("Waterfront", 800, 800),
	}

	tour, err := engine.PlanGreedyNN(context.Background(), downtownHotel(), stops)
	require.NoError(t, err)

	// Closed loop: hotel -> Gallery -> Waterfront -> hotel.
	assert.Equal(t, StrategyGreedyNN, tour.Strategy)
	assert.Equal(t, []string{"Hotel Vancouver", "Gallery", "Waterfront"}, tour.Stops)
	require.Len(t, tour.SegmentMeters, 3)

	assert.Equal(t, 400.0, tour.SegmentMeters[0])  // 2 blocks east
	assert.Equal(t, 1200.0, tour.SegmentMeters[1]) // 2 east + 4 north
	assert.Equal(t, 1600.0, tour.SegmentMeters[2]) // back to the hotel
	assert.Equal(t, 3200.0, tour.TotalMeters)
	assert.Zero(t, tour.Gaps)
}

func TestPlanGreedyNN_VisitsNearestFirst(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)

	// Farther stop listed first; greedy must reorder by street distance.
	stops := []Attraction{
		gridAttraction("Far", 800, 800),
		gridAttraction("Near", 200, 0),
	}

	tour, err := engine.PlanGreedyNN(context.Background(), downtownHotel(), stops)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hotel Vancouver", "Near", "Far"}, tour.Stops)
}

// ---------------------------------------------------------------------------
// PlanApproxTSP
// ---------------------------------------------------------------------------

func TestPlanApproxTSP_OpenTour(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)

	stops := []Attraction{
		gridAttraction("A", 400, 0),
		gridAttraction("B", 800, 400),
		gridAttraction("C", 200, 600),
	}

	tour, err := engine.PlanApproxTSP(context.Background(), downtownHotel(), stops)
	require.NoError(t, err)

	// Open tour: hotel plus 3 stops, 3 segments, no return leg.
	assert.Equal(t, StrategyApproxTSP, tour.Strategy)
	require.Len(t, tour.Stops, 4)
	assert.Equal(t, "Hotel Vancouver", tour.Stops[0])
	assert.Len(t, tour.SegmentMeters, 3)

	seen := make(map[string]int)
	for _, name := range tour.Stops {
		seen[name]++
	}
	for _, name := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, seen[name], "stop %s should appear exactly once", name)
	}
}

func TestPlanApproxTSP_PolylineFollowsStreets(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)

	stops := []Attraction{gridAttraction("A", 400, 400)}

	tour, err := engine.PlanApproxTSP(context.Background(), downtownHotel(), stops)
	require.NoError(t, err)

	// Hotel node to A is 4 blocks: 5 nodes on the stitched polyline.
	assert.Len(t, tour.Polyline, 5)
	assert.Equal(t, 800.0, tour.TotalMeters)
}

// ---------------------------------------------------------------------------
// shared behavior
// ---------------------------------------------------------------------------

func TestPlan_DegenerateInputs(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)
	ctx := context.Background()

	_, err := engine.PlanGreedyNN(ctx, downtownHotel(), nil)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	badHotel := Hotel{Name: "Nowhere", Location: orb.Point{500, 100}}
	_, err = engine.PlanApproxTSP(ctx, badHotel, []Attraction{gridAttraction("A", 200, 0)})
	assert.ErrorIs(t, err, ErrDegenerateInput)

	badStop := Attraction{Name: "Lost", Location: orb.Point{500, 100}}
	_, err = engine.PlanApproxTSP(ctx, downtownHotel(), []Attraction{badStop})
	assert.ErrorIs(t, err, ErrDegenerateInput)

	// Degenerate inputs are rejected before any network fetch.
	assert.Zero(t, provider.calls)
}

func TestPlan_RouteUnavailable(t *testing.T) {
	// Two disconnected grid components: the stop resolves onto an
	// island the hotel cannot reach.
	proj := NewProjection(vancouverOrigin)
	g := NewGraph()
	g.AddNode(1, proj.ToGeographic(orb.Point{0, 0}))
	g.AddNode(2, proj.ToGeographic(orb.Point{200, 0}))
	g.AddEdge(1, 2, 200)
	g.AddNode(10, proj.ToGeographic(orb.Point{5000, 5000}))
	g.AddNode(11, proj.ToGeographic(orb.Point{5200, 5000}))
	g.AddEdge(10, 11, 200)

	engine := NewRouteEngine(&fakeProvider{graph: g})

	stops := []Attraction{gridAttraction("Island", 5000, 5000)}
	_, err := engine.PlanGreedyNN(context.Background(), downtownHotel(), stops)
	assert.ErrorIs(t, err, ErrRouteUnavailable)

	_, err = engine.PlanApproxTSP(context.Background(), downtownHotel(), stops)
	assert.ErrorIs(t, err, ErrRouteUnavailable)
}

func TestPlan_NetworkErrorPropagates(t *testing.T) {
	cause := errors.New("overpass down")
	engine := NewRouteEngine(&fakeProvider{err: cause})

	_, err := engine.PlanGreedyNN(context.Background(), downtownHotel(),
		[]Attraction{gridAttraction("A", 200, 0)})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, downtownHotel().Location, netErr.Center)
}

func TestPlan_FetchRadiusCoversFarthestStop(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)

	// All stops inside the floor: radius is the floor.
	_, err := engine.PlanGreedyNN(context.Background(), downtownHotel(),
		[]Attraction{gridAttraction("A", 200, 0)})
	require.NoError(t, err)
	assert.Equal(t, DefaultFetchRadiusFloor, provider.radius)

	// A stop beyond the floor pushes the radius out by the margin.
	far := Attraction{Name: "Far", Location: metersToDegrees(7000, 0)}
	_, _ = engine.PlanGreedyNN(context.Background(), downtownHotel(), []Attraction{far})
	assert.Greater(t, provider.radius, 7000.0)
	assert.Less(t, provider.radius, 8500.0)
}

func TestPlanBoth_SingleFetch(t *testing.T) {
	provider := &fakeProvider{graph: downtownGrid()}
	engine := NewRouteEngine(provider)

	stops := []Attraction{
		gridAttraction("A", 400, 0),
		gridAttraction("B", 800, 800),
	}

	tsp, nn, err := engine.PlanBoth(context.Background(), downtownHotel(), stops)
	require.NoError(t, err)
	require.NotNil(t, tsp)
	require.NotNil(t, nn)

	assert.Equal(t, 1, provider.calls)
	assert.Len(t, tsp.SegmentMeters, 2) // open: one per stop
	assert.Len(t, nn.SegmentMeters, 3)  // closed: stops plus return
}
