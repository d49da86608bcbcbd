package trip

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// downtown Vancouver, the primary study area
var vancouverOrigin = orb.Point{-123.1207, 49.2827}

// ---------------------------------------------------------------------------
// Projection
// ---------------------------------------------------------------------------

func TestProjection_RoundTrip(t *testing.T) {
	proj := NewProjection(vancouverOrigin)

	points := []orb.Point{
		vancouverOrigin,
		{-123.1150, 49.2850},
		{-123.1000, 49.2900},
		{-123.2000, 49.2500},
	}

	for _, pt := range points {
		back := proj.ToGeographic(proj.ToPlanar(pt))
		if math.Abs(back[0]-pt[0]) > 1e-9 || math.Abs(back[1]-pt[1]) > 1e-9 {
			t.Errorf("round trip of %v = %v", pt, back)
		}
	}
}

func TestProjection_DistanceMatchesHaversine(t *testing.T) {
	proj := NewProjection(vancouverOrigin)

	a := orb.Point{-123.1207, 49.2827}
	b := orb.Point{-123.1100, 49.2880}

	planar := PlanarDistance(proj.ToPlanar(a), proj.ToPlanar(b))
	haversine := HaversineMeters(a, b)

	// Within a metro-scale zone the projection should be accurate to a
	// fraction of a percent.
	if math.Abs(planar-haversine)/haversine > 0.005 {
		t.Errorf("planar = %.1fm, haversine = %.1fm", planar, haversine)
	}
}

func TestProjection_OriginMapsToZero(t *testing.T) {
	proj := NewProjection(vancouverOrigin)
	p := proj.ToPlanar(vancouverOrigin)
	if p[0] != 0 || p[1] != 0 {
		t.Errorf("origin projects to %v, want (0, 0)", p)
	}
}

// ---------------------------------------------------------------------------
// Buffer / Within
// ---------------------------------------------------------------------------

func TestBuffer_ContainsInsidePoints(t *testing.T) {
	center := orb.Point{100, 200}
	buf := Buffer(center, 350)

	tests := []struct {
		name string
		pt   orb.Point
		want bool
	}{
		{"center", center, true},
		{"inside", orb.Point{100, 540}, true},
		{"just outside", orb.Point{100, 560}, false},
		{"far away", orb.Point{1000, 1000}, false},
	}

	for _, tt := range tests {
		if got := Within(tt.pt, buf); got != tt.want {
			t.Errorf("%s: Within(%v) = %v, want %v", tt.name, tt.pt, got, tt.want)
		}
	}
}

func TestBuffer_IsClosed(t *testing.T) {
	buf := Buffer(orb.Point{0, 0}, 100)
	ring := buf[0]
	if ring[0] != ring[len(ring)-1] {
		t.Error("buffer ring is not closed")
	}
	if len(ring) != bufferSegments+1 {
		t.Errorf("ring has %d points, want %d", len(ring), bufferSegments+1)
	}
}

// ---------------------------------------------------------------------------
// ConvexHull
// ---------------------------------------------------------------------------

func TestConvexHull_Square(t *testing.T) {
	points := []orb.Point{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 7}, // interior points
	}

	hull := ConvexHull(points)
	if hull == nil {
		t.Fatal("ConvexHull returned nil for a square")
	}
	if hull[0] != hull[len(hull)-1] {
		t.Error("hull ring is not closed")
	}
	// 4 corners plus the closing point.
	if len(hull) != 5 {
		t.Errorf("hull has %d points, want 5", len(hull))
	}

	for _, corner := range []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}} {
		found := false
		for _, pt := range hull {
			if pt == corner {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("corner %v missing from hull", corner)
		}
	}
}

func TestConvexHull_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		points []orb.Point
	}{
		{"empty", nil},
		{"single", []orb.Point{{1, 1}}},
		{"pair", []orb.Point{{1, 1}, {2, 2}}},
		{"duplicates", []orb.Point{{1, 1}, {1, 1}, {1, 1}, {1, 1}}},
		{"collinear", []orb.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
	}

	for _, tt := range tests {
		if hull := ConvexHull(tt.points); hull != nil {
			t.Errorf("%s: expected nil hull, got %v", tt.name, hull)
		}
	}
}

func TestConvexHull_Counterclockwise(t *testing.T) {
	hull := ConvexHull([]orb.Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}})
	if hull == nil {
		t.Fatal("nil hull")
	}

	// Shoelace area is positive for counterclockwise rings.
	area := 0.0
	for i := 0; i < len(hull)-1; i++ {
		area += hull[i][0]*hull[i+1][1] - hull[i+1][0]*hull[i][1]
	}
	if area <= 0 {
		t.Errorf("hull is not counterclockwise, shoelace area = %.1f", area)
	}
}
