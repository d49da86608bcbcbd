package trip

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// earthRadiusMeters is the mean earth radius used for the local
// projection and for haversine distances.
const earthRadiusMeters = 6371000.0

// Projection is a local equirectangular projection anchored at an
// origin. Within a metro-scale zone the round trip through ToPlanar and
// ToGeographic is accurate to well under a meter, which is all the
// buffer and clustering thresholds need.
type Projection struct {
	origin orb.Point
	cosLat float64
}

// NewProjection anchors a projection at origin (lon, lat).
func NewProjection(origin orb.Point) *Projection {
	return &Projection{
		origin: origin,
		cosLat: math.Cos(origin[1] * math.Pi / 180),
	}
}

// Origin returns the anchor point in geographic coordinates.
func (p *Projection) Origin() orb.Point { return p.origin }

// ToPlanar projects a geographic point (lon, lat) into local planar
// meters relative to the origin.
func (p *Projection) ToPlanar(pt orb.Point) orb.Point {
	x := earthRadiusMeters * (pt[0] - p.origin[0]) * math.Pi / 180 * p.cosLat
	y := earthRadiusMeters * (pt[1] - p.origin[1]) * math.Pi / 180
	return orb.Point{x, y}
}

// ToGeographic is the inverse of ToPlanar.
func (p *Projection) ToGeographic(pt orb.Point) orb.Point {
	lon := p.origin[0] + pt[0]/(earthRadiusMeters*p.cosLat)*180/math.Pi
	lat := p.origin[1] + pt[1]/earthRadiusMeters*180/math.Pi
	return orb.Point{lon, lat}
}

// bufferSegments is the number of arc segments used to approximate a
// circular buffer.
const bufferSegments = 64

// Buffer returns a circular polygon of the given radius around a planar
// center point.
func Buffer(center orb.Point, radiusMeters float64) orb.Polygon {
	ring := make(orb.Ring, 0, bufferSegments+1)
	for i := 0; i < bufferSegments; i++ {
		theta := 2 * math.Pi * float64(i) / bufferSegments
		ring = append(ring, orb.Point{
			center[0] + radiusMeters*math.Cos(theta),
			center[1] + radiusMeters*math.Sin(theta),
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Within reports whether a planar point lies inside a planar polygon.
func Within(pt orb.Point, poly orb.Polygon) bool {
	return planar.PolygonContains(poly, pt)
}

// PlanarDistance returns the euclidean distance between two planar
// points.
func PlanarDistance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// ConvexHull computes the convex hull of a planar point set using the
// monotone chain algorithm. It returns a closed counterclockwise ring,
// or nil when fewer than three distinct points are present.
func ConvexHull(points []orb.Point) orb.Ring {
	distinct := dedupePoints(points)
	if len(distinct) < 3 {
		return nil
	}

	sort.Slice(distinct, func(i, j int) bool {
		if distinct[i][0] != distinct[j][0] {
			return distinct[i][0] < distinct[j][0]
		}
		return distinct[i][1] < distinct[j][1]
	})

	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	n := len(distinct)
	hull := make([]orb.Point, 0, 2*n)

	// Lower chain.
	for _, pt := range distinct {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}

	// Upper chain.
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		pt := distinct[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}

	// Collinear input collapses to a degenerate chain.
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}

func dedupePoints(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]struct{}, len(points))
	out := make([]orb.Point, 0, len(points))
	for _, pt := range points {
		if _, ok := seen[pt]; ok {
			continue
		}
		seen[pt] = struct{}{}
		out = append(out, pt)
	}
	return out
}
