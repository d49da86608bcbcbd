package trip

import (
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

const noiseLabel = -1

// clusterPoint adapts a projected amenity for quadtree storage.
type clusterPoint struct {
	idx int
	pt  orb.Point
}

func (c *clusterPoint) Point() orb.Point { return c.pt }

// ClusterAmenities runs density-based clustering (DBSCAN) over the
// amenities of a single category. Points are projected into local
// planar meters before any distance comparison. Noise points are
// excluded from the result; clusters keep the order in which their
// first member appears in the input, so a fixed input order yields a
// fixed output.
func ClusterAmenities(amenities []Amenity, category Category, params ClusterParams) ClusterAssignment {
	assignment := ClusterAssignment{Category: category, Params: params}

	members := make([]Amenity, 0, len(amenities))
	for _, a := range amenities {
		if a.Category != category {
			continue
		}
		if !ValidLocation(a.Location) {
			log.Printf("[cluster] dropping amenity %d (%s): invalid coordinates (%.4f, %.4f)",
				a.ID, a.RawTag, a.Location[0], a.Location[1])
			continue
		}
		members = append(members, a)
	}
	if len(members) == 0 {
		return assignment
	}

	proj := NewProjection(members[0].Location)
	planarPts := make([]orb.Point, len(members))
	for i, a := range members {
		planarPts[i] = proj.ToPlanar(a.Location)
	}

	labels := dbscan(planarPts, params.EpsMeters, params.MinSamples)

	// Group members by label, preserving first-appearance order.
	order := make([]int, 0)
	byLabel := make(map[int][]int)
	for i, label := range labels {
		if label == noiseLabel {
			continue
		}
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], i)
	}

	for _, label := range order {
		idxs := byLabel[label]
		cluster := Cluster{Label: label, Members: make([]Amenity, 0, len(idxs))}
		hullInput := make([]orb.Point, 0, len(idxs))
		for _, i := range idxs {
			cluster.Members = append(cluster.Members, members[i])
			hullInput = append(hullInput, planarPts[i])
		}
		if hull := ConvexHull(hullInput); hull != nil {
			geoHull := make(orb.Ring, len(hull))
			for i, pt := range hull {
				geoHull[i] = proj.ToGeographic(pt)
			}
			cluster.Hull = geoHull
		}
		assignment.Clusters = append(assignment.Clusters, cluster)
	}

	return assignment
}

// dbscan labels each planar point with a cluster id or noiseLabel. The
// neighborhood count includes the point itself.
func dbscan(points []orb.Point, eps float64, minSamples int) []int {
	const unvisited = -2

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	qt := buildQuadtree(points, eps)
	nextLabel := 0

	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := regionQuery(qt, points, i, eps)
		if len(neighbors) < minSamples {
			labels[i] = noiseLabel
			continue
		}

		label := nextLabel
		nextLabel++
		labels[i] = label

		// Expand the cluster breadth-first from the seed's neighborhood.
		queue := append([]int(nil), neighbors...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == noiseLabel {
				labels[j] = label // border point
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = label

			jNeighbors := regionQuery(qt, points, j, eps)
			if len(jNeighbors) >= minSamples {
				queue = append(queue, jNeighbors...)
			}
		}
	}

	return labels
}

func buildQuadtree(points []orb.Point, pad float64) *quadtree.Quadtree {
	bound := orb.MultiPoint(points).Bound().Pad(pad)
	qt := quadtree.New(bound)
	for i := range points {
		// Add only fails for points outside the bound, which the pad rules out.
		_ = qt.Add(&clusterPoint{idx: i, pt: points[i]})
	}
	return qt
}

// regionQuery returns the indices of all points within eps of point i,
// including i itself.
func regionQuery(qt *quadtree.Quadtree, points []orb.Point, i int, eps float64) []int {
	center := points[i]
	box := orb.Bound{
		Min: orb.Point{center[0] - eps, center[1] - eps},
		Max: orb.Point{center[0] + eps, center[1] + eps},
	}

	var neighbors []int
	for _, ptr := range qt.InBound(nil, box) {
		cp := ptr.(*clusterPoint)
		if PlanarDistance(center, cp.pt) <= eps {
			neighbors = append(neighbors, cp.idx)
		}
	}
	return neighbors
}
