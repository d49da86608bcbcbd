package trip

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ClustersToFeatureCollection exports cluster hulls as polygon features
// for the map UI. Clusters without a hull (fewer than three distinct
// points) contribute no feature.
func ClustersToFeatureCollection(assignments ...ClusterAssignment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range assignments {
		for _, c := range a.Clusters {
			if c.Hull == nil {
				continue
			}
			f := geojson.NewFeature(orb.Polygon{c.Hull})
			f.Properties = geojson.Properties{
				"category": string(a.Category),
				"label":    c.Label,
				"size":     len(c.Members),
			}
			fc.Append(f)
		}
	}
	return fc
}

// TourToFeatureCollection exports a planned tour as a polyline feature
// plus one point feature per stop in visiting order.
func TourToFeatureCollection(tour *TourResult, hotel Hotel, stops []Attraction) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(tour.Polyline) > 1 {
		line := geojson.NewFeature(tour.Polyline)
		line.Properties = geojson.Properties{
			"strategy":    tour.Strategy,
			"totalMeters": tour.TotalMeters,
			"gaps":        tour.Gaps,
		}
		fc.Append(line)
	}

	locations := map[string]orb.Point{hotel.Name: hotel.Location}
	for _, s := range stops {
		locations[s.Name] = s.Location
	}

	for i, name := range tour.Stops {
		loc, ok := locations[name]
		if !ok {
			continue
		}
		pt := geojson.NewFeature(loc)
		pt.Properties = geojson.Properties{
			"name":  name,
			"order": i,
			"hotel": i == 0,
		}
		fc.Append(pt)
	}
	return fc
}

// ScoredHotelsToFeatureCollection exports scored hotels as point
// features carrying their scores and display band.
func ScoredHotelsToFeatureCollection(scored []ScoredHotel) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range scored {
		f := geojson.NewFeature(s.Hotel.Location)
		counts := make(map[string]int, len(s.CategoryCounts))
		for cat, n := range s.CategoryCounts {
			counts[string(cat)] = n
		}
		f.Properties = geojson.Properties{
			"name":     s.Hotel.Name,
			"address":  formatAddress(s.Hotel),
			"score":    s.TotalScore,
			"band":     ScoreBand(s.TotalScore),
			"counts":   counts,
		}
		fc.Append(f)
	}
	return fc
}

func formatAddress(h Hotel) string {
	addr := ""
	if h.HouseNumber != "" {
		addr += h.HouseNumber + " "
	}
	if h.Unit != "" {
		addr += h.Unit + " "
	}
	if h.Street != "" {
		addr += h.Street + ", "
	}
	addr += h.City + ", " + h.Province + " " + h.Postcode
	return addr
}
