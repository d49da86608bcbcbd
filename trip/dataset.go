package trip

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Address fallbacks applied when the source data leaves fields blank.
const (
	defaultProvince = "BC"
	defaultCity     = "Vancouver"
	defaultPostcode = "N/A"
)

// LoadHotels reads hotels from a GeoJSON feature collection. Nameless
// features are dropped, polygon footprints collapse to their centroid,
// and missing address fields receive the regional defaults.
func LoadHotels(path string) ([]Hotel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hotels file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing hotels GeoJSON: %w", err)
	}

	hotels := make([]Hotel, 0, len(fc.Features))
	for _, f := range fc.Features {
		name := propString(f, "name")
		if name == "" {
			continue
		}

		loc, ok := representativePoint(f.Geometry)
		if !ok || !ValidLocation(loc) {
			log.Printf("[dataset] dropping hotel %q: no usable geometry", name)
			continue
		}

		h := Hotel{
			ID:          int64(len(hotels) + 1),
			Name:        name,
			HouseNumber: propString(f, "addr:housenumber"),
			Unit:        propString(f, "addr:unit"),
			Street:      propString(f, "addr:street"),
			City:        propString(f, "addr:city"),
			Province:    propString(f, "addr:province"),
			Postcode:    propString(f, "addr:postcode"),
			Location:    loc,
		}
		if h.Province == "" {
			h.Province = defaultProvince
		}
		if h.City == "" {
			h.City = defaultCity
		}
		if h.Postcode == "" {
			h.Postcode = defaultPostcode
		}
		hotels = append(hotels, h)
	}

	if len(hotels) == 0 {
		return nil, ErrNoHotels
	}
	return hotels, nil
}

func propString(f *geojson.Feature, key string) string {
	if v, ok := f.Properties[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// representativePoint collapses a geometry to one coordinate: points
// stay as they are, rings and polygons become their centroid.
func representativePoint(g orb.Geometry) (orb.Point, bool) {
	switch geom := g.(type) {
	case orb.Point:
		return geom, true
	case orb.Polygon, orb.Ring, orb.MultiPolygon, orb.LineString:
		c, _ := planar.CentroidArea(geom)
		return c, true
	default:
		return orb.Point{}, false
	}
}

// LoadAmenities reads amenities from a CSV with header columns lat,
// lon, amenity and name. Rows with malformed coordinates are logged and
// skipped. The raw amenity tag resolves to a Category, with unknown
// tags falling into the catch-all.
func LoadAmenities(path string) ([]Amenity, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("reading amenities file: %w", err)
	}

	amenities := make([]Amenity, 0, len(rows))
	for i, row := range rows {
		lat, latErr := strconv.ParseFloat(field(row, cols, "lat"), 64)
		lon, lonErr := strconv.ParseFloat(field(row, cols, "lon"), 64)
		loc := orb.Point{lon, lat}
		if latErr != nil || lonErr != nil || !ValidLocation(loc) {
			log.Printf("[dataset] skipping amenity row %d: bad coordinates", i+2)
			continue
		}

		tag := field(row, cols, "amenity")
		amenities = append(amenities, Amenity{
			ID:       int64(len(amenities) + 1),
			Name:     field(row, cols, "name"),
			RawTag:   tag,
			Category: ParseCategory(tag),
			Location: loc,
		})
	}
	return amenities, nil
}

// LoadAttractions reads tour stop candidates from a CSV with header
// columns name, lat and lon.
func LoadAttractions(path string) ([]Attraction, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("reading attractions file: %w", err)
	}

	attractions := make([]Attraction, 0, len(rows))
	for i, row := range rows {
		name := field(row, cols, "name")
		if name == "" {
			continue
		}
		lat, latErr := strconv.ParseFloat(field(row, cols, "lat"), 64)
		lon, lonErr := strconv.ParseFloat(field(row, cols, "lon"), 64)
		loc := orb.Point{lon, lat}
		if latErr != nil || lonErr != nil || !ValidLocation(loc) {
			log.Printf("[dataset] skipping attraction row %d (%s): bad coordinates", i+2, name)
			continue
		}
		attractions = append(attractions, Attraction{
			ID:          int64(len(attractions) + 1),
			Name:        name,
			Street:      field(row, cols, "street"),
			Description: field(row, cols, "description"),
			Location:    loc,
		})
	}
	return attractions, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	return records[1:], cols, nil
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// SortAttractionsByDistance returns a copy of attractions sorted by
// straight-line distance from the hotel, with DistanceKm filled in.
func SortAttractionsByDistance(hotel Hotel, attractions []Attraction) []Attraction {
	sorted := make([]Attraction, len(attractions))
	copy(sorted, attractions)
	for i := range sorted {
		sorted[i].DistanceKm = HaversineMeters(hotel.Location, sorted[i].Location) / 1000
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DistanceKm < sorted[j].DistanceKm
	})
	return sorted
}
