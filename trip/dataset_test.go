package trip

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// LoadHotels
// ---------------------------------------------------------------------------

const hotelsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "name": "Hotel Vancouver",
        "addr:housenumber": "900",
        "addr:street": "West Georgia Street",
        "addr:postcode": "V6C 2W6"
      },
      "geometry": {"type": "Point", "coordinates": [-123.1207, 49.2827]}
    },
    {
      "type": "Feature",
      "properties": {"name": "Footprint Hotel"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[
          [-123.110, 49.280], [-123.108, 49.280],
          [-123.108, 49.282], [-123.110, 49.282],
          [-123.110, 49.280]
        ]]
      }
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "Point", "coordinates": [-123.100, 49.290]}
    }
  ]
}`

func TestLoadHotels(t *testing.T) {
	path := writeFixture(t, "hotels.geojson", hotelsGeoJSON)

	hotels, err := LoadHotels(path)
	if err != nil {
		t.Fatalf("LoadHotels: %v", err)
	}

	// The nameless feature is dropped.
	if len(hotels) != 2 {
		t.Fatalf("hotels = %d, want 2", len(hotels))
	}

	first := hotels[0]
	if first.Name != "Hotel Vancouver" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.HouseNumber != "900" || first.Street != "West Georgia Street" {
		t.Errorf("address = %q %q", first.HouseNumber, first.Street)
	}
	// Missing fields get regional defaults; present ones are kept.
	if first.City != "Vancouver" || first.Province != "BC" {
		t.Errorf("city/province = %q/%q, want defaults", first.City, first.Province)
	}
	if first.Postcode != "V6C 2W6" {
		t.Errorf("Postcode = %q, want V6C 2W6", first.Postcode)
	}

	// The polygon footprint collapses to its centroid.
	second := hotels[1]
	if second.Postcode != "N/A" {
		t.Errorf("Postcode = %q, want N/A", second.Postcode)
	}
	if second.Location[0] < -123.110 || second.Location[0] > -123.108 {
		t.Errorf("centroid lon = %f, outside footprint", second.Location[0])
	}
	if second.Location[1] < 49.280 || second.Location[1] > 49.282 {
		t.Errorf("centroid lat = %f, outside footprint", second.Location[1])
	}
}

func TestLoadHotels_AllNameless(t *testing.T) {
	path := writeFixture(t, "hotels.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {},
	     "geometry": {"type": "Point", "coordinates": [-123.1, 49.28]}}
	  ]
	}`)

	_, err := LoadHotels(path)
	if !errors.Is(err, ErrNoHotels) {
		t.Errorf("err = %v, want ErrNoHotels", err)
	}
}

func TestLoadHotels_MissingFile(t *testing.T) {
	if _, err := LoadHotels(filepath.Join(t.TempDir(), "nope.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

// ---------------------------------------------------------------------------
// LoadAmenities
// ---------------------------------------------------------------------------

func TestLoadAmenities(t *testing.T) {
	path := writeFixture(t, "amenities.csv",
		"lat,lon,amenity,name\n"+
			"49.2827,-123.1207,cafe,Joe's\n"+
			"49.2830,-123.1200,parking,\n"+
			"49.2840,-123.1210,unicorn_stable,Odd One\n"+
			"not-a-number,-123.1210,cafe,Broken\n")

	amenities, err := LoadAmenities(path)
	if err != nil {
		t.Fatalf("LoadAmenities: %v", err)
	}

	// The malformed row is skipped, not fatal.
	if len(amenities) != 3 {
		t.Fatalf("amenities = %d, want 3", len(amenities))
	}

	if amenities[0].Category != CategoryFoodDrink {
		t.Errorf("cafe category = %s, want %s", amenities[0].Category, CategoryFoodDrink)
	}
	if amenities[1].Category != CategoryTransportation {
		t.Errorf("parking category = %s, want %s", amenities[1].Category, CategoryTransportation)
	}
	// Unknown tags land in the catch-all.
	if amenities[2].Category != CategoryOthers {
		t.Errorf("unknown tag category = %s, want %s", amenities[2].Category, CategoryOthers)
	}
}

// ---------------------------------------------------------------------------
// LoadAttractions / SortAttractionsByDistance
// ---------------------------------------------------------------------------

func TestLoadAttractions(t *testing.T) {
	path := writeFixture(t, "attractions.csv",
		"name,lat,lon,street\n"+
			"Stanley Park,49.3005,-123.1443,\n"+
			"Science World,49.2734,-123.1034,1455 Quebec St\n"+
			",49.2800,-123.1200,\n")

	attractions, err := LoadAttractions(path)
	if err != nil {
		t.Fatalf("LoadAttractions: %v", err)
	}
	if len(attractions) != 2 {
		t.Fatalf("attractions = %d, want 2 (nameless dropped)", len(attractions))
	}
	if attractions[1].Street != "1455 Quebec St" {
		t.Errorf("Street = %q", attractions[1].Street)
	}
}

func TestSortAttractionsByDistance(t *testing.T) {
	hotel := downtownHotel()
	attractions := []Attraction{
		{Name: "Far", Location: metersToDegrees(5000, 0)},
		{Name: "Near", Location: metersToDegrees(300, 0)},
		{Name: "Mid", Location: metersToDegrees(2000, 0)},
	}

	sorted := SortAttractionsByDistance(hotel, attractions)

	want := []string{"Near", "Mid", "Far"}
	for i, name := range want {
		if sorted[i].Name != name {
			t.Fatalf("sorted[%d] = %s, want %s", i, sorted[i].Name, name)
		}
	}
	if sorted[0].DistanceKm <= 0 || sorted[0].DistanceKm > 0.5 {
		t.Errorf("Near distance = %.2fkm, want about 0.3", sorted[0].DistanceKm)
	}

	// The input slice order is untouched.
	if attractions[0].Name != "Far" || attractions[0].DistanceKm != 0 {
		t.Error("input slice was mutated")
	}
}
