package trip

import (
	"math"

	"github.com/paulmach/orb"
)

// Category is an amenity category. The set is closed: every raw OSM
// amenity tag maps onto exactly one Category, with CategoryOthers as
// the catch-all for tags outside the curated lists.
type Category string

const (
	CategoryFoodDrink      Category = "food & drink"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainments & culture"
	CategoryHealth         Category = "health & emergency"
	CategoryShop           Category = "shop & services"
	CategoryOthers         Category = "others"
)

// Categories lists all valid categories in a stable order.
var Categories = []Category{
	CategoryFoodDrink,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryHealth,
	CategoryShop,
	CategoryOthers,
}

// tagCategories maps raw OSM amenity tags onto categories. Tags not
// listed here fall through to CategoryOthers.
var tagCategories = buildTagIndex(map[Category][]string{
	CategoryFoodDrink: {
		"cafe", "fast_food", "bbq", "restaurant", "pub", "bar", "food_court",
		"ice_cream", "bistro", "juice_bar", "internet_cafe", "disused:restaurant",
		"water_point", "biergarten",
	},
	CategoryTransportation: {
		"fuel", "parking_entrance", "bicycle_parking", "parking", "ferry_terminal",
		"car_rental", "car_sharing", "bicycle_rental", "seaplane terminal",
		"charging_station", "parking_space", "taxi", "bus_station",
		"motorcycle_parking", "boat_rental", "EVSE", "motorcycle_rental",
	},
	CategoryEntertainment: {
		"place_of_worship", "cinema", "theatre", "library", "arts_centre",
		"fountain", "photo_booth", "nightclub", "clock", "stripclub", "gambling",
		"playground", "meditation_centre", "spa", "lounge", "gym", "park",
		"casino", "leisure",
	},
	CategoryHealth: {
		"pharmacy", "dentist", "doctors", "clinic", "veterinary", "hospital",
		"first_aid", "healthcare", "chiropractor", "Pharmacy",
	},
	CategoryShop: {
		"post_office", "atm", "childcare", "bank", "car_wash", "luggage_locker",
		"bureau_de_change", "marketplace", "atm;bank", "shop|clothes",
	},
})

func buildTagIndex(lists map[Category][]string) map[string]Category {
	index := make(map[string]Category)
	for cat, tags := range lists {
		for _, tag := range tags {
			index[tag] = cat
		}
	}
	return index
}

// ParseCategory resolves a category label or raw OSM amenity tag to a
// Category. Unknown inputs resolve to CategoryOthers, never an error.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryFoodDrink, CategoryTransportation, CategoryEntertainment,
		CategoryHealth, CategoryShop, CategoryOthers:
		return Category(s)
	}
	if cat, ok := tagCategories[s]; ok {
		return cat
	}
	return CategoryOthers
}

// Amenity is a point of interest in geographic coordinates (lon, lat).
type Amenity struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name,omitempty"`
	RawTag   string    `json:"amenity"`
	Category Category  `json:"category"`
	Location orb.Point `json:"location"`
}

// Hotel is a candidate accommodation with a normalized street address.
type Hotel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	HouseNumber string    `json:"housenumber,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Street      string    `json:"street,omitempty"`
	City        string    `json:"city"`
	Province    string    `json:"province"`
	Postcode    string    `json:"postcode"`
	Location    orb.Point `json:"location"`
}

// Attraction is a tour stop candidate.
type Attraction struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Street      string    `json:"street,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    orb.Point `json:"location"`

	// DistanceKm is the straight-line distance from a reference hotel,
	// filled in by SortAttractionsByDistance.
	DistanceKm float64 `json:"distanceKm,omitempty"`
}

// Weights assigns a non-negative importance to each category.
type Weights map[Category]float64

// ClusterParams are the density parameters for one category.
type ClusterParams struct {
	EpsMeters  float64 `yaml:"epsMeters" json:"epsMeters"`
	MinSamples int     `yaml:"minSamples" json:"minSamples"`
}

// Cluster is one dense amenity group. Hull is nil when the cluster has
// fewer than three distinct member locations.
type Cluster struct {
	Label   int      `json:"label"`
	Members []Amenity `json:"members"`
	Hull    orb.Ring `json:"hull,omitempty"`
}

// ClusterAssignment is the clustering result for one category. Noise
// points are excluded entirely.
type ClusterAssignment struct {
	Category Category      `json:"category"`
	Params   ClusterParams `json:"params"`
	Clusters []Cluster     `json:"clusters"`
}

// ScoredHotel is a hotel with its amenity counts and scores.
type ScoredHotel struct {
	Hotel              Hotel                `json:"hotel"`
	CategoryCounts     map[Category]int     `json:"categoryCounts"`
	CategoryScores     map[Category]float64 `json:"categoryScores"`
	CategoryNormalized map[Category]float64 `json:"categoryNormalized"`
	TotalScore         float64              `json:"totalScore"`
}

// Tour strategies.
const (
	StrategyApproxTSP = "approx-tsp"
	StrategyGreedyNN  = "greedy-nn"
)

// TourResult is a planned walking tour. An approx-tsp tour is open
// (len(SegmentMeters) == len(Stops)-1); a greedy-nn tour is closed and
// carries one extra return segment. Stops[0] is always the hotel.
type TourResult struct {
	Strategy      string         `json:"strategy"`
	Stops         []string       `json:"stops"`
	SegmentMeters []float64      `json:"segmentMeters"`
	TotalMeters   float64        `json:"totalMeters"`
	Polyline      orb.LineString `json:"polyline"`

	// Gaps counts segments whose street geometry could not be stitched.
	// Their distances still appear in SegmentMeters.
	Gaps int `json:"gaps,omitempty"`
}

// Config is the full configuration file.
type Config struct {
	ScoringRadiusMeters float64                    `yaml:"scoringRadiusMeters" json:"scoringRadiusMeters"`
	Weights             Weights                    `yaml:"weights,omitempty" json:"weights,omitempty"`
	Clustering          map[Category]ClusterParams `yaml:"clustering,omitempty" json:"clustering,omitempty"`
	Network             NetworkConfig              `yaml:"network" json:"network"`
	Cache               CacheConfig                `yaml:"cache" json:"cache"`
}

// NetworkConfig holds walking network acquisition settings.
type NetworkConfig struct {
	OverpassURL      string   `yaml:"overpassUrl" json:"overpassUrl"`
	FetchRadiusFloor float64  `yaml:"fetchRadiusFloor,omitempty" json:"fetchRadiusFloor,omitempty"`
	SafetyMargin     *float64 `yaml:"safetyMargin,omitempty" json:"safetyMargin,omitempty"`
	TimeoutSeconds   int      `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds,omitempty"`
}

// CacheConfig holds walking network cache settings. RedisAddr is
// optional; when empty the in-memory cache is used.
type CacheConfig struct {
	TTLMinutes     int     `yaml:"ttlMinutes,omitempty" json:"ttlMinutes,omitempty"`
	QuantizeMeters float64 `yaml:"quantizeMeters,omitempty" json:"quantizeMeters,omitempty"`
	RedisAddr      string  `yaml:"redisAddr,omitempty" json:"redisAddr,omitempty"`
}

// GetSafetyMargin returns the configured safety margin or the default.
func (nc *NetworkConfig) GetSafetyMargin() float64 {
	if nc.SafetyMargin != nil {
		return *nc.SafetyMargin
	}
	return DefaultSafetyMargin
}

// ClusterParamsFor returns the clustering parameters for a category,
// falling back to the tuned defaults when unconfigured.
func (c *Config) ClusterParamsFor(cat Category) ClusterParams {
	if p, ok := c.Clustering[cat]; ok && p.EpsMeters > 0 && p.MinSamples > 0 {
		return p
	}
	return DefaultClusterParams(cat)
}

// DefaultClusterParams returns the tuned density parameters per
// category. Denser categories use a tighter eps and a higher floor.
func DefaultClusterParams(cat Category) ClusterParams {
	switch cat {
	case CategoryFoodDrink:
		return ClusterParams{EpsMeters: 200, MinSamples: 15}
	case CategoryTransportation:
		return ClusterParams{EpsMeters: 250, MinSamples: 10}
	case CategoryEntertainment, CategoryShop:
		return ClusterParams{EpsMeters: 300, MinSamples: 8}
	case CategoryHealth:
		return ClusterParams{EpsMeters: 300, MinSamples: 5}
	default:
		return ClusterParams{EpsMeters: 300, MinSamples: 10}
	}
}

// ValidLocation reports whether p holds plausible geographic
// coordinates.
func ValidLocation(p orb.Point) bool {
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return false
	}
	return p[0] >= -180 && p[0] <= 180 && p[1] >= -90 && p[1] <= 90
}
