package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"

	"github.com/namneyugn21/Hotelytics/trip"
)

const defaultConfigFile = "config.yaml"

// App encapsulates the application state and dependencies
type App struct {
	Config      *trip.Config
	Hotels      []trip.Hotel
	Amenities   []trip.Amenity
	Attractions []trip.Attraction
	Engine      *trip.RouteEngine

	// CLI Flags (effectively dependencies)
	ConfigFile string
	DataDir    string
	OutputFile string
	Strategy   string
	StopCount  int
	HttpMode   bool
	HttpPort   int
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.DataDir = opts.DataDir
	a.OutputFile = opts.OutputFile
	a.Strategy = opts.Strategy
	a.StopCount = opts.StopCount
	a.HttpMode = opts.HttpMode
	a.HttpPort = opts.HttpPort
}

// resolveConfigPath resolves the config file relative to data-dir when
// the flag is still pointing at the default.
func (a *App) resolveConfigPath() string {
	if a.DataDir != "." && a.DataDir != "" && a.ConfigFile == defaultConfigFile {
		return filepath.Join(a.DataDir, defaultConfigFile)
	}
	return a.ConfigFile
}

func (a *App) loadConfig() {
	path := a.resolveConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) && a.ConfigFile == defaultConfigFile {
		log.Printf("[config] %s not found, using defaults", path)
		a.Config = trip.DefaultConfig()
		return
	}
	config, err := trip.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	a.Config = config
	log.Printf("Loaded config from %s", path)
}

func (a *App) loadHotels() {
	hotels, err := trip.LoadHotels(filepath.Join(a.DataDir, "hotels.geojson"))
	if err != nil {
		log.Fatalf("Failed to load hotels: %v", err)
	}
	a.Hotels = hotels
	log.Printf("Loaded %d hotels", len(hotels))
}

func (a *App) loadAmenities() {
	amenities, err := trip.LoadAmenities(filepath.Join(a.DataDir, "amenities.csv"))
	if err != nil {
		log.Fatalf("Failed to load amenities: %v", err)
	}
	a.Amenities = amenities
	log.Printf("Loaded %d amenities", len(amenities))
}

func (a *App) loadAttractions() {
	attractions, err := trip.LoadAttractions(filepath.Join(a.DataDir, "attractions.csv"))
	if err != nil {
		log.Fatalf("Failed to load attractions: %v", err)
	}
	a.Attractions = attractions
	log.Printf("Loaded %d attractions", len(attractions))
}

// newEngine wires the Overpass provider, the configured cache, and the
// route engine from config.
func (a *App) newEngine() *trip.RouteEngine {
	net := a.Config.Network

	var opts []trip.FetchOption
	if net.TimeoutSeconds > 0 {
		opts = append(opts, trip.WithTimeout(time.Duration(net.TimeoutSeconds)*time.Second))
	}
	provider := trip.NewOverpassProvider(net.OverpassURL, opts...)

	ttl := trip.DefaultCacheTTL
	if a.Config.Cache.TTLMinutes > 0 {
		ttl = time.Duration(a.Config.Cache.TTLMinutes) * time.Minute
	}
	var cache trip.GraphCache
	if addr := a.Config.Cache.RedisAddr; addr != "" {
		log.Printf("[cache] using redis at %s", addr)
		cache = trip.NewRedisCache(addr, ttl)
	} else {
		cache = trip.NewMemoryCache(ttl)
	}

	engine := trip.NewRouteEngine(trip.NewCachingProvider(provider, cache, a.Config.Cache.QuantizeMeters))
	if net.FetchRadiusFloor > 0 {
		engine.FetchRadiusFloor = net.FetchRadiusFloor
	}
	engine.SafetyMargin = net.GetSafetyMargin()
	return engine
}

// findHotel matches by exact name first (case-insensitive), then by
// substring.
func (a *App) findHotel(name string) (trip.Hotel, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, h := range a.Hotels {
		if strings.ToLower(h.Name) == needle {
			return h, true
		}
	}
	for _, h := range a.Hotels {
		if strings.Contains(strings.ToLower(h.Name), needle) {
			return h, true
		}
	}
	return trip.Hotel{}, false
}

// writeFeatureCollection writes GeoJSON to the output file, or stdout
// when no output file is set.
func (a *App) writeFeatureCollection(fc *geojson.FeatureCollection) {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode GeoJSON: %v", err)
	}
	if a.OutputFile == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(a.OutputFile, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", a.OutputFile, err)
	}
	log.Printf("Wrote %s", a.OutputFile)
}

// RunScore ranks every hotel by weighted amenity counts within the
// scoring radius and exports the result as GeoJSON.
func (a *App) RunScore() {
	a.loadConfig()
	a.loadHotels()
	a.loadAmenities()

	scored := trip.ScoreHotels(a.Hotels, a.Amenities, a.Config.Weights, a.Config.ScoringRadiusMeters)

	ranked := make([]trip.ScoredHotel, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	fmt.Printf("Scored %d hotels (radius %.0fm)\n\n", len(ranked), a.Config.ScoringRadiusMeters)
	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	for i, s := range top {
		fmt.Printf("%2d. %6.2f  %-8s %s\n", i+1, s.TotalScore, trip.ScoreBand(s.TotalScore), s.Hotel.Name)
	}
	fmt.Println()

	a.writeFeatureCollection(trip.ScoredHotelsToFeatureCollection(ranked))
}

// RunCluster clusters amenities of one category and exports the hull
// polygons as GeoJSON.
func (a *App) RunCluster(category string) {
	cat, ok := categoryFromLabel(category)
	if !ok {
		log.Fatalf("Unknown category %q; valid categories: %s", category, categoryLabels())
	}

	a.loadConfig()
	a.loadAmenities()

	assignment := trip.ClusterAmenities(a.Amenities, cat, a.Config.ClusterParamsFor(cat))

	fmt.Printf("Category %q: %d clusters\n", cat, len(assignment.Clusters))
	for _, c := range assignment.Clusters {
		hull := "no hull"
		if c.Hull != nil {
			hull = fmt.Sprintf("%d-point hull", len(c.Hull)-1)
		}
		fmt.Printf("  cluster %d: %d members, %s\n", c.Label, len(c.Members), hull)
	}
	fmt.Println()

	a.writeFeatureCollection(trip.ClustersToFeatureCollection(assignment))
}

// RunTour plans a walking tour from the named hotel through its nearest
// attractions and exports the itinerary as GeoJSON.
func (a *App) RunTour(hotelName string) {
	a.loadConfig()
	a.loadHotels()
	a.loadAttractions()

	hotel, ok := a.findHotel(hotelName)
	if !ok {
		log.Fatalf("No hotel matching %q", hotelName)
	}

	stops := trip.SortAttractionsByDistance(hotel, a.Attractions)
	if a.StopCount > 0 && len(stops) > a.StopCount {
		stops = stops[:a.StopCount]
	}

	a.Engine = a.newEngine()
	ctx := context.Background()

	var tours []*trip.TourResult
	switch a.Strategy {
	case trip.StrategyApproxTSP:
		tour, err := a.Engine.PlanApproxTSP(ctx, hotel, stops)
		if err != nil {
			log.Fatalf("Failed to plan tour: %v", err)
		}
		tours = append(tours, tour)
	case trip.StrategyGreedyNN:
		tour, err := a.Engine.PlanGreedyNN(ctx, hotel, stops)
		if err != nil {
			log.Fatalf("Failed to plan tour: %v", err)
		}
		tours = append(tours, tour)
	case "both":
		tsp, nn, err := a.Engine.PlanBoth(ctx, hotel, stops)
		if err != nil {
			log.Fatalf("Failed to plan tour: %v", err)
		}
		if tsp != nil {
			tours = append(tours, tsp)
		}
		if nn != nil {
			tours = append(tours, nn)
		}
	default:
		log.Fatalf("Unknown strategy %q; valid strategies: %s, %s, both",
			a.Strategy, trip.StrategyApproxTSP, trip.StrategyGreedyNN)
	}

	for _, tour := range tours {
		printItinerary(tour, hotel)
	}

	a.writeFeatureCollection(trip.TourToFeatureCollection(tours[0], hotel, stops))
}

func printItinerary(tour *trip.TourResult, hotel trip.Hotel) {
	fmt.Printf("Tour from %s (%s)\n", hotel.Name, tour.Strategy)
	for i, stop := range tour.Stops {
		if i == 0 {
			fmt.Printf("  start  %s\n", stop)
			continue
		}
		fmt.Printf("  %5.0fm %s\n", tour.SegmentMeters[i-1], stop)
	}
	if len(tour.SegmentMeters) == len(tour.Stops) {
		// Closed tour: final segment returns to the hotel.
		fmt.Printf("  %5.0fm %s\n", tour.SegmentMeters[len(tour.SegmentMeters)-1], hotel.Name)
	}
	fmt.Printf("  total  %.1fkm", tour.TotalMeters/1000)
	if tour.Gaps > 0 {
		fmt.Printf(" (%d unroutable segments skipped)", tour.Gaps)
	}
	fmt.Println()
	fmt.Println()
}

// RunService starts the HTTP service.
func (a *App) RunService() {
	fmt.Println("Starting hotelytics service...")

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}
	if a.Config == nil {
		a.loadConfig()
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" && a.Config.Cache.RedisAddr == "" {
		a.Config.Cache.RedisAddr = addr
	}

	a.loadHotels()
	a.loadAmenities()
	a.loadAttractions()
	a.Engine = a.newEngine()

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", a.HttpPort),
		Handler: newRouter(a),
	}
	go func() {
		log.Printf("[http] starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[http] server error: %v", err)
		}
	}()

	fmt.Printf("\nHTTP endpoints (port %d):\n", a.HttpPort)
	fmt.Println("  GET  /health                    - Health check")
	fmt.Println("  POST /api/score                 - Rank hotels by nearby amenities")
	fmt.Println("  GET  /api/clusters/{category}   - Amenity cluster hulls as GeoJSON")
	fmt.Println("  POST /api/tour                  - Plan a walking tour")
	fmt.Println("  GET  /api/overview.svg          - City overview rendering")
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[http] shutdown: %v", err)
	}
}

func categoryFromLabel(label string) (trip.Category, bool) {
	for _, cat := range trip.Categories {
		if string(cat) == strings.ToLower(strings.TrimSpace(label)) {
			return cat, true
		}
	}
	return "", false
}

func categoryLabels() string {
	labels := make([]string, len(trip.Categories))
	for i, cat := range trip.Categories {
		labels[i] = string(cat)
	}
	return strings.Join(labels, ", ")
}
