package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"

	"github.com/namneyugn21/Hotelytics/trip"
)

// newRouter creates the HTTP router with all endpoints
func newRouter(a *App) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/score", a.handleScore).Methods(http.MethodPost)
	r.HandleFunc("/api/clusters/{category}", a.handleClusters).Methods(http.MethodGet)
	r.HandleFunc("/api/tour", a.handleTour).Methods(http.MethodPost)
	r.HandleFunc("/api/overview.svg", a.handleOverview).Methods(http.MethodGet)

	return r
}

// requestLogging tags every request with a short id for log correlation.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()[:8]
		log.Printf("[http] %s %s %s from %s", id, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Status      string    `json:"status"`
		Timestamp   time.Time `json:"timestamp"`
		Hotels      int       `json:"hotels"`
		Amenities   int       `json:"amenities"`
		Attractions int       `json:"attractions"`
	}{
		Status:      "ok",
		Timestamp:   time.Now(),
		Hotels:      len(a.Hotels),
		Amenities:   len(a.Amenities),
		Attractions: len(a.Attractions),
	}
	writeJSON(w, http.StatusOK, status)
}

type scoreRequest struct {
	RadiusMeters float64      `json:"radiusMeters"`
	Weights      trip.Weights `json:"weights"`
}

func (a *App) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.RadiusMeters < 0 {
		writeError(w, http.StatusBadRequest, "radiusMeters must be non-negative")
		return
	}
	for cat, weight := range req.Weights {
		if _, ok := categoryFromLabel(string(cat)); !ok {
			writeError(w, http.StatusBadRequest, "unknown category %q", cat)
			return
		}
		if weight < 0 {
			writeError(w, http.StatusBadRequest, "weight for %q must be non-negative", cat)
			return
		}
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = a.Config.ScoringRadiusMeters
	}
	weights := req.Weights
	if weights == nil {
		weights = a.Config.Weights
	}

	scored := trip.ScoreHotels(a.Hotels, a.Amenities, weights, radius)
	writeJSON(w, http.StatusOK, trip.ScoredHotelsToFeatureCollection(scored))
}

func (a *App) handleClusters(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["category"]
	cat, ok := categoryFromLabel(label)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category %q; valid categories: %s", label, categoryLabels())
		return
	}

	assignment := trip.ClusterAmenities(a.Amenities, cat, a.Config.ClusterParamsFor(cat))
	writeJSON(w, http.StatusOK, trip.ClustersToFeatureCollection(assignment))
}

type tourRequest struct {
	Hotel    string `json:"hotel"`
	Stops    int    `json:"stops"`
	Strategy string `json:"strategy"`
}

func (a *App) handleTour(w http.ResponseWriter, r *http.Request) {
	var req tourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.Hotel == "" {
		writeError(w, http.StatusBadRequest, "hotel is required")
		return
	}

	hotel, ok := a.findHotel(req.Hotel)
	if !ok {
		writeError(w, http.StatusNotFound, "no hotel matching %q", req.Hotel)
		return
	}

	stopCount := req.Stops
	if stopCount <= 0 {
		stopCount = a.StopCount
	}
	if stopCount <= 0 {
		stopCount = 5
	}
	stops := trip.SortAttractionsByDistance(hotel, a.Attractions)
	if len(stops) > stopCount {
		stops = stops[:stopCount]
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = trip.StrategyApproxTSP
	}

	var tour *trip.TourResult
	var err error
	switch strategy {
	case trip.StrategyApproxTSP:
		tour, err = a.Engine.PlanApproxTSP(r.Context(), hotel, stops)
	case trip.StrategyGreedyNN:
		tour, err = a.Engine.PlanGreedyNN(r.Context(), hotel, stops)
	default:
		writeError(w, http.StatusBadRequest, "unknown strategy %q", strategy)
		return
	}
	if err != nil {
		var netErr *trip.NetworkError
		switch {
		case errors.Is(err, trip.ErrDegenerateInput):
			writeError(w, http.StatusBadRequest, "%v", err)
		case errors.Is(err, trip.ErrRouteUnavailable):
			writeError(w, http.StatusUnprocessableEntity, "%v", err)
		case errors.As(err, &netErr):
			writeError(w, http.StatusBadGateway, "%v", err)
		default:
			writeError(w, http.StatusInternalServerError, "%v", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, trip.TourToFeatureCollection(tour, hotel, stops))
}

// handleOverview renders amenity cluster hulls and hotel markers as a
// city overview SVG. An optional ?hotel= query highlights one hotel and
// its nearest attractions.
func (a *App) handleOverview(w http.ResponseWriter, r *http.Request) {
	if len(a.Hotels) == 0 && len(a.Amenities) == 0 {
		writeError(w, http.StatusServiceUnavailable, "no data loaded")
		return
	}

	var origin orb.Point
	if len(a.Hotels) > 0 {
		origin = a.Hotels[0].Location
	} else {
		origin = a.Amenities[0].Location
	}
	renderer := trip.NewOverviewRenderer(origin)

	for _, cat := range trip.Categories {
		assignment := trip.ClusterAmenities(a.Amenities, cat, a.Config.ClusterParamsFor(cat))
		if len(assignment.Clusters) > 0 {
			renderer.Clusters = append(renderer.Clusters, assignment)
		}
	}

	if name := r.URL.Query().Get("hotel"); name != "" {
		hotel, ok := a.findHotel(name)
		if !ok {
			writeError(w, http.StatusNotFound, "no hotel matching %q", name)
			return
		}
		renderer.Hotel = &hotel
		stops := trip.SortAttractionsByDistance(hotel, a.Attractions)
		if len(stops) > a.StopCount && a.StopCount > 0 {
			stops = stops[:a.StopCount]
		}
		renderer.Stops = stops
	} else if len(a.Hotels) > 0 {
		renderer.Hotel = &a.Hotels[0]
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if err := renderer.RenderToSVG(w); err != nil {
		log.Printf("[http] rendering overview: %v", err)
	}
}
