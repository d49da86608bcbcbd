package trip

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrRouteUnavailable is returned when the walking network cannot
	// support a complete tour through all requested stops.
	ErrRouteUnavailable = errors.New("trip: no complete route through all stops")

	// ErrDegenerateInput is returned when a tour request has no stops or
	// a hotel that cannot be resolved onto the network.
	ErrDegenerateInput = errors.New("trip: degenerate tour input")

	// ErrNoHotels is returned when a scoring request has no hotels.
	ErrNoHotels = errors.New("trip: no hotels to score")
)

// NetworkError reports a failure to acquire the walking network for a
// region. Center and RadiusMeters identify the region so callers can
// log or retry it.
type NetworkError struct {
	Center       orb.Point
	RadiusMeters float64
	Err          error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("trip: walking network unavailable around (%.5f, %.5f) r=%.0fm: %v",
		e.Center[1], e.Center[0], e.RadiusMeters, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
