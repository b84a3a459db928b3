package domain

import "fmt"

// TrafficLevel is the congestion class of a route.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "Low"
	TrafficMedium TrafficLevel = "Medium"
	TrafficHigh   TrafficLevel = "High"
)

func (t TrafficLevel) Valid() bool {
	switch t {
	case TrafficLow, TrafficMedium, TrafficHigh:
		return true
	}
	return false
}

// Route is a delivery lane. Many orders may share one route.
// BaseTimeMin is the nominal delivery duration before any fatigue adjustment.
type Route struct {
	RouteID      int
	DistanceKm   float64
	TrafficLevel TrafficLevel
	BaseTimeMin  float64
}

func (r Route) Validate() error {
	if r.RouteID <= 0 {
		return fmt.Errorf("route: route_id must be positive, got %d: %w", r.RouteID, ErrValidation)
	}

	if r.DistanceKm < 0 {
		return fmt.Errorf("route %d: distance_km must be >= 0: %w", r.RouteID, ErrValidation)
	}

	if !r.TrafficLevel.Valid() {
		return fmt.Errorf(
			"route %d: traffic_level must be one of Low, Medium, High, got %q: %w",
			r.RouteID, r.TrafficLevel, ErrValidation,
		)
	}

	if r.BaseTimeMin <= 0 {
		return fmt.Errorf("route %d: base_time_min must be positive: %w", r.RouteID, ErrValidation)
	}

	return nil
}
