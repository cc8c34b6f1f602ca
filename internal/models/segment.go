package models

import (
	"encoding/json"
	"time"
)

// RouteSegment is a reusable shared sub-path between two locations,
// independent of any single named route. A city's road topology is
// stored once as segments and chained into journeys at planning time.
type RouteSegment struct {
	ID              int64    `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	StartLocationID int64    `json:"start_location_id" db:"start_location_id"`
	EndLocationID   int64    `json:"end_location_id" db:"end_location_id"`
	TransportModes  []string `json:"transport_modes" db:"transport_modes"`

	// Ordered location IDs between the endpoints
	IntermediateStops []int64 `json:"intermediate_stops" db:"intermediate_stops"`

	FareMin         float64 `json:"fare_min" db:"fare_min"`
	FareMax         float64 `json:"fare_max" db:"fare_max"`
	DurationMinutes int     `json:"duration_minutes" db:"duration_minutes"`
	DistanceKm      float64 `json:"distance_km" db:"distance_km"`

	IsVerified bool `json:"is_verified" db:"is_verified"`
	IsActive   bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DecodeStops parses a JSON-encoded intermediate stop list.
func DecodeStops(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var stops []int64
	if err := json.Unmarshal([]byte(raw), &stops); err != nil {
		return nil
	}
	return stops
}

// EncodeStops serializes an intermediate stop list for storage.
func EncodeStops(stops []int64) string {
	if len(stops) == 0 {
		return "[]"
	}
	b, err := json.Marshal(stops)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ComposedPath is a chain of segments connecting a start location to an
// end location, produced by the bounded segment search.
type ComposedPath struct {
	Segments []RouteSegment `json:"segments"`
}

// TotalDurationMinutes sums the chained segment durations.
func (p *ComposedPath) TotalDurationMinutes() int {
	var total int
	for _, s := range p.Segments {
		total += s.DurationMinutes
	}
	return total
}
