package models

import (
	"encoding/json"
	"time"
)

// TransportMode constants for the vehicle types riders actually use.
const (
	ModeBus     = "bus"
	ModeTaxi    = "taxi"
	ModeKeke    = "keke"
	ModeOkada   = "okada"
	ModeWalking = "walking"
)

// Route is a named, directed relation between two locations, owning an
// ordered sequence of steps. Contributed by users or admins and verified
// through the moderation workflow.
type Route struct {
	ID              int64    `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	StartLocationID int64    `json:"start_location_id" db:"start_location_id"`
	EndLocationID   int64    `json:"end_location_id" db:"end_location_id"`
	TransportModes  []string `json:"transport_modes" db:"transport_modes"`

	FareMin         float64 `json:"fare_min" db:"fare_min"`
	FareMax         float64 `json:"fare_max" db:"fare_max"`
	DurationMinutes int     `json:"duration_minutes" db:"duration_minutes"`

	IsVerified    bool    `json:"is_verified" db:"is_verified"`
	IsActive      bool    `json:"is_active" db:"is_active"`
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	UsageCount    int64   `json:"usage_count" db:"usage_count"`

	Steps []RouteStep `json:"steps,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RouteStep is one atomic leg of a route: a single vehicle (or walk)
// between two locations, with admin-entered fare bounds and the
// crowdsourced aggregates folded in from fare feedback.
type RouteStep struct {
	ID             int64  `json:"id" db:"id"`
	RouteID        int64  `json:"route_id" db:"route_id"`
	Position       int    `json:"position" db:"position"`
	FromLocationID int64  `json:"from_location_id" db:"from_location_id"`
	ToLocationID   int64  `json:"to_location_id" db:"to_location_id"`
	TransportMode  string `json:"transport_mode" db:"transport_mode"`
	Instructions   string `json:"instructions" db:"instructions"`

	FareMin         float64 `json:"fare_min" db:"fare_min"`
	FareMax         float64 `json:"fare_max" db:"fare_max"`
	DurationMinutes int     `json:"duration_minutes" db:"duration_minutes"`

	PickupPoint  string `json:"pickup_point,omitempty" db:"pickup_point"`
	DropoffPoint string `json:"dropoff_point,omitempty" db:"dropoff_point"`

	// Running crowdsourced aggregates; sums are kept so the mean covers
	// every report ever submitted, not just the retained window.
	ReportCount      int64      `json:"report_count" db:"report_count"`
	FareSum          float64    `json:"-" db:"fare_sum"`
	FareAverage      float64    `json:"fare_average" db:"fare_average"`
	DurationCount    int64      `json:"-" db:"duration_count"`
	DurationSum      float64    `json:"-" db:"duration_sum"`
	DurationAverage  float64    `json:"duration_average" db:"duration_average"`
	ReportsUpdatedAt *time.Time `json:"reports_updated_at,omitempty" db:"reports_updated_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DecodeModes parses a JSON-encoded mode list as stored in sqlite.
func DecodeModes(raw string) []string {
	if raw == "" {
		return nil
	}
	var modes []string
	if err := json.Unmarshal([]byte(raw), &modes); err != nil {
		return nil
	}
	return modes
}

// EncodeModes serializes a mode list for storage.
func EncodeModes(modes []string) string {
	if len(modes) == 0 {
		return "[]"
	}
	b, err := json.Marshal(modes)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ModesOverlap reports whether two mode sets share at least one mode,
// or either side includes walking (a rider can always walk a bridge leg).
func ModesOverlap(a, b []string) bool {
	for _, m := range a {
		if m == ModeWalking {
			return true
		}
		for _, n := range b {
			if n == ModeWalking || m == n {
				return true
			}
		}
	}
	for _, n := range b {
		if n == ModeWalking {
			return true
		}
	}
	return false
}
