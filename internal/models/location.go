package models

import "time"

// Location represents a named point in the transit network: a bus stop,
// motor park, market or landmark that routes can start from or end at.
type Location struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Address   string  `json:"address,omitempty" db:"address"`
	City      string  `json:"city,omitempty" db:"city"`
	State     string  `json:"state,omitempty" db:"state"`
	Category  string  `json:"category" db:"category"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	IsVerified bool `json:"is_verified" db:"is_verified"`
	IsActive   bool `json:"is_active" db:"is_active"`

	// Popularity signals, bumped asynchronously on resolution and planning
	SearchCount int64 `json:"search_count" db:"search_count"`
	RouteCount  int64 `json:"route_count" db:"route_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Location category constants
const (
	CategoryBusStop   = "bus_stop"
	CategoryMotorPark = "motor_park"
	CategoryMarket    = "market"
	CategoryLandmark  = "landmark"
	CategoryJunction  = "junction"
	CategoryOther     = "other"
)

// LocationQuery identifies a location by exactly one of ID, coordinates
// or free text.
type LocationQuery struct {
	ID        int64    `json:"location_id,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// HasCoordinates reports whether the query carries a coordinate pair.
func (q LocationQuery) HasCoordinates() bool {
	return q.Latitude != nil && q.Longitude != nil
}

// IsEmpty reports whether the query carries no usable input.
func (q LocationQuery) IsEmpty() bool {
	return q.ID == 0 && !q.HasCoordinates() && q.Text == ""
}
