package models

// Confidence levels attached to every planned step.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DataAvailability describes how trustworthy a step's estimate is,
// based on where the data came from.
type DataAvailability struct {
	HasVehicleData bool   `json:"has_vehicle_data"`
	Confidence     string `json:"confidence"`
	Reason         string `json:"reason"`
}

// AlternativeOptions is attached to steps with no vehicle data so the
// rider still has something actionable.
type AlternativeOptions struct {
	AskLocalsPhrases []string `json:"ask_locals_phrases"`
	Walkable         bool     `json:"walkable"`
}

// WalkingDirections carries the geometric walking guidance for a leg.
type WalkingDirections struct {
	DistanceKm        float64 `json:"distance_km"`
	DurationMinutes   int     `json:"duration_minutes"`
	Bearing           float64 `json:"bearing"`
	CardinalDirection string  `json:"cardinal_direction"`
}

// EnhancedRouteStep is one leg of a planning result. Response-only;
// assembled fresh on every planning call, never persisted.
type EnhancedRouteStep struct {
	Position      int    `json:"position"`
	TransportMode string `json:"transport_mode"`
	Instructions  string `json:"instructions"`

	FromName      string  `json:"from_name"`
	ToName        string  `json:"to_name"`
	FromLatitude  float64 `json:"from_latitude"`
	FromLongitude float64 `json:"from_longitude"`
	ToLatitude    float64 `json:"to_latitude"`
	ToLongitude   float64 `json:"to_longitude"`

	EstimatedFareMin float64 `json:"estimated_fare_min"`
	EstimatedFareMax float64 `json:"estimated_fare_max"`
	DurationMinutes  int     `json:"duration_minutes"`
	DistanceKm       float64 `json:"distance_km"`
	AccuracyScore    float64 `json:"accuracy_score"`

	PickupPoint  string `json:"pickup_point,omitempty"`
	DropoffPoint string `json:"dropoff_point,omitempty"`

	DataAvailability     DataAvailability    `json:"data_availability"`
	WalkingDirections    *WalkingDirections  `json:"walking_directions,omitempty"`
	AlternativeTransport []string            `json:"alternative_transport,omitempty"`
	AlternativeOptions   *AlternativeOptions `json:"alternative_options,omitempty"`

	StepID int64 `json:"step_id,omitempty"` // persisted step backing this leg, 0 when synthesized
}

// FinalDestinationInfo is set when the last graph stop is not the literal
// requested destination.
type FinalDestinationInfo struct {
	Name            string  `json:"name"`
	DistanceKm      float64 `json:"distance_km"`
	Walkable        bool    `json:"walkable"`
	DurationMinutes int     `json:"duration_minutes"`
}

// EnhancedRoute is a ranked planning result.
type EnhancedRoute struct {
	Source  string              `json:"source"` // graph, segments, provider, heuristic
	RouteID int64               `json:"route_id,omitempty"`
	Name    string              `json:"name"`
	Steps   []EnhancedRouteStep `json:"steps"`

	TotalEstimatedFareMin float64 `json:"total_estimated_fare_min"`
	TotalEstimatedFareMax float64 `json:"total_estimated_fare_max"`
	TotalDurationMinutes  int     `json:"total_duration_minutes"`
	TotalDistanceKm       float64 `json:"total_distance_km"`

	OverallConfidence    string                `json:"overall_confidence"`
	Score                float64               `json:"score"`
	FinalDestinationInfo *FinalDestinationInfo `json:"final_destination_info,omitempty"`
}

// PlanRequest is the planning endpoint payload.
type PlanRequest struct {
	Start          LocationQuery `json:"start" binding:"required"`
	End            LocationQuery `json:"end" binding:"required"`
	PreferredModes []string      `json:"preferred_modes,omitempty"`
	MaxFare        float64       `json:"max_fare,omitempty"`
}

// PlanResult is the planning endpoint response body.
type PlanResult struct {
	Start  *Location       `json:"start"`
	End    *Location       `json:"end"`
	Routes []EnhancedRoute `json:"routes"`
	Cached bool            `json:"cached"`
}
