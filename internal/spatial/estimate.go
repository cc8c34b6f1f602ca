package spatial

import "math"

// Default speeds for the heuristics of last resort, used only when no
// measured data exists anywhere in the system.
const (
	DefaultWalkingSpeedKmh = 5.0
	DefaultDrivingSpeedKmh = 30.0
	DefaultTrafficFactor   = 1.3
)

// WalkingDurationMinutes estimates walking time for a distance in km.
func WalkingDurationMinutes(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = DefaultWalkingSpeedKmh
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

// DrivingDurationMinutes estimates driving time for a distance in km,
// inflated by the traffic factor.
func DrivingDurationMinutes(distanceKm, speedKmh, trafficFactor float64) int {
	if speedKmh <= 0 {
		speedKmh = DefaultDrivingSpeedKmh
	}
	if trafficFactor <= 0 {
		trafficFactor = DefaultTrafficFactor
	}
	return int(math.Round(distanceKm / speedKmh * 60 * trafficFactor))
}

// IsWalkable reports whether a distance is short enough to walk.
func IsWalkable(distanceKm, thresholdKm float64) bool {
	return distanceKm > 0 && distanceKm < thresholdKm
}
