package service

import (
	"context"
	"log"

	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/geocoding"
	"github.com/AvigateGroup/avigate-api-sub004/internal/spatial"
)

// GeometricRoute is a plan assembled without graph data: provider
// geometry when available, straight-line arithmetic when not.
type GeometricRoute struct {
	DistanceKm      float64
	DurationMinutes int
	Steps           []geocoding.PolylineStep
	// Fallback marks a result built from the distance heuristic after the
	// provider failed; it feeds the step's data-availability reason.
	Fallback bool
}

// FallbackService wraps the external directions provider for the tier the
// planner reaches when the graph has no matching edge.
type FallbackService struct {
	provider geocoding.Provider
	cfg      *config.Config
}

// NewFallbackService creates a new fallback service
func NewFallbackService(provider geocoding.Provider, cfg *config.Config) *FallbackService {
	return &FallbackService{provider: provider, cfg: cfg}
}

// GetDirections produces a geometric route between two points. Provider
// failure is absorbed: the result degrades to haversine distance plus the
// speed heuristics and is marked Fallback. This method never errors; by
// this tier the only remaining answer worse than a guess is no answer.
func (f *FallbackService) GetDirections(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) *GeometricRoute {
	providerMode := "driving"
	if mode == "walking" {
		providerMode = "walking"
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.ProviderTimeout)
	defer cancel()

	result, err := f.provider.Directions(ctx, originLat, originLng, destLat, destLng, providerMode)
	if err != nil {
		log.Printf("Directions provider failed (%v); using distance heuristic", err)
		return f.heuristicRoute(originLat, originLng, destLat, destLng, providerMode)
	}

	return &GeometricRoute{
		DistanceKm:      float64(result.DistanceMeters) / 1000.0,
		DurationMinutes: (result.DurationSecs + 59) / 60,
		Steps:           result.Steps,
	}
}

func (f *FallbackService) heuristicRoute(originLat, originLng, destLat, destLng float64, mode string) *GeometricRoute {
	distanceKm := spatial.HaversineDistanceKm(originLat, originLng, destLat, destLng)

	var duration int
	if mode == "walking" {
		duration = spatial.WalkingDurationMinutes(distanceKm, f.cfg.WalkingSpeedKmh)
	} else {
		duration = spatial.DrivingDurationMinutes(distanceKm, f.cfg.DrivingSpeedKmh, f.cfg.TrafficFactor)
	}

	return &GeometricRoute{
		DistanceKm:      distanceKm,
		DurationMinutes: duration,
		Fallback:        true,
	}
}
