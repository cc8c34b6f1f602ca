package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/geocoding"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
)

// LocationService normalizes heterogeneous location inputs (identifier,
// coordinate pair, free text) into canonical location records, creating
// one via the geocoding provider when none exists.
type LocationService struct {
	repo     *repository.LocationRepository
	provider geocoding.Provider
	cfg      *config.Config
}

// NewLocationService creates a new location service
func NewLocationService(repo *repository.LocationRepository, provider geocoding.Provider, cfg *config.Config) *LocationService {
	return &LocationService{repo: repo, provider: provider, cfg: cfg}
}

// Resolve turns a location query into a location record. Every successful
// resolution bumps the location's search counter off the request path.
func (s *LocationService) Resolve(ctx context.Context, q models.LocationQuery) (*models.Location, error) {
	loc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	go func(id int64) {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.IncrementSearchCount(bg, id); err != nil {
			log.Printf("Failed to bump search count for location %d: %v", id, err)
		}
	}(loc.ID)

	return loc, nil
}

func (s *LocationService) resolve(ctx context.Context, q models.LocationQuery) (*models.Location, error) {
	switch {
	case q.ID != 0:
		return s.resolveByID(ctx, q.ID)
	case q.HasCoordinates():
		return s.resolveByCoordinates(ctx, *q.Latitude, *q.Longitude)
	case q.Text != "":
		return s.resolveByText(ctx, q.Text)
	default:
		return nil, fmt.Errorf("%w: empty query", ErrResolutionFailed)
	}
}

func (s *LocationService) resolveByID(ctx context.Context, id int64) (*models.Location, error) {
	loc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if loc == nil || !loc.IsActive {
		return nil, fmt.Errorf("%w: location %d not found", ErrResolutionFailed, id)
	}
	return loc, nil
}

func (s *LocationService) resolveByCoordinates(ctx context.Context, lat, lng float64) (*models.Location, error) {
	nearby, err := s.repo.FindNearby(ctx, lat, lng, s.cfg.CoordinateToleranceMeters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if len(nearby) > 0 {
		return &nearby[0], nil
	}

	result, err := s.provider.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		if errors.Is(err, geocoding.ErrZeroResults) {
			return nil, fmt.Errorf("%w: no place at %.5f,%.5f", ErrResolutionFailed, lat, lng)
		}
		return nil, fmt.Errorf("%w: %v", joinResolution(err), err)
	}

	return s.persistGeocoded(ctx, result, lat, lng)
}

func (s *LocationService) resolveByText(ctx context.Context, text string) (*models.Location, error) {
	matches, err := s.repo.SearchByName(ctx, strings.TrimSpace(text), 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if len(matches) > 0 {
		return &matches[0], nil
	}

	result, err := s.provider.Geocode(ctx, text)
	if err != nil {
		if errors.Is(err, geocoding.ErrZeroResults) {
			return nil, fmt.Errorf("%w: no place matching %q", ErrResolutionFailed, text)
		}
		return nil, fmt.Errorf("%w: %v", joinResolution(err), err)
	}

	return s.persistGeocoded(ctx, result, result.Latitude, result.Longitude)
}

// persistGeocoded stores a provider result as a new unverified location.
// A nearby check against the provider's snapped coordinates guards
// against creating a duplicate when the provider moved the point.
func (s *LocationService) persistGeocoded(ctx context.Context, r *geocoding.GeocodeResult, lat, lng float64) (*models.Location, error) {
	nearby, err := s.repo.FindNearby(ctx, r.Latitude, r.Longitude, s.cfg.CoordinateToleranceMeters)
	if err == nil && len(nearby) > 0 {
		return &nearby[0], nil
	}

	name := r.FormattedAddress
	if name == "" {
		name = fmt.Sprintf("Unnamed place (%.5f, %.5f)", lat, lng)
	}

	loc := &models.Location{
		Name:       name,
		Address:    r.FormattedAddress,
		City:       r.City(),
		State:      r.State(),
		Category:   categoryFromComponents(r),
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		IsVerified: false,
	}

	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	return loc, nil
}

// Search exposes typeahead-style name search for the locations endpoint.
func (s *LocationService) Search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	return s.repo.SearchByName(ctx, strings.TrimSpace(query), limit)
}

// Get returns a location by ID without counter side effects.
func (s *LocationService) Get(ctx context.Context, id int64) (*models.Location, error) {
	return s.repo.GetByID(ctx, id)
}

func categoryFromComponents(r *geocoding.GeocodeResult) string {
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "bus_station", "transit_station":
				return models.CategoryBusStop
			case "point_of_interest", "establishment":
				return models.CategoryLandmark
			}
		}
	}
	return models.CategoryOther
}

// joinResolution classifies a provider failure as both a resolution
// failure and a provider outage so callers can test either sentinel.
func joinResolution(err error) error {
	if errors.Is(err, geocoding.ErrProviderUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrResolutionFailed, ErrProviderUnavailable)
	}
	return ErrResolutionFailed
}
