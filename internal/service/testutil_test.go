package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/database"
	"github.com/AvigateGroup/avigate-api-sub004/internal/geocoding"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"

	_ "modernc.org/sqlite"
)

// newTestDB opens an isolated in-memory database with the full schema.
// One connection only: each sqlite :memory: connection is its own database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		ProviderTimeout:           2 * time.Second,
		PlanDeadline:              5 * time.Second,
		SegmentHopBound:           3,
		MaxRoutesReturned:         3,
		ResponseCacheTTL:          30 * time.Minute,
		WalkingSpeedKmh:           5.0,
		DrivingSpeedKmh:           30.0,
		TrafficFactor:             1.3,
		WalkableDistanceKm:        2.0,
		MinRecentReports:          3,
		ReportRecencyWindow:       90 * 24 * time.Hour,
		FeedbackWindowSize:        50,
		CoordinateToleranceMeters: 100,
	}
}

func seedLocation(t *testing.T, db *sql.DB, name string, lat, lng float64, verified bool) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO locations (name, category, latitude, longitude, is_verified)
		VALUES (?, ?, ?, ?, ?)`,
		name, models.CategoryBusStop, lat, lng, verified,
	)
	if err != nil {
		t.Fatalf("failed to seed location %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedRoute(t *testing.T, db *sql.DB, name string, startID, endID int64, modes []string, verified bool, fareMin, fareMax float64, durationMinutes int) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO routes (name, start_location_id, end_location_id, transport_modes, fare_min, fare_max, duration_minutes, is_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, startID, endID, models.EncodeModes(modes), fareMin, fareMax, durationMinutes, verified,
	)
	if err != nil {
		t.Fatalf("failed to seed route %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedStep(t *testing.T, db *sql.DB, routeID int64, position int, fromID, toID int64, mode string, fareMin, fareMax float64, durationMinutes int) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO route_steps (route_id, position, from_location_id, to_location_id, transport_mode, instructions, fare_min, fare_max, duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		routeID, position, fromID, toID, mode, "Board at the park", fareMin, fareMax, durationMinutes,
	)
	if err != nil {
		t.Fatalf("failed to seed step: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedSegment(t *testing.T, db *sql.DB, name string, startID, endID int64, modes []string, verified bool, fareMin, fareMax float64, durationMinutes int) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO route_segments (name, start_location_id, end_location_id, transport_modes, fare_min, fare_max, duration_minutes, is_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, startID, endID, models.EncodeModes(modes), fareMin, fareMax, durationMinutes, verified,
	)
	if err != nil {
		t.Fatalf("failed to seed segment %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// fakeProvider implements geocoding.Provider with overridable behavior.
// The zero value fails every call, which is the posture most tests want.
type fakeProvider struct {
	geocodeFn    func(ctx context.Context, address string) (*geocoding.GeocodeResult, error)
	reverseFn    func(ctx context.Context, lat, lng float64) (*geocoding.GeocodeResult, error)
	directionsFn func(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (*geocoding.DirectionsResult, error)
}

func (f *fakeProvider) Geocode(ctx context.Context, address string) (*geocoding.GeocodeResult, error) {
	if f.geocodeFn != nil {
		return f.geocodeFn(ctx, address)
	}
	return nil, geocoding.ErrProviderUnavailable
}

func (f *fakeProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*geocoding.GeocodeResult, error) {
	if f.reverseFn != nil {
		return f.reverseFn(ctx, lat, lng)
	}
	return nil, geocoding.ErrProviderUnavailable
}

func (f *fakeProvider) Directions(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (*geocoding.DirectionsResult, error) {
	if f.directionsFn != nil {
		return f.directionsFn(ctx, originLat, originLng, destLat, destLng, mode)
	}
	return nil, geocoding.ErrProviderUnavailable
}

// newTestPlanner assembles a full planner over the given database and
// provider, with caching disabled unless withCache is set.
func newTestPlanner(t *testing.T, db *sql.DB, provider geocoding.Provider, cfg *config.Config) (*PlannerService, *repositorySet) {
	t.Helper()

	repos := &repositorySet{
		locations: repository.NewLocationRepository(db),
		routes:    repository.NewRouteRepository(db),
		segments:  repository.NewSegmentRepository(db),
		feedback:  repository.NewFeedbackRepository(db),
	}

	locationService := NewLocationService(repos.locations, provider, cfg)
	graphService := NewGraphService(repos.routes, repos.segments, cfg.SegmentHopBound)
	fareService := NewFareService(repos.feedback, repos.routes, cfg)
	fallbackService := NewFallbackService(provider, cfg)
	scorer := NewConfidenceScorer(cfg)

	planner := NewPlannerService(
		locationService, graphService, fareService, fallbackService, scorer,
		repos.locations, repos.routes, nil, cfg,
	)
	return planner, repos
}

type repositorySet struct {
	locations *repository.LocationRepository
	routes    *repository.RouteRepository
	segments  *repository.SegmentRepository
	feedback  *repository.FeedbackRepository
}
