package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
)

// RouteRepository handles database operations for routes and their steps
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `id, name, start_location_id, end_location_id, transport_modes,
	fare_min, fare_max, duration_minutes, is_verified, is_active,
	average_rating, usage_count, created_at, updated_at`

const stepColumns = `id, route_id, position, from_location_id, to_location_id, transport_mode,
	instructions, fare_min, fare_max, duration_minutes, pickup_point, dropoff_point,
	report_count, fare_sum, fare_average, duration_count, duration_sum, duration_average,
	reports_updated_at, created_at, updated_at`

func scanRoute(row interface{ Scan(...interface{}) error }) (*models.Route, error) {
	var rt models.Route
	var modes string
	err := row.Scan(
		&rt.ID, &rt.Name, &rt.StartLocationID, &rt.EndLocationID, &modes,
		&rt.FareMin, &rt.FareMax, &rt.DurationMinutes, &rt.IsVerified, &rt.IsActive,
		&rt.AverageRating, &rt.UsageCount, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rt.TransportModes = models.DecodeModes(modes)
	return &rt, nil
}

func scanStep(row interface{ Scan(...interface{}) error }) (*models.RouteStep, error) {
	var s models.RouteStep
	err := row.Scan(
		&s.ID, &s.RouteID, &s.Position, &s.FromLocationID, &s.ToLocationID, &s.TransportMode,
		&s.Instructions, &s.FareMin, &s.FareMax, &s.DurationMinutes, &s.PickupPoint, &s.DropoffPoint,
		&s.ReportCount, &s.FareSum, &s.FareAverage, &s.DurationCount, &s.DurationSum, &s.DurationAverage,
		&s.ReportsUpdatedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindDirect returns active routes between the given endpoints, best first:
// verified routes before unverified, then by rating and usage.
func (r *RouteRepository) FindDirect(ctx context.Context, startID, endID int64, limit int) ([]models.Route, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+routeColumns+` FROM routes
		WHERE is_active = 1 AND start_location_id = ? AND end_location_id = ?
		ORDER BY is_verified DESC, average_rating DESC, usage_count DESC
		LIMIT ?`,
		startID, endID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query direct routes: %w", err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range routes {
		steps, err := r.GetSteps(ctx, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Steps = steps
	}

	return routes, nil
}

// GetByID retrieves a route with its steps. Returns (nil, nil) when absent.
func (r *RouteRepository) GetByID(ctx context.Context, id int64) (*models.Route, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+routeColumns+" FROM routes WHERE id = ?", id)

	rt, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	steps, err := r.GetSteps(ctx, rt.ID)
	if err != nil {
		return nil, err
	}
	rt.Steps = steps

	return rt, nil
}

// GetSteps returns a route's steps in position order.
func (r *RouteRepository) GetSteps(ctx context.Context, routeID int64) ([]models.RouteStep, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+stepColumns+" FROM route_steps WHERE route_id = ? ORDER BY position", routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query route steps: %w", err)
	}
	defer rows.Close()

	var steps []models.RouteStep
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route step: %w", err)
		}
		steps = append(steps, *s)
	}

	return steps, rows.Err()
}

// GetStepByID retrieves a single step. Returns (nil, nil) when absent.
func (r *RouteRepository) GetStepByID(ctx context.Context, stepID int64) (*models.RouteStep, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+stepColumns+" FROM route_steps WHERE id = ?", stepID)

	s, err := scanStep(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route step: %w", err)
	}
	return s, nil
}

// IncrementUsage bumps a route's usage counter off the request path.
func (r *RouteRepository) IncrementUsage(ctx context.Context, routeID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE routes SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", routeID)
	if err != nil {
		return fmt.Errorf("failed to increment route usage: %w", err)
	}
	return nil
}

// RefreshAggregates recomputes a route's fare range and duration from its
// steps' current estimates. Called after feedback lands on a step.
func (r *RouteRepository) RefreshAggregates(ctx context.Context, routeID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE routes SET
			fare_min = (SELECT COALESCE(SUM(fare_min), 0) FROM route_steps WHERE route_id = ?),
			fare_max = (SELECT COALESCE(SUM(fare_max), 0) FROM route_steps WHERE route_id = ?),
			duration_minutes = (SELECT COALESCE(SUM(duration_minutes), 0) FROM route_steps WHERE route_id = ?),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		routeID, routeID, routeID, routeID,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh route aggregates: %w", err)
	}
	return nil
}
