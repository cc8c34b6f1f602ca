package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/spatial"
)

// LocationRepository handles database operations for locations
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

const locationColumns = `id, name, address, city, state, category, latitude, longitude,
	is_verified, is_active, search_count, route_count, created_at, updated_at`

func scanLocation(row interface{ Scan(...interface{}) error }) (*models.Location, error) {
	var l models.Location
	err := row.Scan(
		&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Category,
		&l.Latitude, &l.Longitude, &l.IsVerified, &l.IsActive,
		&l.SearchCount, &l.RouteCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new location and assigns its ID.
func (r *LocationRepository) Create(ctx context.Context, l *models.Location) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (name, address, city, state, category, latitude, longitude, is_verified, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		l.Name, l.Address, l.City, l.State, l.Category, l.Latitude, l.Longitude, l.IsVerified,
	)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get location id: %w", err)
	}
	l.ID = id
	l.IsActive = true

	return nil
}

// GetByID retrieves a single location by ID. Returns (nil, nil) when absent.
func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE id = ?", id)

	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return l, nil
}

// FindNearby returns active locations within radiusMeters of a point,
// nearest first. A bounding box prefilter keeps the index usable; the
// exact distance check happens in memory.
func (r *LocationRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]models.Location, error) {
	minLat, minLng, maxLat, maxLng := spatial.BoundingBox(lat, lng, radiusMeters)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+locationColumns+` FROM locations
		WHERE is_active = 1
		  AND latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?`,
		minLat, maxLat, minLng, maxLng,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby locations: %w", err)
	}
	defer rows.Close()

	type withDistance struct {
		loc  models.Location
		dist float64
	}

	var candidates []withDistance
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		d := spatial.HaversineDistance(lat, lng, l.Latitude, l.Longitude)
		if d <= radiusMeters {
			candidates = append(candidates, withDistance{loc: *l, dist: d})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	locations := make([]models.Location, 0, len(candidates))
	for _, c := range candidates {
		locations = append(locations, c.loc)
	}
	return locations, nil
}

// SearchByName returns active locations whose name or address matches the
// query substring, most popular first.
func (r *LocationRepository) SearchByName(ctx context.Context, query string, limit int) ([]models.Location, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+locationColumns+` FROM locations
		WHERE is_active = 1 AND (name LIKE ? OR address LIKE ?)
		ORDER BY is_verified DESC, search_count DESC, route_count DESC
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, *l)
	}

	return locations, rows.Err()
}

// IncrementSearchCount bumps the popularity counter. Called from a
// goroutine off the request path; SQL-side arithmetic keeps it atomic.
func (r *LocationRepository) IncrementSearchCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE locations SET search_count = search_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment search count: %w", err)
	}
	return nil
}

// IncrementRouteCount bumps the routes-through-here counter.
func (r *LocationRepository) IncrementRouteCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE locations SET route_count = route_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment route count: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a location. Locations are never hard-deleted.
func (r *LocationRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE locations SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate location: %w", err)
	}
	return nil
}
