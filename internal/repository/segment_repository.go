package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
)

// SegmentRepository handles database operations for shared route segments
type SegmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

const segmentColumns = `id, name, start_location_id, end_location_id, transport_modes,
	intermediate_stops, fare_min, fare_max, duration_minutes, distance_km,
	is_verified, is_active, created_at, updated_at`

func scanSegment(row interface{ Scan(...interface{}) error }) (*models.RouteSegment, error) {
	var s models.RouteSegment
	var modes, stops string
	err := row.Scan(
		&s.ID, &s.Name, &s.StartLocationID, &s.EndLocationID, &modes,
		&stops, &s.FareMin, &s.FareMax, &s.DurationMinutes, &s.DistanceKm,
		&s.IsVerified, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.TransportModes = models.DecodeModes(modes)
	s.IntermediateStops = models.DecodeStops(stops)
	return &s, nil
}

// ListActive returns every active segment. The planner builds its
// adjacency list from this set; a city's segment count stays small enough
// to load whole.
func (r *SegmentRepository) ListActive(ctx context.Context) ([]models.RouteSegment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+segmentColumns+" FROM route_segments WHERE is_active = 1 ORDER BY is_verified DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []models.RouteSegment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, *s)
	}

	return segments, rows.Err()
}

// GetByID retrieves a single segment. Returns (nil, nil) when absent.
func (r *SegmentRepository) GetByID(ctx context.Context, id int64) (*models.RouteSegment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+segmentColumns+" FROM route_segments WHERE id = ?", id)

	s, err := scanSegment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}
	return s, nil
}
