package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AvigateGroup/avigate-api-sub004/internal/database"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
)

// FeedbackRepository handles database operations for fare feedback
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Insert appends a feedback row and folds it into the step's running
// aggregates in the same transaction. The aggregate update uses SQL-side
// arithmetic so concurrent submissions for one step never lose updates.
func (r *FeedbackRepository) Insert(ctx context.Context, fb *models.FareFeedback) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO fare_feedback (reference, step_id, user_id, amount_paid, duration_minutes,
				vehicle_type, travelled_at, rating, comments)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fb.Reference, fb.StepID, fb.UserID, fb.AmountPaid, fb.DurationMinutes,
			fb.VehicleType, fb.TravelledAt, fb.Rating, fb.Comments,
		)
		if err != nil {
			return fmt.Errorf("failed to insert feedback: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get feedback id: %w", err)
		}
		fb.ID = id

		// All expressions on the right-hand side see pre-update values,
		// so the averages cover every report including this one.
		durationMinutes := 0.0
		durationCount := 0
		if fb.DurationMinutes != nil {
			durationMinutes = float64(*fb.DurationMinutes)
			durationCount = 1
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE route_steps SET
				report_count = report_count + 1,
				fare_sum = fare_sum + ?,
				fare_average = (fare_sum + ?) / (report_count + 1),
				duration_count = duration_count + ?,
				duration_sum = duration_sum + ?,
				duration_average = CASE
					WHEN duration_count + ? > 0 THEN (duration_sum + ?) / (duration_count + ?)
					ELSE duration_average
				END,
				reports_updated_at = CURRENT_TIMESTAMP,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			fb.AmountPaid, fb.AmountPaid,
			durationCount, durationMinutes,
			durationCount, durationMinutes, durationCount,
			fb.StepID,
		)
		if err != nil {
			return fmt.Errorf("failed to update step aggregates: %w", err)
		}

		return nil
	})
}

// RecentByStep returns the most recent feedback rows for a step, newest
// first. limit bounds the variance window; older rows stay in the table
// for audit but drop out of the window.
func (r *FeedbackRepository) RecentByStep(ctx context.Context, stepID int64, limit int) ([]models.FareFeedback, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reference, step_id, user_id, amount_paid, duration_minutes,
			vehicle_type, travelled_at, rating, comments, created_at
		FROM fare_feedback
		WHERE step_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		stepID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var feedback []models.FareFeedback
	for rows.Next() {
		var fb models.FareFeedback
		err := rows.Scan(
			&fb.ID, &fb.Reference, &fb.StepID, &fb.UserID, &fb.AmountPaid, &fb.DurationMinutes,
			&fb.VehicleType, &fb.TravelledAt, &fb.Rating, &fb.Comments, &fb.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, fb)
	}

	return feedback, rows.Err()
}

// CountRecentByStep counts feedback rows for a step submitted after the
// given cutoff. Drives the confidence recency rule.
func (r *FeedbackRepository) CountRecentByStep(ctx context.Context, stepID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM fare_feedback WHERE step_id = ? AND created_at >= ?",
		stepID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent feedback: %w", err)
	}
	return count, nil
}
