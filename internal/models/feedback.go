package models

import "time"

// FareFeedback is one user-submitted fare observation for a route step.
// Append-only: rows are never mutated or deleted after creation.
type FareFeedback struct {
	ID              int64     `json:"id" db:"id"`
	Reference       string    `json:"reference" db:"reference"`
	StepID          int64     `json:"step_id" db:"step_id"`
	UserID          *string   `json:"user_id,omitempty" db:"user_id"`
	AmountPaid      float64   `json:"amount_paid" db:"amount_paid"`
	DurationMinutes *int      `json:"duration_minutes,omitempty" db:"duration_minutes"`
	VehicleType     string    `json:"vehicle_type" db:"vehicle_type"`
	TravelledAt     time.Time `json:"travelled_at" db:"travelled_at"`
	Rating          int       `json:"rating" db:"rating"`
	Comments        string    `json:"comments,omitempty" db:"comments"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// FeedbackRequest is the submission payload for the feedback endpoint.
type FeedbackRequest struct {
	StepID          int64   `json:"step_id" binding:"required"`
	AmountPaid      float64 `json:"amount_paid" binding:"required"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	VehicleType     string  `json:"vehicle_type" binding:"required"`
	TravelledAt     string  `json:"travelled_at" binding:"required"` // RFC 3339 or 2006-01-02
	Rating          int     `json:"rating" binding:"required"`
	Comments        string  `json:"comments,omitempty"`
}
