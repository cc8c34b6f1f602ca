package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
	"github.com/AvigateGroup/avigate-api-sub004/internal/stats"
)

// FareService folds crowdsourced fare feedback into per-step estimates
// and accepts new feedback submissions.
type FareService struct {
	feedback *repository.FeedbackRepository
	routes   *repository.RouteRepository
	cfg      *config.Config
}

// NewFareService creates a new fare service
func NewFareService(feedback *repository.FeedbackRepository, routes *repository.RouteRepository, cfg *config.Config) *FareService {
	return &FareService{feedback: feedback, routes: routes, cfg: cfg}
}

// StepEstimate is the crowd-informed estimate for one route step.
type StepEstimate struct {
	FareMin         float64
	FareMax         float64
	FareAverage     float64
	DurationMinutes int
	AccuracyScore   float64
	ReportCount     int64
	RecentReports   int64
}

// Enrich produces a step's estimate from its running aggregates and the
// retained feedback window. A step with no reports keeps its admin-entered
// fare bounds and scores zero accuracy.
func (s *FareService) Enrich(ctx context.Context, step *models.RouteStep) (*StepEstimate, error) {
	est := &StepEstimate{
		FareMin:         step.FareMin,
		FareMax:         step.FareMax,
		DurationMinutes: step.DurationMinutes,
		ReportCount:     step.ReportCount,
	}

	if step.ReportCount == 0 {
		return est, nil
	}

	est.FareAverage = step.FareAverage
	if step.DurationAverage > 0 {
		est.DurationMinutes = int(step.DurationAverage + 0.5)
	}

	window, err := s.feedback.RecentByStep(ctx, step.ID, s.cfg.FeedbackWindowSize)
	if err != nil {
		return nil, fmt.Errorf("feedback window load: %w", err)
	}

	recentCutoff := time.Now().Add(-s.cfg.ReportRecencyWindow)
	fares := make([]float64, 0, len(window))
	for _, fb := range window {
		fares = append(fares, fb.AmountPaid)
		if fb.CreatedAt.After(recentCutoff) {
			est.RecentReports++
		}
	}

	// Crowd average anchors the range; admin bounds stretch it when the
	// crowd sits inside them.
	if est.FareAverage > 0 {
		spread := stats.StdDev(fares)
		est.FareMin = stats.Clamp(est.FareAverage-spread, 0, est.FareAverage)
		est.FareMax = est.FareAverage + spread
		if step.FareMin > 0 && step.FareMin < est.FareMin {
			est.FareMin = step.FareMin
		}
		if step.FareMax > est.FareMax {
			est.FareMax = step.FareMax
		}
	}

	est.AccuracyScore = accuracyScore(fares, est.RecentReports, step.ReportsUpdatedAt)

	return est, nil
}

// accuracyScore rates estimate trust in [0,5]: more reports and fresher
// reports raise it, high relative variance lowers it.
func accuracyScore(fares []float64, recent int64, lastUpdated *time.Time) float64 {
	if len(fares) == 0 {
		return 0
	}

	// Volume: saturates at 10 reports
	score := stats.Clamp(float64(len(fares))/10.0, 0, 1) * 2.0

	// Recency: full credit inside 30 days, none past a year
	if lastUpdated != nil {
		age := time.Since(*lastUpdated)
		switch {
		case age <= 30*24*time.Hour:
			score += 1.5
		case age <= 90*24*time.Hour:
			score += 1.0
		case age <= 365*24*time.Hour:
			score += 0.5
		}
	}
	if recent > 0 {
		score += 0.5
	}

	// Dispersion penalty: relative std-dev above 50% wipes the volume credit
	cv := stats.CoefficientOfVariation(fares)
	score += (1 - stats.Clamp(cv/0.5, 0, 1)) * 1.0

	return stats.Clamp(score, 0, 5)
}

// RecentReportCount counts a step's reports inside the recency window.
func (s *FareService) RecentReportCount(ctx context.Context, stepID int64) (int64, error) {
	return s.feedback.CountRecentByStep(ctx, stepID, time.Now().Add(-s.cfg.ReportRecencyWindow))
}

// RecordFeedback validates and appends one fare observation, folding it
// into the step's aggregates. Route-level aggregates refresh off the
// request path; their failure never surfaces to the submitter.
func (s *FareService) RecordFeedback(ctx context.Context, req models.FeedbackRequest, userID *string) (*models.FareFeedback, error) {
	travelledAt, err := parseTravelDate(req.TravelledAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}

	if req.AmountPaid <= 0 {
		return nil, fmt.Errorf("%w: amount paid must be positive", ErrInvalidFeedback)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidFeedback)
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidFeedback)
	}
	if travelledAt.After(time.Now().Add(24 * time.Hour)) {
		return nil, fmt.Errorf("%w: travel date is in the future", ErrInvalidFeedback)
	}

	step, err := s.routes.GetStepByID(ctx, req.StepID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, fmt.Errorf("%w: step %d not found", ErrInvalidFeedback, req.StepID)
	}

	fb := &models.FareFeedback{
		Reference:       uuid.NewString(),
		StepID:          req.StepID,
		UserID:          userID,
		AmountPaid:      req.AmountPaid,
		DurationMinutes: req.DurationMinutes,
		VehicleType:     req.VehicleType,
		TravelledAt:     travelledAt,
		Rating:          req.Rating,
		Comments:        req.Comments,
	}

	if err := s.feedback.Insert(ctx, fb); err != nil {
		return nil, err
	}

	go func(routeID int64) {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.routes.RefreshAggregates(bg, routeID); err != nil {
			log.Printf("Failed to refresh aggregates for route %d: %v", routeID, err)
		}
	}(step.RouteID)

	return fb, nil
}

func parseTravelDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable travel date %q", raw)
}
