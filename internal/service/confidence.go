package service

import (
	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
)

// StepProvenance describes where an assembled step's data came from,
// which is all the confidence scorer is allowed to look at.
type StepProvenance struct {
	// FromGraph is true when a stored route or segment backs the step.
	FromGraph bool
	// Verified is true when that route/segment passed moderation.
	Verified bool
	// RecentReports is the count of fare reports inside the recency window.
	RecentReports int64
	// GeometricFallback is true when the step was synthesized from
	// provider geometry or the distance heuristic.
	GeometricFallback bool
	// HeuristicOnly is true when even the provider failed and the step
	// is pure haversine arithmetic.
	HeuristicOnly bool
}

// ConfidenceScorer assigns a data-availability tag to each assembled step
// based on provenance. Thresholds come from config.
type ConfidenceScorer struct {
	minRecentReports int64
}

// NewConfidenceScorer creates a scorer with the configured thresholds.
func NewConfidenceScorer(cfg *config.Config) *ConfidenceScorer {
	return &ConfidenceScorer{minRecentReports: int64(cfg.MinRecentReports)}
}

// Score tags one step. The rules degrade gracefully: anything the graph
// does not know about still gets a low-confidence tag, never an error.
func (c *ConfidenceScorer) Score(p StepProvenance) models.DataAvailability {
	if !p.FromGraph {
		reason := "estimated from road geometry; no route data for this leg"
		if p.HeuristicOnly {
			reason = "estimated from straight-line distance; directions provider unavailable"
		}
		return models.DataAvailability{
			HasVehicleData: false,
			Confidence:     models.ConfidenceLow,
			Reason:         reason,
		}
	}

	wellReported := p.RecentReports >= c.minRecentReports

	switch {
	case p.Verified && wellReported:
		return models.DataAvailability{
			HasVehicleData: true,
			Confidence:     models.ConfidenceHigh,
			Reason:         "verified route with recent fare reports",
		}
	case p.Verified:
		return models.DataAvailability{
			HasVehicleData: true,
			Confidence:     models.ConfidenceMedium,
			Reason:         "verified route; few recent fare reports",
		}
	case wellReported:
		return models.DataAvailability{
			HasVehicleData: true,
			Confidence:     models.ConfidenceMedium,
			Reason:         "unverified route with recent fare reports",
		}
	default:
		return models.DataAvailability{
			HasVehicleData: true,
			Confidence:     models.ConfidenceLow,
			Reason:         "unverified route without recent fare reports",
		}
	}
}

// ConfidenceRank orders confidence levels for route ranking.
func ConfidenceRank(confidence string) int {
	switch confidence {
	case models.ConfidenceHigh:
		return 2
	case models.ConfidenceMedium:
		return 1
	default:
		return 0
	}
}
