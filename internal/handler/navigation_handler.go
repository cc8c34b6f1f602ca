package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/AvigateGroup/avigate-api-sub004/internal/middleware"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/service"
	"github.com/AvigateGroup/avigate-api-sub004/pkg/response"
)

// NavigationHandler handles HTTP requests for route planning and fare feedback
type NavigationHandler struct {
	planner *service.PlannerService
	fares   *service.FareService
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(planner *service.PlannerService, fares *service.FareService) *NavigationHandler {
	return &NavigationHandler{planner: planner, fares: fares}
}

// Plan handles POST /api/v1/navigation/plan
func (h *NavigationHandler) Plan(c *gin.Context) {
	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid plan request: "+err.Error())
		return
	}

	if req.Start.IsEmpty() || req.End.IsEmpty() {
		response.BadRequest(c, "Both start and end must carry a location id, coordinates or text")
		return
	}

	result, err := h.planner.Plan(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUnresolvable) {
			response.Unprocessable(c, err.Error())
			return
		}
		log.Printf("Planning failed: %v", err)
		response.InternalError(c, "Failed to plan route")
		return
	}

	response.Success(c, result)
}

// SubmitFeedback handles POST /api/v1/navigation/feedback
func (h *NavigationHandler) SubmitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid feedback: "+err.Error())
		return
	}

	fb, err := h.fares.RecordFeedback(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidFeedback) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Printf("Feedback submission failed: %v", err)
		response.InternalError(c, "Failed to record feedback")
		return
	}

	response.Created(c, gin.H{
		"reference": fb.Reference,
		"step_id":   fb.StepID,
	})
}
