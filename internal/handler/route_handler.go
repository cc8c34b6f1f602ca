package handler

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AvigateGroup/avigate-api-sub004/internal/service"
	"github.com/AvigateGroup/avigate-api-sub004/pkg/response"
)

// RouteHandler handles HTTP requests for stored routes
type RouteHandler struct {
	graph *service.GraphService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(graph *service.GraphService) *RouteHandler {
	return &RouteHandler{graph: graph}
}

// GetByID handles GET /api/v1/routes/:id
func (h *RouteHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid route ID")
		return
	}

	route, err := h.graph.GetRoute(c.Request.Context(), id)
	if err != nil {
		log.Printf("Route lookup failed: %v", err)
		response.InternalError(c, "Failed to get route")
		return
	}
	if route == nil || !route.IsActive {
		response.NotFound(c, "Route not found")
		return
	}

	response.Success(c, route)
}
