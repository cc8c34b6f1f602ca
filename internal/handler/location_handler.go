package handler

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AvigateGroup/avigate-api-sub004/internal/service"
	"github.com/AvigateGroup/avigate-api-sub004/pkg/response"
)

// LocationHandler handles HTTP requests for locations
type LocationHandler struct {
	locations *service.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// Search handles GET /api/v1/locations/search?q=&limit=
func (h *LocationHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "Missing query parameter q")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	locations, err := h.locations.Search(c.Request.Context(), query, limit)
	if err != nil {
		log.Printf("Location search failed: %v", err)
		response.InternalError(c, "Failed to search locations")
		return
	}

	response.Success(c, gin.H{
		"query": query,
		"data":  locations,
	})
}

// GetByID handles GET /api/v1/locations/:id
func (h *LocationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid location ID")
		return
	}

	loc, err := h.locations.Get(c.Request.Context(), id)
	if err != nil {
		log.Printf("Location lookup failed: %v", err)
		response.InternalError(c, "Failed to get location")
		return
	}
	if loc == nil || !loc.IsActive {
		response.NotFound(c, "Location not found")
		return
	}

	response.Success(c, loc)
}
