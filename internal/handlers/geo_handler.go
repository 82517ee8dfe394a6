package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/pkg/geo"
)

// GeoHandler proxies geocoding and distance requests to the routing provider
type GeoHandler struct {
	gateway geo.Gateway
}

// NewGeoHandler creates a new GeoHandler
func NewGeoHandler(gateway geo.Gateway) *GeoHandler {
	return &GeoHandler{gateway: gateway}
}

// GeocodeRequest represents the request body for address resolution
type GeocodeRequest struct {
	Address string `json:"address" binding:"required"`
}

// Geocode resolves a free-form address to coordinates
// POST /api/v1/geo/geocode
func (h *GeoHandler) Geocode(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	result, err := h.gateway.Geocode(req.Address)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "geocode_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DistanceRequest represents the request body for route distance
type DistanceRequest struct {
	Origin      string   `json:"origin" binding:"required"`
	Destination string   `json:"destination" binding:"required"`
	Waypoints   []string `json:"waypoints"`
}

// CalculateDistance returns road distance and travel time for a route
// POST /api/v1/geo/distance
func (h *GeoHandler) CalculateDistance(c *gin.Context) {
	var req DistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	result, err := h.gateway.CalculateDistance(req.Origin, req.Destination, req.Waypoints)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "distance_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
