package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/schooltransit/transport-planner-backend/internal/services"
)

// PlannerHandler handles trip auto-generation HTTP requests
type PlannerHandler struct {
	plannerService *services.TripPlannerService
}

// NewPlannerHandler creates a new PlannerHandler
func NewPlannerHandler(plannerService *services.TripPlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

// AutoGenerate builds trip suggestions for a route profile's roster.
// Nothing is persisted; the client reviews the suggestions and accepts
// them via CreateFromSuggestions.
// POST /api/v1/trips/auto-generate
func (h *PlannerHandler) AutoGenerate(c *gin.Context) {
	var req models.AutoGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	result, err := h.plannerService.AutoGenerateTrips(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "auto_generate_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateFromSuggestions persists accepted suggestions as trips with stops
// POST /api/v1/trips/from-suggestions
func (h *PlannerHandler) CreateFromSuggestions(c *gin.Context) {
	var req models.CreateFromSuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	trips, err := h.plannerService.CreateTripsFromSuggestions(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "create_from_suggestions_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trips created successfully",
		"trips":   trips,
		"count":   len(trips),
	})
}
