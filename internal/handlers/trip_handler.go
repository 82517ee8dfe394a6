package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/schooltransit/transport-planner-backend/internal/services"
)

// TripHandler handles transport trip HTTP requests
type TripHandler struct {
	tripRepo        *database.TransportTripRepository
	stopRepo        *database.TripStopRepository
	conflictService *services.ConflictService
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(
	tripRepo *database.TransportTripRepository,
	stopRepo *database.TripStopRepository,
	conflictService *services.ConflictService,
) *TripHandler {
	return &TripHandler{
		tripRepo:        tripRepo,
		stopRepo:        stopRepo,
		conflictService: conflictService,
	}
}

// CreateTrip creates a transport trip, pre-checking resource conflicts
// POST /api/v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	trip := models.TransportTrip{
		SchoolID:                 req.SchoolID,
		RouteProfileID:           req.RouteProfileID,
		Name:                     req.Name,
		Code:                     req.Code,
		TripType:                 req.TripType,
		ScheduledStartTime:       req.ScheduledStartTime,
		ScheduledEndTime:         req.ScheduledEndTime,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		DriverID:                 req.DriverID,
		VehicleID:                req.VehicleID,
		AttendantID:              req.AttendantID,
	}

	if conflict, ok := h.checkAssignedResources(c, &trip, ""); !ok {
		return
	} else if conflict != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "resource_conflict",
			"message":  conflict.Message,
			"conflict": conflict,
		})
		return
	}

	if err := h.tripRepo.Create(&trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "create_trip_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trip created successfully",
		"trip":    trip,
	})
}

// GetTrip returns a trip with its stops
// GET /api/v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID := c.Param("id")

	trip, err := h.tripRepo.GetByID(tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "trip_not_found",
			"message": err.Error(),
		})
		return
	}

	stops, err := h.stopRepo.GetByTripID(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "fetch_stops_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip":  trip,
		"stops": stops,
	})
}

// ListTrips returns the trips for a school, optionally filtered by route profile
// GET /api/v1/trips?school_id=...&route_profile_id=...
func (h *TripHandler) ListTrips(c *gin.Context) {
	schoolID := c.Query("school_id")
	if schoolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "school_id query parameter is required",
		})
		return
	}

	trips, err := h.tripRepo.GetBySchool(schoolID, c.Query("route_profile_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "fetch_trips_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trips": trips,
		"count": len(trips),
	})
}

// UpdateTrip reassigns or reschedules a trip, pre-checking resource conflicts
// PUT /api/v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	tripID := c.Param("id")

	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	trip, err := h.tripRepo.GetByID(tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "trip_not_found",
			"message": err.Error(),
		})
		return
	}

	if req.Name != nil {
		trip.Name = *req.Name
	}
	if req.ScheduledStartTime != nil {
		trip.ScheduledStartTime = *req.ScheduledStartTime
	}
	if req.ScheduledEndTime != nil {
		trip.ScheduledEndTime = req.ScheduledEndTime
	}
	if req.EstimatedDurationMinutes != nil {
		trip.EstimatedDurationMinutes = *req.EstimatedDurationMinutes
	}
	if req.DriverID != nil {
		trip.DriverID = req.DriverID
	}
	if req.VehicleID != nil {
		trip.VehicleID = req.VehicleID
	}
	if req.AttendantID != nil {
		trip.AttendantID = req.AttendantID
	}

	if conflict, ok := h.checkAssignedResources(c, trip, trip.ID); !ok {
		return
	} else if conflict != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "resource_conflict",
			"message":  conflict.Message,
			"conflict": conflict,
		})
		return
	}

	if err := h.tripRepo.Update(trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "update_trip_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trip updated successfully",
		"trip":    trip,
	})
}

// DeactivateTrip soft-deletes a trip
// DELETE /api/v1/trips/:id
func (h *TripHandler) DeactivateTrip(c *gin.Context) {
	tripID := c.Param("id")

	if err := h.tripRepo.Deactivate(tripID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "deactivate_trip_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trip deactivated successfully",
	})
}

// CheckConflicts runs an advisory resource-conflict check without persisting anything
// POST /api/v1/trips/check-conflicts
func (h *TripHandler) CheckConflicts(c *gin.Context) {
	var req models.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	result, err := h.conflictService.CheckResourceConflicts(
		req.SchoolID, req.ResourceType, req.ResourceID,
		req.ScheduledStartTime, req.ScheduledEndTime, req.ExcludeTripID,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "conflict_check_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// checkAssignedResources runs the conflict check for each resource assigned to
// the trip. Returns ok=false when a response has already been written.
func (h *TripHandler) checkAssignedResources(c *gin.Context, trip *models.TransportTrip, excludeTripID string) (*models.ConflictCheck, bool) {
	endTime := ""
	if trip.ScheduledEndTime != nil {
		endTime = *trip.ScheduledEndTime
	}

	for _, resourceType := range []models.ResourceType{
		models.ResourceTypeDriver,
		models.ResourceTypeVehicle,
		models.ResourceTypeAttendant,
	} {
		resourceID := trip.ResourceID(resourceType)
		if resourceID == nil || *resourceID == "" {
			continue
		}

		conflict, err := h.conflictService.CheckResourceConflicts(
			trip.SchoolID, resourceType, *resourceID,
			trip.ScheduledStartTime, endTime, excludeTripID,
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "conflict_check_failed",
				"message": err.Error(),
			})
			return nil, false
		}
		if conflict.HasConflict {
			return conflict, true
		}
	}

	return nil, true
}
