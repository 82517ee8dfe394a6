package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// StopHandler handles trip stop HTTP requests
type StopHandler struct {
	stopRepo *database.TripStopRepository
	tripRepo *database.TransportTripRepository
}

// NewStopHandler creates a new StopHandler
func NewStopHandler(stopRepo *database.TripStopRepository, tripRepo *database.TransportTripRepository) *StopHandler {
	return &StopHandler{
		stopRepo: stopRepo,
		tripRepo: tripRepo,
	}
}

// ListTripStops returns a trip's stops in stop order
// GET /api/v1/trips/:id/stops
func (h *StopHandler) ListTripStops(c *gin.Context) {
	tripID := c.Param("id")

	stops, err := h.stopRepo.GetByTripID(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "fetch_stops_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stops": stops,
		"count": len(stops),
	})
}

// UpdateAssignment sets a stop's assigned student count, re-derives its
// traffic-light status and rolls the count up to the parent trip
// PUT /api/v1/stops/:id/assignment
func (h *StopHandler) UpdateAssignment(c *gin.Context) {
	stopID := c.Param("id")

	var req models.UpdateStopAssignmentRequest
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

	stop, err := h.stopRepo.GetByID(stopID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "stop_not_found",
			"message": err.Error(),
		})
		return
	}

	status := models.DeriveAssignmentStatus(req.AssignedStudents, stop.TotalStudentsAtStop)
	if err := h.stopRepo.UpdateAssignment(stopID, req.AssignedStudents, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "update_assignment_failed",
			"message": err.Error(),
		})
		return
	}

	// Roll the per-stop counts up to the trip total. Best-effort: the stop
	// update already succeeded, but a failed roll-up leaves the trip total
	// stale until the nightly refresh, so it is logged.
	if stops, err := h.stopRepo.GetByTripID(stop.TripID); err != nil {
		logrus.WithError(err).WithField("trip_id", stop.TripID).
			Warn("Failed to load stops for trip total roll-up")
	} else {
		total := 0
		for _, s := range stops {
			total += s.AssignedStudents
		}
		if err := h.tripRepo.UpdateAssignedStudents(stop.TripID, total); err != nil {
			logrus.WithError(err).WithField("trip_id", stop.TripID).
				Warn("Failed to roll up assigned students to trip")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Stop assignment updated successfully",
		"assigned_students": req.AssignedStudents,
		"assignment_status": status,
	})
}
