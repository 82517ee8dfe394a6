package services

import (
	"fmt"

	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ConflictService runs advisory resource-conflict checks before trip
// assignment. The check is a fast user-facing early exit, not a guarantee:
// two concurrent callers can both pass and then both persist. The real
// overlap guard belongs in the database (exclusion constraint).
type ConflictService struct {
	tripRepo *database.TransportTripRepository
	failOpen bool
	logger   *logrus.Logger
}

// NewConflictService creates a new ConflictService. When failOpen is true a
// failed conflict query reports "no conflict" instead of an error, trading
// safety for availability; the historical behavior of the transport module.
func NewConflictService(tripRepo *database.TransportTripRepository, failOpen bool, logger *logrus.Logger) *ConflictService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ConflictService{
		tripRepo: tripRepo,
		failOpen: failOpen,
		logger:   logger,
	}
}

var resourceLabels = map[models.ResourceType]string{
	models.ResourceTypeDriver:    "Driver",
	models.ResourceTypeVehicle:   "Vehicle",
	models.ResourceTypeAttendant: "Attendant",
}

// CheckResourceConflicts reports whether assigning the resource to a trip with
// the given daily time window would overlap an existing active trip in the
// same school. Times are zero-padded HH:MM; the end defaults to the start
// when empty. excludeTripID lets an edit-in-place skip itself.
//
// First-match policy: the first overlapping trip (by start time) is reported,
// not an exhaustive list.
func (s *ConflictService) CheckResourceConflicts(
	schoolID string,
	resourceType models.ResourceType,
	resourceID string,
	scheduledStartTime string,
	scheduledEndTime string,
	excludeTripID string,
) (*models.ConflictCheck, error) {
	if !resourceType.IsValid() {
		return nil, fmt.Errorf("invalid resource type: %s", resourceType)
	}
	if resourceID == "" {
		return nil, fmt.Errorf("resource id is required")
	}
	if err := models.ValidateTimeOfDay(scheduledStartTime); err != nil {
		return nil, fmt.Errorf("scheduled start time: %w", err)
	}
	if scheduledEndTime == "" {
		scheduledEndTime = scheduledStartTime
	} else if err := models.ValidateTimeOfDay(scheduledEndTime); err != nil {
		return nil, fmt.Errorf("scheduled end time: %w", err)
	}

	trips, err := s.tripRepo.GetActiveByResource(schoolID, resourceType, resourceID, excludeTripID)
	if err != nil {
		if s.failOpen {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"school_id":     schoolID,
				"resource_type": resourceType,
				"resource_id":   resourceID,
			}).Warn("Conflict query failed, reporting no conflict (fail-open)")
			return &models.ConflictCheck{HasConflict: false}, nil
		}
		return nil, fmt.Errorf("failed to check resource conflicts: %w", err)
	}

	for _, trip := range trips {
		if !timeWindowsOverlap(scheduledStartTime, scheduledEndTime, trip.ScheduledStartTime, trip.EffectiveEndTime()) {
			continue
		}

		return &models.ConflictCheck{
			HasConflict:  true,
			ConflictType: resourceType,
			TripName:     trip.Name,
			Message: fmt.Sprintf("%s is already assigned to trip '%s' (%s - %s)",
				resourceLabels[resourceType], trip.Name, trip.ScheduledStartTime, trip.EffectiveEndTime()),
		}, nil
	}

	return &models.ConflictCheck{HasConflict: false}, nil
}

// timeWindowsOverlap tests two same-day [start, end) windows for overlap.
// Both windows are zero-padded HH:MM, so lexicographic comparison matches
// chronological order. Adjacent windows (newEnd == existingStart or
// existingEnd == newStart) do not overlap. The containment branch also
// catches zero-width windows, which the half-open branches would miss.
func timeWindowsOverlap(newStart, newEnd, existingStart, existingEnd string) bool {
	// New start falls inside the existing window.
	if newStart >= existingStart && newStart < existingEnd {
		return true
	}
	// New end falls inside the existing window.
	if newEnd > existingStart && newEnd <= existingEnd {
		return true
	}
	// New window fully contains the existing window.
	if newStart <= existingStart && existingEnd <= newEnd {
		return true
	}
	return false
}
