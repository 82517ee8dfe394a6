package models

import (
	"errors"
	"fmt"
	"time"
)

// TripStatus represents the lifecycle status of a transport trip
type TripStatus string

const (
	TripStatusActive   TripStatus = "active"
	TripStatusInactive TripStatus = "inactive"
)

// TripType distinguishes morning pickup runs from afternoon dropoff runs
type TripType string

const (
	TripTypePickup  TripType = "pickup"
	TripTypeDropoff TripType = "dropoff"
)

// ResourceType identifies which assignable resource a conflict check targets
type ResourceType string

const (
	ResourceTypeDriver    ResourceType = "driver"
	ResourceTypeVehicle   ResourceType = "vehicle"
	ResourceTypeAttendant ResourceType = "attendant"
)

// IsValid reports whether the resource type is one of driver/vehicle/attendant
func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceTypeDriver, ResourceTypeVehicle, ResourceTypeAttendant:
		return true
	}
	return false
}

// TransportTrip represents a scheduled vehicle run for a school
type TransportTrip struct {
	ID                       string     `json:"id" db:"id"`
	SchoolID                 string     `json:"school_id" db:"school_id"`
	RouteProfileID           string     `json:"route_profile_id" db:"route_profile_id"`
	Name                     string     `json:"name" db:"name"`
	Code                     string     `json:"code" db:"code"`
	TripType                 TripType   `json:"trip_type" db:"trip_type"`
	ScheduledStartTime       string     `json:"scheduled_start_time" db:"scheduled_start_time"`
	ScheduledEndTime         *string    `json:"scheduled_end_time,omitempty" db:"scheduled_end_time"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes" db:"estimated_duration_minutes"`
	DriverID                 *string    `json:"driver_id,omitempty" db:"driver_id"`
	VehicleID                *string    `json:"vehicle_id,omitempty" db:"vehicle_id"`
	AttendantID              *string    `json:"attendant_id,omitempty" db:"attendant_id"`
	AssignedStudents         int        `json:"assigned_students" db:"assigned_students"`
	Status                   TripStatus `json:"status" db:"status"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// ResourceID returns the assigned id for the given resource type, or nil
func (t *TransportTrip) ResourceID(resourceType ResourceType) *string {
	switch resourceType {
	case ResourceTypeDriver:
		return t.DriverID
	case ResourceTypeVehicle:
		return t.VehicleID
	case ResourceTypeAttendant:
		return t.AttendantID
	}
	return nil
}

// EffectiveEndTime returns the scheduled end, defaulting to the start when absent.
// A trip with no end is treated as a zero-width window at its start.
func (t *TransportTrip) EffectiveEndTime() string {
	if t.ScheduledEndTime != nil && *t.ScheduledEndTime != "" {
		return *t.ScheduledEndTime
	}
	return t.ScheduledStartTime
}

// ConflictCheck is the result of an advisory resource-conflict check.
// First-match policy: only the first overlapping trip is reported.
type ConflictCheck struct {
	HasConflict  bool         `json:"has_conflict"`
	ConflictType ResourceType `json:"conflict_type,omitempty"`
	TripName     string       `json:"trip_name,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// CreateTripRequest represents the request to create a transport trip
type CreateTripRequest struct {
	SchoolID                 string   `json:"school_id" binding:"required"`
	RouteProfileID           string   `json:"route_profile_id" binding:"required"`
	Name                     string   `json:"name" binding:"required"`
	Code                     string   `json:"code"`
	TripType                 TripType `json:"trip_type" binding:"required"`
	ScheduledStartTime       string   `json:"scheduled_start_time" binding:"required"`
	ScheduledEndTime         *string  `json:"scheduled_end_time,omitempty"`
	EstimatedDurationMinutes int      `json:"estimated_duration_minutes"`
	DriverID                 *string  `json:"driver_id,omitempty"`
	VehicleID                *string  `json:"vehicle_id,omitempty"`
	AttendantID              *string  `json:"attendant_id,omitempty"`
}

// Validate validates the create trip request
func (r *CreateTripRequest) Validate() error {
	if r.TripType != TripTypePickup && r.TripType != TripTypeDropoff {
		return fmt.Errorf("trip_type must be 'pickup' or 'dropoff', got '%s'", r.TripType)
	}

	if err := ValidateTimeOfDay(r.ScheduledStartTime); err != nil {
		return fmt.Errorf("scheduled_start_time: %w", err)
	}

	if r.ScheduledEndTime != nil && *r.ScheduledEndTime != "" {
		if err := ValidateTimeOfDay(*r.ScheduledEndTime); err != nil {
			return fmt.Errorf("scheduled_end_time: %w", err)
		}
	}

	if r.EstimatedDurationMinutes < 0 {
		return errors.New("estimated_duration_minutes must not be negative")
	}

	return nil
}

// UpdateTripRequest represents the request to reassign or reschedule a trip
type UpdateTripRequest struct {
	Name                     *string `json:"name,omitempty"`
	ScheduledStartTime       *string `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime         *string `json:"scheduled_end_time,omitempty"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes,omitempty"`
	DriverID                 *string `json:"driver_id,omitempty"`
	VehicleID                *string `json:"vehicle_id,omitempty"`
	AttendantID              *string `json:"attendant_id,omitempty"`
}

// Validate validates the update trip request
func (r *UpdateTripRequest) Validate() error {
	if r.ScheduledStartTime != nil {
		if err := ValidateTimeOfDay(*r.ScheduledStartTime); err != nil {
			return fmt.Errorf("scheduled_start_time: %w", err)
		}
	}

	if r.ScheduledEndTime != nil && *r.ScheduledEndTime != "" {
		if err := ValidateTimeOfDay(*r.ScheduledEndTime); err != nil {
			return fmt.Errorf("scheduled_end_time: %w", err)
		}
	}

	return nil
}

// ConflictCheckRequest represents the request to run an advisory conflict check
type ConflictCheckRequest struct {
	SchoolID           string       `json:"school_id" binding:"required"`
	ResourceType       ResourceType `json:"resource_type" binding:"required"`
	ResourceID         string       `json:"resource_id" binding:"required"`
	ScheduledStartTime string       `json:"scheduled_start_time" binding:"required"`
	ScheduledEndTime   string       `json:"scheduled_end_time"`
	ExcludeTripID      string       `json:"exclude_trip_id"`
}

// ValidateTimeOfDay validates a zero-padded 24-hour HH:MM time-of-day string.
// Zero padding matters: conflict windows are compared lexicographically.
func ValidateTimeOfDay(value string) error {
	if len(value) != 5 {
		return fmt.Errorf("time must be in HH:MM format, got '%s'", value)
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("time must be in HH:MM format, got '%s'", value)
	}
	return nil
}
