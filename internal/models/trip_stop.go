package models

import (
	"fmt"
	"time"
)

// AssignmentStatus is the traffic-light status of a stop's student assignment
type AssignmentStatus string

const (
	AssignmentStatusRed    AssignmentStatus = "red"    // nobody assigned yet
	AssignmentStatusYellow AssignmentStatus = "yellow" // partially assigned
	AssignmentStatusGreen  AssignmentStatus = "green"  // fully assigned
)

// DeriveAssignmentStatus computes the stop status from assigned vs expected counts
func DeriveAssignmentStatus(assigned, total int) AssignmentStatus {
	if assigned == 0 {
		return AssignmentStatusRed
	}
	if assigned >= total {
		return AssignmentStatusGreen
	}
	return AssignmentStatusYellow
}

// TripStop represents a pickup/drop-off point belonging to exactly one trip
type TripStop struct {
	ID                   string           `json:"id" db:"id"`
	TripID               string           `json:"trip_id" db:"trip_id"`
	Name                 string           `json:"name" db:"name"`
	Address              string           `json:"address" db:"address"`
	StopOrder            int              `json:"stop_order" db:"stop_order"`
	ScheduledArrivalTime string           `json:"scheduled_arrival_time" db:"scheduled_arrival_time"`
	WaitDurationMinutes  int              `json:"wait_duration_minutes" db:"wait_duration_minutes"`
	TotalStudentsAtStop  int              `json:"total_students_at_stop" db:"total_students_at_stop"`
	AssignedStudents     int              `json:"assigned_students" db:"assigned_students"`
	AssignmentStatus     AssignmentStatus `json:"assignment_status" db:"assignment_status"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// UpdateStopAssignmentRequest sets the assigned student count for a stop
type UpdateStopAssignmentRequest struct {
	AssignedStudents int `json:"assigned_students"`
}

// Validate validates the stop assignment update request
func (r *UpdateStopAssignmentRequest) Validate() error {
	if r.AssignedStudents < 0 {
		return fmt.Errorf("assigned_students must not be negative, got %d", r.AssignedStudents)
	}
	return nil
}
