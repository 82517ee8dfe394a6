package models

import "time"

// RosterStudent is a roster row consumed by the trip generator.
// Managed by the admissions module; read-only here.
type RosterStudent struct {
	ID             string    `json:"id" db:"id"`
	SchoolID       string    `json:"school_id" db:"school_id"`
	RouteProfileID string    `json:"route_profile_id" db:"route_profile_id"`
	StudentName    string    `json:"student_name" db:"student_name"`
	PickupAddress  string    `json:"pickup_address" db:"pickup_address"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
