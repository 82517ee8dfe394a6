package models

import "time"

// RouteProfile groups the students and defaults for one service area of a school
type RouteProfile struct {
	ID                     string    `json:"id" db:"id"`
	SchoolID               string    `json:"school_id" db:"school_id"`
	Name                   string    `json:"name" db:"name"`
	DefaultStartTime       string    `json:"default_start_time" db:"default_start_time"`
	DefaultVehicleCapacity int       `json:"default_vehicle_capacity" db:"default_vehicle_capacity"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" db:"updated_at"`
}
