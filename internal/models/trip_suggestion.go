package models

import "fmt"

// AddressGroup carries the exact student tally for one pickup address within
// a suggestion, so stop counts do not have to be re-approximated on accept.
type AddressGroup struct {
	Address      string `json:"address"`
	StudentCount int    `json:"student_count"`
}

// TripSuggestion is an ephemeral trip candidate produced by auto-generation.
// Nothing is persisted until the caller accepts the suggestions.
type TripSuggestion struct {
	TripNumber        int            `json:"trip_number"`
	Name              string         `json:"name"`
	StudentCount      int            `json:"student_count"`
	StopCount         int            `json:"stop_count"`
	StudentIDs        []string       `json:"student_ids"`
	Addresses         []string       `json:"addresses"`
	AddressGroups     []AddressGroup `json:"address_groups"`
	EstimatedDistance string         `json:"estimated_distance"`
	EstimatedDuration string         `json:"estimated_duration"`
}

// AutoGenerateResult is the outcome of a trip auto-generation run
type AutoGenerateResult struct {
	TotalStudents   int              `json:"total_students"`
	VehicleCapacity int              `json:"vehicle_capacity"`
	TripsNeeded     int              `json:"trips_needed"`
	Suggestions     []TripSuggestion `json:"suggestions"`
}

// AutoGenerateRequest represents the request to generate trip suggestions
type AutoGenerateRequest struct {
	RouteProfileID  string `json:"route_profile_id" binding:"required"`
	SchoolID        string `json:"school_id" binding:"required"`
	VehicleCapacity int    `json:"vehicle_capacity"`
}

// CreateFromSuggestionsRequest represents the batch-accept request
type CreateFromSuggestionsRequest struct {
	Suggestions    []TripSuggestion `json:"suggestions"`
	RouteProfileID string           `json:"route_profile_id" binding:"required"`
	SchoolID       string           `json:"school_id" binding:"required"`
	TripType       TripType         `json:"trip_type" binding:"required"`
	StartTime      string           `json:"start_time" binding:"required"`
}

// Validate validates the batch-accept request
func (r *CreateFromSuggestionsRequest) Validate() error {
	if r.TripType != TripTypePickup && r.TripType != TripTypeDropoff {
		return fmt.Errorf("trip_type must be 'pickup' or 'dropoff', got '%s'", r.TripType)
	}
	if err := ValidateTimeOfDay(r.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	return nil
}
