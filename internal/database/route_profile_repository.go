package database

import (
	"database/sql"
	"fmt"

	"github.com/schooltransit/transport-planner-backend/internal/models"
)

// RouteProfileRepository handles database operations for the route_profiles table
type RouteProfileRepository struct {
	db DB
}

// NewRouteProfileRepository creates a new RouteProfileRepository
func NewRouteProfileRepository(db DB) *RouteProfileRepository {
	return &RouteProfileRepository{db: db}
}

// GetByID retrieves a route profile by ID
func (r *RouteProfileRepository) GetByID(profileID string) (*models.RouteProfile, error) {
	query := `
		SELECT id, school_id, name, default_start_time, default_vehicle_capacity,
			   created_at, updated_at
		FROM route_profiles
		WHERE id = $1
	`

	var profile models.RouteProfile
	err := r.db.QueryRow(query, profileID).Scan(
		&profile.ID, &profile.SchoolID, &profile.Name,
		&profile.DefaultStartTime, &profile.DefaultVehicleCapacity,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("route profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route profile: %w", err)
	}

	return &profile, nil
}

// GetBySchool retrieves all route profiles for a school
func (r *RouteProfileRepository) GetBySchool(schoolID string) ([]models.RouteProfile, error) {
	query := `
		SELECT id, school_id, name, default_start_time, default_vehicle_capacity,
			   created_at, updated_at
		FROM route_profiles
		WHERE school_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.RouteProfile{}
	for rows.Next() {
		var profile models.RouteProfile
		err := rows.Scan(
			&profile.ID, &profile.SchoolID, &profile.Name,
			&profile.DefaultStartTime, &profile.DefaultVehicleCapacity,
			&profile.CreatedAt, &profile.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}
