package database

import (
	"fmt"

	"github.com/schooltransit/transport-planner-backend/internal/models"
)

// StudentRosterRepository reads the transport_students roster table.
// Rows are owned by the admissions module; this repository never writes them.
type StudentRosterRepository struct {
	db DB
}

// NewStudentRosterRepository creates a new StudentRosterRepository
func NewStudentRosterRepository(db DB) *StudentRosterRepository {
	return &StudentRosterRepository{db: db}
}

// GetByRouteProfile retrieves the roster for a route profile in enrollment order.
// The order is stable so repeated generation runs produce the same bucketing.
func (r *StudentRosterRepository) GetByRouteProfile(schoolID, routeProfileID string) ([]models.RosterStudent, error) {
	query := `
		SELECT id, school_id, route_profile_id, student_name, pickup_address, created_at
		FROM transport_students
		WHERE school_id = $1 AND route_profile_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(query, schoolID, routeProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student roster: %w", err)
	}
	defer rows.Close()

	students := []models.RosterStudent{}
	for rows.Next() {
		var student models.RosterStudent
		err := rows.Scan(
			&student.ID, &student.SchoolID, &student.RouteProfileID,
			&student.StudentName, &student.PickupAddress, &student.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

// CountByRouteProfile returns the roster size for a route profile
func (r *StudentRosterRepository) CountByRouteProfile(schoolID, routeProfileID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transport_students
		WHERE school_id = $1 AND route_profile_id = $2
	`

	var count int64
	err := r.db.QueryRow(query, schoolID, routeProfileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count student roster: %w", err)
	}

	return count, nil
}
