package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/schooltransit/transport-planner-backend/internal/models"
)

// resourceColumns maps a resource type to its transport_trips column.
// Acts as a whitelist: resource types never reach the SQL text unchecked.
var resourceColumns = map[models.ResourceType]string{
	models.ResourceTypeDriver:    "driver_id",
	models.ResourceTypeVehicle:   "vehicle_id",
	models.ResourceTypeAttendant: "attendant_id",
}

const tripColumns = `id, school_id, route_profile_id, name, code, trip_type,
		   scheduled_start_time, scheduled_end_time, estimated_duration_minutes,
		   driver_id, vehicle_id, attendant_id, assigned_students, status,
		   created_at, updated_at`

// TransportTripRepository handles database operations for the transport_trips table
type TransportTripRepository struct {
	db DB
}

// NewTransportTripRepository creates a new TransportTripRepository
func NewTransportTripRepository(db DB) *TransportTripRepository {
	return &TransportTripRepository{db: db}
}

// Create creates a new transport trip
func (r *TransportTripRepository) Create(trip *models.TransportTrip) error {
	return r.create(r.db, trip)
}

// CreateInTx creates a new transport trip inside an existing transaction
func (r *TransportTripRepository) CreateInTx(tx *sqlx.Tx, trip *models.TransportTrip) error {
	return r.create(tx, trip)
}

type rowQuerier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func (r *TransportTripRepository) create(q rowQuerier, trip *models.TransportTrip) error {
	query := `
		INSERT INTO transport_trips (
			id, school_id, route_profile_id, name, code, trip_type,
			scheduled_start_time, scheduled_end_time, estimated_duration_minutes,
			driver_id, vehicle_id, attendant_id, assigned_students, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING created_at, updated_at
	`

	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.Status == "" {
		trip.Status = models.TripStatusActive
	}

	err := q.QueryRow(
		query,
		trip.ID, trip.SchoolID, trip.RouteProfileID, trip.Name, trip.Code, trip.TripType,
		trip.ScheduledStartTime, trip.ScheduledEndTime, trip.EstimatedDurationMinutes,
		trip.DriverID, trip.VehicleID, trip.AttendantID, trip.AssignedStudents, trip.Status,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transport trip: %w", err)
	}

	return nil
}

// GetByID retrieves a transport trip by ID
func (r *TransportTripRepository) GetByID(tripID string) (*models.TransportTrip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM transport_trips
		WHERE id = $1
	`

	trip, err := r.scanTrip(r.db.QueryRow(query, tripID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transport trip not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transport trip: %w", err)
	}

	return trip, nil
}

// GetBySchool retrieves trips for a school, optionally filtered by route profile.
// Inactive trips are included so historical runs remain visible.
func (r *TransportTripRepository) GetBySchool(schoolID, routeProfileID string) ([]models.TransportTrip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM transport_trips
		WHERE school_id = $1
		ORDER BY scheduled_start_time, name
	`
	args := []interface{}{schoolID}

	if routeProfileID != "" {
		query = `
		SELECT ` + tripColumns + `
		FROM transport_trips
		WHERE school_id = $1 AND route_profile_id = $2
		ORDER BY scheduled_start_time, name
	`
		args = append(args, routeProfileID)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transport trips: %w", err)
	}
	defer rows.Close()

	return r.scanTrips(rows)
}

// GetActiveByResource retrieves the active trips for a school where the given
// resource is assigned, excluding excludeTripID when non-empty. This is the
// candidate set for the conflict check.
func (r *TransportTripRepository) GetActiveByResource(
	schoolID string,
	resourceType models.ResourceType,
	resourceID string,
	excludeTripID string,
) ([]models.TransportTrip, error) {
	column, ok := resourceColumns[resourceType]
	if !ok {
		return nil, fmt.Errorf("unknown resource type: %s", resourceType)
	}

	query := fmt.Sprintf(`
		SELECT `+tripColumns+`
		FROM transport_trips
		WHERE school_id = $1 AND status = 'active' AND %s = $2
		ORDER BY scheduled_start_time
	`, column)
	args := []interface{}{schoolID, resourceID}

	if excludeTripID != "" {
		query = fmt.Sprintf(`
		SELECT `+tripColumns+`
		FROM transport_trips
		WHERE school_id = $1 AND status = 'active' AND %s = $2 AND id != $3
		ORDER BY scheduled_start_time
	`, column)
		args = append(args, excludeTripID)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trips for resource: %w", err)
	}
	defer rows.Close()

	return r.scanTrips(rows)
}

// Update updates the mutable fields of a transport trip
func (r *TransportTripRepository) Update(trip *models.TransportTrip) error {
	query := `
		UPDATE transport_trips
		SET name = $2, scheduled_start_time = $3, scheduled_end_time = $4,
			estimated_duration_minutes = $5, driver_id = $6, vehicle_id = $7,
			attendant_id = $8, assigned_students = $9, status = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		trip.ID, trip.Name, trip.ScheduledStartTime, trip.ScheduledEndTime,
		trip.EstimatedDurationMinutes, trip.DriverID, trip.VehicleID,
		trip.AttendantID, trip.AssignedStudents, trip.Status,
	).Scan(&trip.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("transport trip not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update transport trip: %w", err)
	}

	return nil
}

// UpdateAssignedStudents sets the assigned student count for a trip
func (r *TransportTripRepository) UpdateAssignedStudents(tripID string, assigned int) error {
	query := `
		UPDATE transport_trips
		SET assigned_students = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, tripID, assigned)
	if err != nil {
		return fmt.Errorf("failed to update assigned students: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("transport trip not found")
	}

	return nil
}

// Deactivate retires a trip without deleting it, preserving historical analytics
func (r *TransportTripRepository) Deactivate(tripID string) error {
	query := `
		UPDATE transport_trips
		SET status = 'inactive', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.db.Exec(query, tripID)
	if err != nil {
		return fmt.Errorf("failed to deactivate transport trip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("transport trip not found or already inactive")
	}

	return nil
}

// scanTrip scans a single trip
func (r *TransportTripRepository) scanTrip(row scanner) (*models.TransportTrip, error) {
	trip := &models.TransportTrip{}
	var scheduledEndTime sql.NullString
	var driverID sql.NullString
	var vehicleID sql.NullString
	var attendantID sql.NullString

	err := row.Scan(
		&trip.ID, &trip.SchoolID, &trip.RouteProfileID, &trip.Name, &trip.Code, &trip.TripType,
		&trip.ScheduledStartTime, &scheduledEndTime, &trip.EstimatedDurationMinutes,
		&driverID, &vehicleID, &attendantID, &trip.AssignedStudents, &trip.Status,
		&trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if scheduledEndTime.Valid {
		trip.ScheduledEndTime = &scheduledEndTime.String
	}
	if driverID.Valid {
		trip.DriverID = &driverID.String
	}
	if vehicleID.Valid {
		trip.VehicleID = &vehicleID.String
	}
	if attendantID.Valid {
		trip.AttendantID = &attendantID.String
	}

	return trip, nil
}

// scanTrips scans multiple trips from rows
func (r *TransportTripRepository) scanTrips(rows *sql.Rows) ([]models.TransportTrip, error) {
	trips := []models.TransportTrip{}

	for rows.Next() {
		trip, err := r.scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}

	return trips, rows.Err()
}
