package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/schooltransit/transport-planner-backend/internal/models"
)

const stopColumns = `id, trip_id, name, address, stop_order, scheduled_arrival_time,
		   wait_duration_minutes, total_students_at_stop, assigned_students,
		   assignment_status, created_at, updated_at`

// TripStopRepository handles database operations for the trip_stops table
type TripStopRepository struct {
	db DB
}

// NewTripStopRepository creates a new TripStopRepository
func NewTripStopRepository(db DB) *TripStopRepository {
	return &TripStopRepository{db: db}
}

// Create creates a new trip stop
func (r *TripStopRepository) Create(stop *models.TripStop) error {
	return r.create(r.db, stop)
}

// CreateInTx creates a new trip stop inside an existing transaction
func (r *TripStopRepository) CreateInTx(tx *sqlx.Tx, stop *models.TripStop) error {
	return r.create(tx, stop)
}

func (r *TripStopRepository) create(q rowQuerier, stop *models.TripStop) error {
	query := `
		INSERT INTO trip_stops (
			id, trip_id, name, address, stop_order, scheduled_arrival_time,
			wait_duration_minutes, total_students_at_stop, assigned_students,
			assignment_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at, updated_at
	`

	if stop.ID == "" {
		stop.ID = uuid.New().String()
	}
	if stop.AssignmentStatus == "" {
		stop.AssignmentStatus = models.DeriveAssignmentStatus(stop.AssignedStudents, stop.TotalStudentsAtStop)
	}

	err := q.QueryRow(
		query,
		stop.ID, stop.TripID, stop.Name, stop.Address, stop.StopOrder, stop.ScheduledArrivalTime,
		stop.WaitDurationMinutes, stop.TotalStudentsAtStop, stop.AssignedStudents,
		stop.AssignmentStatus,
	).Scan(&stop.CreatedAt, &stop.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create trip stop: %w", err)
	}

	return nil
}

// GetByID retrieves a trip stop by ID
func (r *TripStopRepository) GetByID(stopID string) (*models.TripStop, error) {
	query := `
		SELECT ` + stopColumns + `
		FROM trip_stops
		WHERE id = $1
	`

	stop, err := r.scanStop(r.db.QueryRow(query, stopID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip stop not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip stop: %w", err)
	}

	return stop, nil
}

// GetByTripID retrieves the stops for a trip in stop order
func (r *TripStopRepository) GetByTripID(tripID string) ([]models.TripStop, error) {
	query := `
		SELECT ` + stopColumns + `
		FROM trip_stops
		WHERE trip_id = $1
		ORDER BY stop_order
	`

	rows, err := r.db.Query(query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip stops: %w", err)
	}
	defer rows.Close()

	stops := []models.TripStop{}
	for rows.Next() {
		stop, err := r.scanStop(rows)
		if err != nil {
			return nil, err
		}
		stops = append(stops, *stop)
	}

	return stops, rows.Err()
}

// UpdateAssignment sets the assigned student count and re-derives the
// traffic-light status from the stored expected total.
func (r *TripStopRepository) UpdateAssignment(stopID string, assigned int, status models.AssignmentStatus) error {
	query := `
		UPDATE trip_stops
		SET assigned_students = $2, assignment_status = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, stopID, assigned, status)
	if err != nil {
		return fmt.Errorf("failed to update stop assignment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("trip stop not found")
	}

	return nil
}

// RefreshAssignmentStatuses recomputes assignment_status for every stop from
// its stored counts. Run by the nightly maintenance job so rows touched by
// other services converge back to the derived rule.
func (r *TripStopRepository) RefreshAssignmentStatuses() (int64, error) {
	query := `
		UPDATE trip_stops
		SET assignment_status = CASE
				WHEN assigned_students = 0 THEN 'red'
				WHEN assigned_students >= total_students_at_stop THEN 'green'
				ELSE 'yellow'
			END,
			updated_at = NOW()
		WHERE assignment_status != CASE
				WHEN assigned_students = 0 THEN 'red'
				WHEN assigned_students >= total_students_at_stop THEN 'green'
				ELSE 'yellow'
			END
	`

	result, err := r.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh assignment statuses: %w", err)
	}

	return result.RowsAffected()
}

// DeleteByTripID removes all stops for a trip (used when regenerating a trip's stops)
func (r *TripStopRepository) DeleteByTripID(tripID string) (int64, error) {
	query := `DELETE FROM trip_stops WHERE trip_id = $1`

	result, err := r.db.Exec(query, tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trip stops: %w", err)
	}

	return result.RowsAffected()
}

// scanStop scans a single stop
func (r *TripStopRepository) scanStop(row scanner) (*models.TripStop, error) {
	stop := &models.TripStop{}

	err := row.Scan(
		&stop.ID, &stop.TripID, &stop.Name, &stop.Address, &stop.StopOrder, &stop.ScheduledArrivalTime,
		&stop.WaitDurationMinutes, &stop.TotalStudentsAtStop, &stop.AssignedStudents,
		&stop.AssignmentStatus, &stop.CreatedAt, &stop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return stop, nil
}
