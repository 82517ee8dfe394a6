package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPlannerTest creates a TripPlannerService backed by a mock database.
// No geo gateway is wired, so suggestions carry no distance estimates.
func setupPlannerTest(t *testing.T) (*TripPlannerService, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	db := &database.PostgresDB{DB: sqlxDB}

	service := NewTripPlannerService(
		db,
		database.NewTransportTripRepository(db),
		database.NewTripStopRepository(db),
		database.NewStudentRosterRepository(db),
		database.NewRouteProfileRepository(db),
		database.NewSystemSettingRepository(db),
		nil,
		40,
		5,
		nil,
	)
	return service, mock, func() { sqlxDB.Close() }
}

func profileRows(capacity int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "school_id", "name", "default_start_time", "default_vehicle_capacity",
		"created_at", "updated_at",
	}).AddRow("profile-1", "school-1", "North Route", "07:00", capacity, now, now)
}

func rosterRows(addresses ...string) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "school_id", "route_profile_id", "student_name", "pickup_address", "created_at",
	})
	for i, address := range addresses {
		rows.AddRow(fmt.Sprintf("student-%d", i+1), "school-1", "profile-1",
			fmt.Sprintf("Student %d", i+1), address, now)
	}
	return rows
}

func TestAutoGenerateTrips_GroupsByAddress(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM route_profiles").
		WithArgs("profile-1").
		WillReturnRows(profileRows(40))
	mock.ExpectQuery("SELECT (.+) FROM transport_students").
		WithArgs("school-1", "profile-1").
		WillReturnRows(rosterRows("12 Lake Rd", "12 Lake Rd", "7 Hill St", "12 Lake Rd", "7 Hill St"))

	result, err := service.AutoGenerateTrips(&models.AutoGenerateRequest{
		RouteProfileID:  "profile-1",
		SchoolID:        "school-1",
		VehicleCapacity: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalStudents)
	assert.Equal(t, 3, result.VehicleCapacity)
	assert.Equal(t, 2, result.TripsNeeded)
	require.Len(t, result.Suggestions, 2)

	// Same-address students stay together: the three Lake Rd students fill
	// the first trip, the two Hill St students go to the second.
	first := result.Suggestions[0]
	assert.Equal(t, 1, first.TripNumber)
	assert.Equal(t, "Trip 1", first.Name)
	assert.Equal(t, 3, first.StudentCount)
	assert.Equal(t, []string{"12 Lake Rd"}, first.Addresses)
	assert.Equal(t, 1, first.StopCount)
	require.Len(t, first.AddressGroups, 1)
	assert.Equal(t, 3, first.AddressGroups[0].StudentCount)

	second := result.Suggestions[1]
	assert.Equal(t, 2, second.StudentCount)
	assert.Equal(t, []string{"7 Hill St"}, second.Addresses)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoGenerateTrips_EmptyRoster(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM route_profiles").
		WithArgs("profile-1").
		WillReturnRows(profileRows(40))
	mock.ExpectQuery("SELECT (.+) FROM transport_students").
		WithArgs("school-1", "profile-1").
		WillReturnRows(rosterRows())

	result, err := service.AutoGenerateTrips(&models.AutoGenerateRequest{
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalStudents)
	assert.Equal(t, 0, result.TripsNeeded)
	assert.Empty(t, result.Suggestions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoGenerateTrips_CapacityFromProfile(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM route_profiles").
		WithArgs("profile-1").
		WillReturnRows(profileRows(2))
	mock.ExpectQuery("SELECT (.+) FROM transport_students").
		WithArgs("school-1", "profile-1").
		WillReturnRows(rosterRows("A", "B", "C"))

	// No capacity in the request: the profile default of 2 applies
	result, err := service.AutoGenerateTrips(&models.AutoGenerateRequest{
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.VehicleCapacity)
	assert.Equal(t, 2, result.TripsNeeded)
	assert.Len(t, result.Suggestions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoGenerateTrips_ZeroCapacityEverywhereFallsBack(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	now := time.Now()

	// No capacity in the request, profile default is 0 and the stored
	// setting is "0": the configured default of 40 applies instead
	mock.ExpectQuery("SELECT (.+) FROM route_profiles").
		WithArgs("profile-1").
		WillReturnRows(profileRows(0))
	mock.ExpectQuery("SELECT (.+) FROM system_settings").
		WithArgs(database.SettingDefaultVehicleCapacity).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "setting_key", "setting_value", "description", "created_at", "updated_at",
		}).AddRow("setting-1", database.SettingDefaultVehicleCapacity, "0", nil, now, now))
	mock.ExpectQuery("SELECT (.+) FROM transport_students").
		WithArgs("school-1", "profile-1").
		WillReturnRows(rosterRows("12 Lake Rd", "7 Hill St"))

	result, err := service.AutoGenerateTrips(&models.AutoGenerateRequest{
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 40, result.VehicleCapacity)
	assert.Equal(t, 1, result.TripsNeeded)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, 2, result.Suggestions[0].StudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoGenerateTrips_Validation(t *testing.T) {
	service, _, cleanup := setupPlannerTest(t)
	defer cleanup()

	_, err := service.AutoGenerateTrips(&models.AutoGenerateRequest{SchoolID: "school-1"})
	assert.Error(t, err)

	_, err = service.AutoGenerateTrips(&models.AutoGenerateRequest{
		RouteProfileID:  "profile-1",
		SchoolID:        "school-1",
		VehicleCapacity: -1,
	})
	assert.Error(t, err)
}

func TestPackByAddress_FillsTripsToCapacity(t *testing.T) {
	students := make([]models.RosterStudent, 0, 85)
	for i := 0; i < 85; i++ {
		students = append(students, models.RosterStudent{
			ID:            fmt.Sprintf("student-%d", i+1),
			PickupAddress: fmt.Sprintf("address-%d", i%7),
		})
	}

	chunks := packByAddress(students, 40)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 40)
	assert.Len(t, chunks[1], 40)
	assert.Len(t, chunks[2], 5)

	// Every student lands in exactly one chunk
	seen := map[string]bool{}
	for _, chunk := range chunks {
		for _, student := range chunk {
			assert.False(t, seen[student.ID], "student %s packed twice", student.ID)
			seen[student.ID] = true
		}
	}
	assert.Len(t, seen, 85)
}

func TestCreateTripsFromSuggestions_SingleTransaction(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	now := time.Now()

	// Stop interval setting is absent, so the configured default of 5 applies
	mock.ExpectQuery("SELECT (.+) FROM system_settings").
		WithArgs(database.SettingStopIntervalMinutes).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transport_trips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO trip_stops").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Stop 1", "12 Lake Rd", 1, "07:00", 5, 3, 0, models.AssignmentStatusRed).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO trip_stops").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Stop 2", "7 Hill St", 2, "07:05", 5, 2, 0, models.AssignmentStatusRed).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	trips, err := service.CreateTripsFromSuggestions(&models.CreateFromSuggestionsRequest{
		Suggestions: []models.TripSuggestion{
			{
				TripNumber:   1,
				Name:         "Trip 1",
				StudentCount: 5,
				Addresses:    []string{"12 Lake Rd", "7 Hill St"},
				AddressGroups: []models.AddressGroup{
					{Address: "12 Lake Rd", StudentCount: 3},
					{Address: "7 Hill St", StudentCount: 2},
				},
			},
		},
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
		TripType:       models.TripTypePickup,
		StartTime:      "07:00",
	})
	require.NoError(t, err)

	require.Len(t, trips, 1)
	assert.Equal(t, "Trip 1", trips[0].Name)
	assert.Equal(t, models.TripTypePickup, trips[0].TripType)
	assert.Equal(t, "07:00", trips[0].ScheduledStartTime)
	assert.Equal(t, 0, trips[0].AssignedStudents)
	assert.Equal(t, models.TripStatusActive, trips[0].Status)
	assert.NotEmpty(t, trips[0].ID)
	assert.NotEmpty(t, trips[0].Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTripsFromSuggestions_MidnightRollover(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM system_settings").
		WithArgs(database.SettingStopIntervalMinutes).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transport_trips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO trip_stops").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Stop 1", "A", 1, "23:55", 5, 1, 0, models.AssignmentStatusRed).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO trip_stops").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Stop 2", "B", 2, "00:00", 5, 1, 0, models.AssignmentStatusRed).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO trip_stops").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Stop 3", "C", 3, "00:05", 5, 1, 0, models.AssignmentStatusRed).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	_, err := service.CreateTripsFromSuggestions(&models.CreateFromSuggestionsRequest{
		Suggestions: []models.TripSuggestion{
			{
				TripNumber:   1,
				Name:         "Late Run",
				StudentCount: 3,
				Addresses:    []string{"A", "B", "C"},
				AddressGroups: []models.AddressGroup{
					{Address: "A", StudentCount: 1},
					{Address: "B", StudentCount: 1},
					{Address: "C", StudentCount: 1},
				},
			},
		},
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
		TripType:       models.TripTypeDropoff,
		StartTime:      "23:55",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTripsFromSuggestions_RollsBackOnFailure(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM system_settings").
		WithArgs(database.SettingStopIntervalMinutes).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transport_trips").
		WillReturnError(fmt.Errorf("unique constraint violation"))
	mock.ExpectRollback()

	trips, err := service.CreateTripsFromSuggestions(&models.CreateFromSuggestionsRequest{
		Suggestions: []models.TripSuggestion{
			{TripNumber: 1, Name: "Trip 1", Addresses: []string{"A"}},
		},
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
		TripType:       models.TripTypePickup,
		StartTime:      "07:00",
	})
	require.Error(t, err)
	assert.Nil(t, trips)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTripsFromSuggestions_EmptyListIsNoOp(t *testing.T) {
	service, mock, cleanup := setupPlannerTest(t)
	defer cleanup()

	trips, err := service.CreateTripsFromSuggestions(&models.CreateFromSuggestionsRequest{
		Suggestions:    []models.TripSuggestion{},
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
		TripType:       models.TripTypePickup,
		StartTime:      "07:00",
	})
	require.NoError(t, err)

	assert.Empty(t, trips)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTripsFromSuggestions_Validation(t *testing.T) {
	service, _, cleanup := setupPlannerTest(t)
	defer cleanup()

	_, err := service.CreateTripsFromSuggestions(&models.CreateFromSuggestionsRequest{
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
		TripType:       "express",
		StartTime:      "07:00",
	})
	assert.Error(t, err)

	_, err = service.CreateTripsFromSuggestions(&models.CreateFromSuggestionsRequest{
		RouteProfileID: "profile-1",
		SchoolID:       "school-1",
		TripType:       models.TripTypePickup,
		StartTime:      "7am",
	})
	assert.Error(t, err)
}

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		start   string
		minutes int
		want    string
	}{
		{"07:00", 0, "07:00"},
		{"07:00", 5, "07:05"},
		{"07:58", 5, "08:03"},
		{"23:55", 5, "00:00"},
		{"23:55", 10, "00:05"},
		{"00:00", 1440, "00:00"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s+%d", tt.start, tt.minutes), func(t *testing.T) {
			assert.Equal(t, tt.want, addMinutes(tt.start, tt.minutes))
		})
	}
}

func TestStudentsAtAddress_FallsBackToEvenSplit(t *testing.T) {
	suggestion := &models.TripSuggestion{
		StudentCount: 10,
		Addresses:    []string{"A", "B", "C"},
	}

	// No address groups: a legacy suggestion splits evenly, rounding up
	assert.Equal(t, 4, studentsAtAddress(suggestion, "A", 3))

	suggestion.AddressGroups = []models.AddressGroup{
		{Address: "A", StudentCount: 7},
		{Address: "B", StudentCount: 2},
	}
	assert.Equal(t, 7, studentsAtAddress(suggestion, "A", 3))
	assert.Equal(t, 2, studentsAtAddress(suggestion, "B", 3))
}

func TestDedupeAddresses(t *testing.T) {
	got := dedupeAddresses([]string{"A", "B", "A", "", "C", "B"})
	assert.Equal(t, []string{"A", "B", "C"}, got)
}
