package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/schooltransit/transport-planner-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTripHandlerTest creates a TripHandler backed by a mock database
func setupTripHandlerTest(t *testing.T) (*TripHandler, sqlmock.Sqlmock, func()) {
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	db := &database.PostgresDB{DB: sqlxDB}

	tripRepo := database.NewTransportTripRepository(db)
	stopRepo := database.NewTripStopRepository(db)
	conflictService := services.NewConflictService(tripRepo, false, nil)

	handler := NewTripHandler(tripRepo, stopRepo, conflictService)
	return handler, mock, func() { sqlxDB.Close() }
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler(c)
	return w
}

func TestCheckConflicts_NoConflict(t *testing.T) {
	handler, mock, cleanup := setupTripHandlerTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM transport_trips").
		WithArgs("school-1", "driver-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := postJSON(t, handler.CheckConflicts, models.ConflictCheckRequest{
		SchoolID:           "school-1",
		ResourceType:       models.ResourceTypeDriver,
		ResourceID:         "driver-1",
		ScheduledStartTime: "07:00",
		ScheduledEndTime:   "08:00",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.ConflictCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.HasConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConflicts_MissingFields(t *testing.T) {
	handler, _, cleanup := setupTripHandlerTest(t)
	defer cleanup()

	w := postJSON(t, handler.CheckConflicts, map[string]string{
		"school_id": "school-1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTrip_ConflictRejected(t *testing.T) {
	handler, mock, cleanup := setupTripHandlerTest(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "school_id", "route_profile_id", "name", "code", "trip_type",
		"scheduled_start_time", "scheduled_end_time", "estimated_duration_minutes",
		"driver_id", "vehicle_id", "attendant_id", "assigned_students", "status",
		"created_at", "updated_at",
	}).AddRow(
		"trip-1", "school-1", "profile-1", "Morning Run A", "TRP-0001", "pickup",
		"07:00", "08:00", 60,
		"driver-1", nil, nil, 0, "active",
		now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM transport_trips").
		WithArgs("school-1", "driver-1").
		WillReturnRows(rows)

	driverID := "driver-1"
	w := postJSON(t, handler.CreateTrip, models.CreateTripRequest{
		SchoolID:           "school-1",
		RouteProfileID:     "profile-1",
		Name:               "Morning Run B",
		TripType:           models.TripTypePickup,
		ScheduledStartTime: "07:30",
		DriverID:           &driverID,
	})

	// The driver already runs Morning Run A in that window; nothing is inserted
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Morning Run A")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTrip_Success(t *testing.T) {
	handler, mock, cleanup := setupTripHandlerTest(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM transport_trips").
		WithArgs("school-1", "driver-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO transport_trips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	driverID := "driver-1"
	w := postJSON(t, handler.CreateTrip, models.CreateTripRequest{
		SchoolID:           "school-1",
		RouteProfileID:     "profile-1",
		Name:               "Morning Run B",
		TripType:           models.TripTypePickup,
		ScheduledStartTime: "07:30",
		DriverID:           &driverID,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTrip_InvalidTripType(t *testing.T) {
	handler, _, cleanup := setupTripHandlerTest(t)
	defer cleanup()

	w := postJSON(t, handler.CreateTrip, models.CreateTripRequest{
		SchoolID:           "school-1",
		RouteProfileID:     "profile-1",
		Name:               "Morning Run B",
		TripType:           "express",
		ScheduledStartTime: "07:30",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
