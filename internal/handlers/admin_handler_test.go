package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAdminHandlerTest creates an AdminHandler backed by a mock database
func setupAdminHandlerTest(t *testing.T) (*AdminHandler, sqlmock.Sqlmock, func()) {
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	db := &database.PostgresDB{DB: sqlxDB}

	stopRepo := database.NewTripStopRepository(db)
	maintenanceService := services.NewMaintenanceService(stopRepo)

	handler := NewAdminHandler(maintenanceService)
	return handler, mock, func() { sqlxDB.Close() }
}

func TestRefreshStopStatuses(t *testing.T) {
	handler, mock, cleanup := setupAdminHandlerTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE trip_stops").
		WillReturnResult(sqlmock.NewResult(0, 17))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	handler.RefreshStopStatuses(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stops_updated":17`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshStopStatuses_DatabaseError(t *testing.T) {
	handler, mock, cleanup := setupAdminHandlerTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE trip_stops").
		WillReturnError(fmt.Errorf("connection refused"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	handler.RefreshStopStatuses(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
