package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/internal/services"
)

// AdminHandler exposes manual triggers for background maintenance jobs
type AdminHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(maintenanceService *services.MaintenanceService) *AdminHandler {
	return &AdminHandler{maintenanceService: maintenanceService}
}

// RefreshStopStatuses runs the nightly stop status refresh on demand
// POST /api/v1/admin/refresh-stop-statuses
func (h *AdminHandler) RefreshStopStatuses(c *gin.Context) {
	updated, err := h.maintenanceService.RunRefreshNow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "refresh_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Stop assignment statuses refreshed",
		"stops_updated": updated,
	})
}
