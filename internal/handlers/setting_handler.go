package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
)

// SettingHandler handles system setting HTTP requests
type SettingHandler struct {
	settingRepo *database.SystemSettingRepository
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settingRepo *database.SystemSettingRepository) *SettingHandler {
	return &SettingHandler{settingRepo: settingRepo}
}

// ListSettings returns all system settings
// GET /api/v1/settings
func (h *SettingHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "fetch_settings_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSetting updates a system setting's value
// PUT /api/v1/settings/:key
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req models.UpdateSystemSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	if err := h.settingRepo.Update(key, req.SettingValue); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "update_setting_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Setting updated successfully",
	})
}
