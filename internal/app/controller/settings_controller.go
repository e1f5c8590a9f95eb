package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type SettingsController struct {
	settingsService service.SettingsService
}

func NewSettingsController(settingsService service.SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

type UpdateSettingsRequest struct {
	EmailNotifications *bool `json:"email_notifications"`
	SMSNotifications   *bool `json:"sms_notifications"`
	DarkMode           *bool `json:"dark_mode"`
}

// Get returns the user's preferences, falling back to defaults
// GET /api/v1/settings
func (ctrl *SettingsController) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	settings, err := ctrl.settingsService.Get(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Update merges the provided preference toggles
// PUT /api/v1/settings
func (ctrl *SettingsController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid settings payload")
		return
	}

	settings, err := ctrl.settingsService.Update(userID, service.SettingsUpdate{
		EmailNotifications: req.EmailNotifications,
		SMSNotifications:   req.SMSNotifications,
		DarkMode:           req.DarkMode,
	})
	if err != nil {
		log.Error("Settings update failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated",
		"settings": settings,
	})
}
