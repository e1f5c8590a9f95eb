package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type NotificationController struct {
	notificationService service.NotificationService
}

func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List returns the authenticated user's notifications. Rows are
// matched on the email captured at dispatch time, so history survives
// a later email change on the account.
// GET /api/v1/notifications
func (ctrl *NotificationController) List(c *gin.Context) {
	email, _ := middleware.GetUserEmail(c)

	notifications, err := ctrl.notificationService.GetByEmail(email)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// ListAll returns every notification (admin)
// GET /api/v1/admin/notifications
func (ctrl *NotificationController) ListAll(c *gin.Context) {
	notifications, err := ctrl.notificationService.GetAll()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list all notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkRead flags a notification as read
// PUT /api/v1/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid notification ID")
		return
	}

	if err := ctrl.notificationService.MarkRead(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			apperrors.NotFound(c, apperrors.NotificationNotFound, "Notification not found")
			return
		}
		log.Error("Failed to mark notification read", err, map[string]interface{}{
			"notification_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mark notification read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

// MarkAllRead flags every one of the caller's notifications as read
// PUT /api/v1/notifications/read-all
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	email, _ := middleware.GetUserEmail(c)

	if err := ctrl.notificationService.MarkAllRead(email); err != nil {
		log.Error("Failed to mark notifications read", err, map[string]interface{}{
			"email": email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mark all notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
	})
}
