package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles back-office admin login
// POST /api/v1/admin/auth/login
func (ctrl *AdminController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login details")
		return
	}

	admin, tokens, err := ctrl.adminService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Admin login failed: invalid credentials", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Unauthorized(c, "Email or password is incorrect")
			return
		}
		if errors.Is(err, service.ErrAccountDisabled) {
			apperrors.Forbidden(c, "This admin account has been disabled")
			return
		}
		log.Error("Admin login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "admin login")
		return
	}

	log.Info("Admin logged in", map[string]interface{}{
		"admin_id": admin.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"admin": gin.H{
			"id":        admin.ID,
			"email":     admin.Email,
			"full_name": admin.FullName,
		},
		"tokens": tokens,
	})
}

// Me returns the authenticated admin's profile
// GET /api/v1/admin/auth/me
func (ctrl *AdminController) Me(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	admin, err := ctrl.adminService.GetAdminByID(adminID)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Admin account not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get admin profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin": gin.H{
			"id":            admin.ID,
			"email":         admin.Email,
			"full_name":     admin.FullName,
			"last_login_at": admin.LastLoginAt,
		},
	})
}
