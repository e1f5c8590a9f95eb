package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type AuthController struct {
	authService  service.AuthService
	accessExpiry time.Duration
}

func NewAuthController(authService service.AuthService, accessExpiry time.Duration) *AuthController {
	return &AuthController{
		authService:  authService,
		accessExpiry: accessExpiry,
	}
}

type SignupRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	CaptchaToken string `json:"captcha_token"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"phone":     user.Phone,
		"address":   user.Address,
		"role":      user.Role,
		"verified":  user.Verified,
		"is_online": user.IsOnline,
	}
}

// Signup handles customer registration
// POST /api/v1/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid signup details")
		return
	}

	log.Debug("Processing signup", map[string]interface{}{
		"email": req.Email,
	})

	user, err := ctrl.authService.Signup(c.Request.Context(), req.Email, req.Password, req.FullName, req.Phone, req.Address, req.CaptchaToken, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			log.Warn("Signup failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
		case errors.Is(err, service.ErrCaptchaRejected):
			apperrors.BadRequest(c, apperrors.AuthCaptchaFailed, "Captcha verification failed")
		default:
			log.Error("Signup failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "signup")
		}
		return
	}

	log.Info("User signed up", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. Check your email for the verification code.",
		"user":    userResponse(user),
	})
}

// VerifyOTP confirms the emailed verification code and signs the user in
// POST /api/v1/auth/verify-otp
func (ctrl *AuthController) VerifyOTP(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid verification details")
		return
	}

	user, tokens, err := ctrl.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
		case errors.Is(err, service.ErrInvalidOTP):
			apperrors.BadRequest(c, apperrors.AuthOTPInvalid, "Verification code is incorrect")
		case errors.Is(err, service.ErrExpiredOTP):
			apperrors.BadRequest(c, apperrors.AuthOTPExpired, "Verification code has expired. Request a new one.")
		case errors.Is(err, service.ErrAlreadyVerified):
			apperrors.Conflict(c, apperrors.AuthAlreadyVerified, "Account is already verified")
		default:
			log.Error("OTP verification failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "verify otp")
		}
		return
	}

	log.Info("Account verified", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Account verified successfully",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// ResendOTP issues a fresh verification code
// POST /api/v1/auth/resend-otp
func (ctrl *AuthController) ResendOTP(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request")
		return
	}

	if err := ctrl.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			apperrors.Conflict(c, apperrors.AuthAlreadyVerified, "Account is already verified")
		case errors.Is(err, service.ErrResendTooSoon):
			apperrors.TooManyRequests(c, apperrors.AuthResendTooSoon, "A code was sent recently. Wait a minute before requesting another")
		default:
			log.Error("Failed to resend verification code", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "resend otp")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "A new verification code has been sent",
	})
}

// Login handles customer login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login details")
		return
	}

	log.Debug("Processing login", map[string]interface{}{
		"email": req.Email,
	})

	user, tokens, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Unauthorized(c, "Email or password is incorrect")
		case errors.Is(err, service.ErrNotVerified):
			apperrors.Forbidden(c, "Verify your email before logging in")
		case errors.Is(err, service.ErrAccountDisabled):
			apperrors.Forbidden(c, "This account has been deactivated")
		default:
			log.Error("Login failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		}
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// Logout revokes the current token and marks the user offline
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)
	token, _ := middleware.GetAuthToken(c)

	if err := ctrl.authService.Logout(c.Request.Context(), userID, token, ctrl.accessExpiry); err != nil {
		log.Error("Logout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// ForgotPassword emails a reset code; unknown emails are not revealed
// POST /api/v1/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request")
		return
	}

	if err := ctrl.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		log.Error("Forgot password failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "forgot password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If the account exists, a reset code has been sent",
	})
}

// ResetPassword sets a new password after code verification
// POST /api/v1/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid reset details")
		return
	}

	if err := ctrl.authService.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
		case errors.Is(err, service.ErrInvalidOTP):
			apperrors.BadRequest(c, apperrors.AuthOTPInvalid, "Reset code is incorrect")
		case errors.Is(err, service.ErrExpiredOTP):
			apperrors.BadRequest(c, apperrors.AuthOTPExpired, "Reset code has expired. Request a new one.")
		default:
			log.Error("Password reset failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "reset password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset. You can now log in.",
	})
}

// Me returns the authenticated user's profile
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}

// UpdateProfile updates name, phone and address
// PUT /api/v1/auth/profile
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile details")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, req.FullName, req.Phone, req.Address)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
			return
		}
		log.Error("Profile update failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    userResponse(user),
	})
}

// Deactivate disables and soft deletes the account
// DELETE /api/v1/auth/me
func (ctrl *AuthController) Deactivate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	if err := ctrl.authService.Deactivate(c.Request.Context(), userID); err != nil {
		log.Error("Account deactivation failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "deactivate account")
		return
	}

	log.Info("Account deactivated", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Account deactivated",
	})
}
