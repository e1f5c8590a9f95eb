package service

import (
	"context"
	"errors"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/captcha"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/mailer"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/sms"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	otpTTL            = 10 * time.Minute
	otpResendCooldown = time.Minute
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrExpiredOTP         = errors.New("verification code has expired")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrResendTooSoon      = errors.New("a verification code was sent moments ago")
	ErrNotVerified        = errors.New("account email is not verified")
	ErrAccountDisabled    = errors.New("account has been deactivated")
	ErrCaptchaRejected    = errors.New("captcha verification failed")
)

type AuthService interface {
	Signup(ctx context.Context, email, password, fullName, phone, address, captchaToken, remoteIP string) (*model.User, error)
	VerifyOTP(ctx context.Context, email, code string) (*model.User, *util.TokenPair, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, userID uint, token string, tokenTTL time.Duration) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Deactivate(ctx context.Context, userID uint) error
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, fullName, phone, address string) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	mailer        *mailer.Mailer
	smsSender     sms.Sender
	captcha       *captcha.Verifier
	blacklist     func(ctx context.Context, token string, ttl time.Duration) error
	throttle      func(ctx context.Context, email string, cooldown time.Duration) (bool, error)
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	m *mailer.Mailer,
	smsSender sms.Sender,
	captchaVerifier *captcha.Verifier,
	blacklist func(ctx context.Context, token string, ttl time.Duration) error,
	throttle func(ctx context.Context, email string, cooldown time.Duration) (bool, error),
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		mailer:        m,
		smsSender:     smsSender,
		captcha:       captchaVerifier,
		blacklist:     blacklist,
		throttle:      throttle,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Signup registers a new customer and emails a one-time verification code.
// The account stays unverified until the code is confirmed.
func (s *authService) Signup(ctx context.Context, email, password, fullName, phone, address, captchaToken, remoteIP string) (*model.User, error) {
	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
	})

	ok, err := s.captcha.Verify(ctx, captchaToken, remoteIP)
	if err != nil {
		logger.Error("Captcha verification error", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if !ok {
		return nil, ErrCaptchaRejected
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	code, err := util.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(otpTTL)

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     fullName,
		Phone:        phone,
		Address:      address,
		Role:         model.RoleUser,
		OTP:          code,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// Delivery failure does not fail signup; the code can be resent
	if err := s.mailer.SendOTP(user.Email, user.FullName, code, int(otpTTL.Minutes())); err != nil {
		logger.Error("Failed to send signup OTP email", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
	}

	logger.Info("User signed up, awaiting verification", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, nil
}

// VerifyOTP confirms the emailed code. Success clears the OTP fields,
// marks the account verified and issues a token pair.
func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if user.OTP == "" || user.OTP != code {
		logger.Warn("OTP verification failed: code mismatch", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidOTP
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		logger.Warn("OTP verification failed: code expired", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrExpiredOTP
	}

	user.OTP = ""
	user.OTPExpiresAt = nil
	user.Verified = true
	user.IsOnline = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtSecret, s.accessExpiry, s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User verified", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, tokens, nil
}

// ResendOTP overwrites the pending code and expiry, invalidating the old code
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	// nil throttle (no Redis) means no cooldown, development only
	if s.throttle != nil {
		allowed, err := s.throttle(ctx, email, otpResendCooldown)
		if err != nil {
			return err
		}
		if !allowed {
			logger.Warn("OTP resend throttled", map[string]interface{}{
				"email": email,
			})
			return ErrResendTooSoon
		}
	}

	code, err := util.GenerateOTP()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(otpTTL)

	user.OTP = code
	user.OTPExpiresAt = &expiresAt
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(user.Email, user.FullName, code, int(otpTTL.Minutes())); err != nil {
		logger.Error("Failed to send OTP email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("OTP resent", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, nil, ErrNotVerified
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	if err := s.userRepo.SetOnline(user.ID, true); err != nil {
		logger.Error("Failed to set user online", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
	user.IsOnline = true

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtSecret, s.accessExpiry, s.refreshExpiry,
	)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, tokens, nil
}

// Logout revokes the presented token and flips the online flag
func (s *authService) Logout(ctx context.Context, userID uint, token string, tokenTTL time.Duration) error {
	if s.blacklist != nil && token != "" {
		if err := s.blacklist(ctx, token, tokenTTL); err != nil {
			logger.Error("Failed to revoke token on logout", err, map[string]interface{}{
				"user_id": userID,
			})
		}
	}
	return s.userRepo.SetOnline(userID, false)
}

// ForgotPassword issues a reset code to a registered email. An unknown
// email gets the same outward behavior so addresses cannot be enumerated.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return err
	}

	code, err := util.GenerateOTP()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(otpTTL)

	user.OTP = code
	user.OTPExpiresAt = &expiresAt
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(user.Email, user.FullName, code, int(otpTTL.Minutes())); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if user.Phone != "" && s.smsSender != nil {
		if err := s.smsSender.Send(ctx, user.Phone, "Your Divine Grace password reset code is "+code); err != nil {
			logger.Warn("Failed to send password reset SMS", map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}

	return nil
}

// ResetPassword sets a new password when the reset code checks out
func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.OTP == "" || user.OTP != code {
		return ErrInvalidOTP
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return ErrExpiredOTP
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.OTP = ""
	user.OTPExpiresAt = nil
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) Deactivate(ctx context.Context, userID uint) error {
	logger.Info("Deactivating account", map[string]interface{}{
		"user_id": userID,
	})
	return s.userRepo.Deactivate(userID)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, fullName, phone, address string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if fullName != "" {
		user.FullName = fullName
	}
	if phone != "" {
		user.Phone = phone
	}
	if address != "" {
		user.Address = address
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
