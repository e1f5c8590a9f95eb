package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/captcha"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/mailer"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/sms"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/util"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		mailer.New(config.SMTPConfig{}),
		sms.NewTermiiService(config.SMSConfig{}),
		captcha.NewVerifier(""),
		nil,
		nil,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	return authService, testDB
}

func signupTestUser(t *testing.T, authService AuthService) *model.User {
	t.Helper()
	user, err := authService.Signup(context.Background(), "grace@example.com", "password123", "Grace Adeyemi", "08030000000", "5 Unity Road, Ilorin", "", "127.0.0.1")
	require.NoError(t, err)
	return user
}

func TestAuthService_Signup(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user := signupTestUser(t, authService)
	assert.NotZero(t, user.ID)
	assert.False(t, user.Verified)
	assert.Len(t, user.OTP, 6)
	require.NotNil(t, user.OTPExpiresAt)
	assert.True(t, user.OTPExpiresAt.After(time.Now()))

	// password is stored hashed
	var stored model.User
	testDB.First(&stored, user.ID)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "password123"))
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	signupTestUser(t, authService)

	_, err := authService.Signup(context.Background(), "grace@example.com", "password456", "Other Person", "", "", "", "127.0.0.1")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_VerifyOTP(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	// wrong code
	_, _, err := authService.VerifyOTP(context.Background(), user.Email, "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// right code
	verified, tokens, err := authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Empty(t, verified.OTP)
	assert.Nil(t, verified.OTPExpiresAt)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)

	claims, err := util.ValidateToken(tokens.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// cleared code cannot be replayed
	_, _, err = authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	var stored model.User
	testDB.First(&stored, user.ID)
	assert.True(t, stored.Verified)
	assert.Empty(t, stored.OTP)
}

func TestAuthService_VerifyOTP_Expired(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	expired := time.Now().Add(-time.Minute)
	testDB.Model(user).Update("otp_expires_at", expired)

	_, _, err := authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	assert.ErrorIs(t, err, ErrExpiredOTP)
}

func TestAuthService_ResendOTP_InvalidatesOldCode(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)
	oldCode := user.OTP

	require.NoError(t, authService.ResendOTP(context.Background(), user.Email))

	var stored model.User
	testDB.First(&stored, user.ID)
	assert.Len(t, stored.OTP, 6)

	if stored.OTP == oldCode {
		t.Skip("regenerated code collided with the old one")
	}
	_, _, err := authService.VerifyOTP(context.Background(), user.Email, oldCode)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, _, err = authService.VerifyOTP(context.Background(), user.Email, stored.OTP)
	assert.NoError(t, err)
}

func TestAuthService_ResendOTP_AlreadyVerified(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	_, _, err := authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	require.NoError(t, err)

	err = authService.ResendOTP(context.Background(), user.Email)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestAuthService_ResendOTP_Throttled(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	calls := 0
	throttle := func(ctx context.Context, email string, cooldown time.Duration) (bool, error) {
		calls++
		return calls == 1, nil
	}

	authService := NewAuthService(
		repository.NewUserRepository(testDB),
		mailer.New(config.SMTPConfig{}),
		sms.NewTermiiService(config.SMSConfig{}),
		captcha.NewVerifier(""),
		nil,
		throttle,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	user := signupTestUser(t, authService)

	require.NoError(t, authService.ResendOTP(context.Background(), user.Email))

	err = authService.ResendOTP(context.Background(), user.Email)
	assert.ErrorIs(t, err, ErrResendTooSoon)
	assert.Equal(t, 2, calls)
}

func TestAuthService_Login(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	// unverified accounts cannot log in
	_, _, err := authService.Login(context.Background(), user.Email, "password123")
	assert.ErrorIs(t, err, ErrNotVerified)

	_, _, err = authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	require.NoError(t, err)

	logged, tokens, err := authService.Login(context.Background(), user.Email, "password123")
	require.NoError(t, err)
	assert.True(t, logged.IsOnline)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, _, err = authService.Login(context.Background(), user.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	_, _, err := authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	require.NoError(t, err)

	testDB.Model(user).Update("is_active", false)

	_, _, err = authService.Login(context.Background(), user.Email, "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_Logout_SetsOffline(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	_, _, err := authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	require.NoError(t, err)

	require.NoError(t, authService.Logout(context.Background(), user.ID, "", 0))

	var stored model.User
	testDB.First(&stored, user.ID)
	assert.False(t, stored.IsOnline)
}

func TestAuthService_PasswordReset(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	_, _, err := authService.VerifyOTP(context.Background(), user.Email, user.OTP)
	require.NoError(t, err)

	// unknown email is silently accepted
	require.NoError(t, authService.ForgotPassword(context.Background(), "nobody@example.com"))

	require.NoError(t, authService.ForgotPassword(context.Background(), user.Email))

	var stored model.User
	testDB.First(&stored, user.ID)
	require.Len(t, stored.OTP, 6)

	err = authService.ResetPassword(context.Background(), user.Email, "999999", "newpassword")
	if stored.OTP != "999999" {
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	require.NoError(t, authService.ResetPassword(context.Background(), user.Email, stored.OTP, "newpassword"))

	_, _, err = authService.Login(context.Background(), user.Email, "newpassword")
	assert.NoError(t, err)

	_, _, err = authService.Login(context.Background(), user.Email, "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Deactivate(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	require.NoError(t, authService.Deactivate(context.Background(), user.ID))

	// soft deleted rows are invisible to normal queries
	var count int64
	testDB.Model(&model.User{}).Where("id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	var stored model.User
	require.NoError(t, testDB.Unscoped().First(&stored, user.ID).Error)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.IsOnline)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	user := signupTestUser(t, authService)

	updated, err := authService.UpdateProfile(user.ID, "Grace A. Bello", "", "7 New Road, Offa")
	require.NoError(t, err)
	assert.Equal(t, "Grace A. Bello", updated.FullName)
	assert.Equal(t, "08030000000", updated.Phone)
	assert.Equal(t, "7 New Road, Offa", updated.Address)

	_, err = authService.UpdateProfile(9999, "Nobody", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
