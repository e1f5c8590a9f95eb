package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/util"
)

func setupAdminServiceTest(t *testing.T) (AdminService, *gorm.DB, *model.Admin) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	adminService := NewAdminService(
		repository.NewAdminRepository(testDB),
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	hash, err := util.HashPassword("admin-password")
	require.NoError(t, err)
	admin := &model.Admin{
		Email:        "admin@divinegrace.com",
		PasswordHash: hash,
		FullName:     "Store Admin",
	}
	testDB.Create(admin)

	return adminService, testDB, admin
}

func TestAdminService_Login(t *testing.T) {
	adminService, testDB, admin := setupAdminServiceTest(t)

	logged, tokens, err := adminService.Login(context.Background(), admin.Email, "admin-password")
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotNil(t, logged.LastLoginAt)

	// the token carries the admin role
	claims, err := util.ValidateToken(tokens.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleAdmin), claims.Role)
	assert.Equal(t, admin.ID, claims.UserID)

	var stored model.Admin
	testDB.First(&stored, admin.ID)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestAdminService_Login_InvalidCredentials(t *testing.T) {
	adminService, _, admin := setupAdminServiceTest(t)

	_, _, err := adminService.Login(context.Background(), admin.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = adminService.Login(context.Background(), "nobody@divinegrace.com", "admin-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminService_Login_DisabledAccount(t *testing.T) {
	adminService, testDB, admin := setupAdminServiceTest(t)

	err := testDB.Model(&model.Admin{}).Where("id = ?", admin.ID).
		Update("is_active", false).Error
	require.NoError(t, err)

	_, _, err = adminService.Login(context.Background(), admin.Email, "admin-password")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAdminService_GetDefaultAdmin(t *testing.T) {
	adminService, testDB, admin := setupAdminServiceTest(t)

	// a later admin does not displace the original anchor
	later := &model.Admin{
		Email:        "second@divinegrace.com",
		PasswordHash: "hash",
		FullName:     "Second Admin",
	}
	testDB.Create(later)

	anchor, err := adminService.GetDefaultAdmin()
	require.NoError(t, err)
	assert.Equal(t, admin.ID, anchor.ID)

	fetched, err := adminService.GetAdminByID(later.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second Admin", fetched.FullName)

	_, err = adminService.GetAdminByID(9999)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}
