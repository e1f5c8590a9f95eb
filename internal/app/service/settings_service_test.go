package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
)

func setupSettingsServiceTest(t *testing.T) (SettingsService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewSettingsService(repository.NewSettingsRepository(testDB)), testDB
}

func boolPtr(b bool) *bool { return &b }

func TestSettingsService_Get_DefaultsWithoutRow(t *testing.T) {
	settingsService, testDB := setupSettingsServiceTest(t)

	settings, err := settingsService.Get(42)
	require.NoError(t, err)
	assert.True(t, settings.EmailNotifications)
	assert.True(t, settings.SMSNotifications)
	assert.False(t, settings.DarkMode)

	// reading defaults does not persist them
	var count int64
	testDB.Model(&model.UserSettings{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSettingsService_Update_MergesAndPersists(t *testing.T) {
	settingsService, testDB := setupSettingsServiceTest(t)

	settings, err := settingsService.Update(42, SettingsUpdate{
		SMSNotifications: boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, settings.EmailNotifications)
	assert.False(t, settings.SMSNotifications)
	assert.False(t, settings.DarkMode)

	// a second partial update leaves earlier choices alone
	settings, err = settingsService.Update(42, SettingsUpdate{
		DarkMode: boolPtr(true),
	})
	require.NoError(t, err)
	assert.False(t, settings.SMSNotifications)
	assert.True(t, settings.DarkMode)

	var stored model.UserSettings
	require.NoError(t, testDB.First(&stored, "user_id = ?", 42).Error)
	assert.False(t, stored.SMSNotifications)
	assert.True(t, stored.DarkMode)

	// Get now reads the stored row
	settings, err = settingsService.Get(42)
	require.NoError(t, err)
	assert.False(t, settings.SMSNotifications)
}
