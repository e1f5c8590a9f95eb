package repository

import (
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	FindByUserID(userID uint) (*model.UserSettings, error)
	Upsert(settings *model.UserSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) FindByUserID(userID uint) (*model.UserSettings, error) {
	var settings model.UserSettings
	if err := r.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(settings *model.UserSettings) error {
	logger.Debug("Upserting user settings in database", map[string]interface{}{
		"user_id": settings.UserID,
	})

	if err := r.db.Save(settings).Error; err != nil {
		logger.Error("Failed to upsert user settings in database", err, map[string]interface{}{
			"user_id": settings.UserID,
		})
		return err
	}
	return nil
}
