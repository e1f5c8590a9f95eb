package service

import (
	"errors"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

// SettingsUpdate carries the fields a PUT may change; nil means unchanged
type SettingsUpdate struct {
	EmailNotifications *bool
	SMSNotifications   *bool
	DarkMode           *bool
}

type SettingsService interface {
	Get(userID uint) (*model.UserSettings, error)
	Update(userID uint, update SettingsUpdate) (*model.UserSettings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

// Get returns the stored settings, or the fixed defaults when no row
// exists. The defaults are not persisted on read.
func (s *settingsService) Get(userID uint) (*model.UserSettings, error) {
	settings, err := s.settingsRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := model.DefaultUserSettings(userID)
			return &defaults, nil
		}
		return nil, err
	}
	return settings, nil
}

// Update merges the supplied fields over the current (or default) values
// and persists the result
func (s *settingsService) Update(userID uint, update SettingsUpdate) (*model.UserSettings, error) {
	settings, err := s.settingsRepo.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		defaults := model.DefaultUserSettings(userID)
		settings = &defaults
	}

	if update.EmailNotifications != nil {
		settings.EmailNotifications = *update.EmailNotifications
	}
	if update.SMSNotifications != nil {
		settings.SMSNotifications = *update.SMSNotifications
	}
	if update.DarkMode != nil {
		settings.DarkMode = *update.DarkMode
	}

	if err := s.settingsRepo.Upsert(settings); err != nil {
		return nil, err
	}

	logger.Debug("User settings updated", map[string]interface{}{
		"user_id": userID,
	})
	return settings, nil
}
