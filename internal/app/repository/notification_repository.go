package repository

import (
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindAll() ([]model.Notification, error)
	FindByEmail(email string) ([]model.Notification, error)
	FindByID(id uint) (*model.Notification, error)
	MarkRead(id uint) error
	MarkAllRead(email string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	logger.Debug("Creating notification in database", map[string]interface{}{
		"type":  notification.Type,
		"email": notification.Email,
	})

	if err := r.db.Create(notification).Error; err != nil {
		logger.Error("Failed to create notification in database", err, map[string]interface{}{
			"type": notification.Type,
		})
		return err
	}
	return nil
}

// MarkAllRead matches on the denormalized email, same as FindByEmail
func (r *notificationRepository) MarkAllRead(email string) error {
	err := r.db.Model(&model.Notification{}).
		Where("email = ? AND is_read = ?", email, false).
		Update("is_read", true).Error
	if err != nil {
		logger.Error("Failed to mark notifications read in database", err, map[string]interface{}{
			"email": email,
		})
		return err
	}
	return nil
}

func (r *notificationRepository) FindAll() ([]model.Notification, error) {
	var notifications []model.Notification
	if err := r.db.Order("created_at DESC").Find(&notifications).Error; err != nil {
		logger.Error("Failed to find notifications in database", err)
		return nil, err
	}
	return notifications, nil
}

// FindByEmail filters by the denormalized email captured at creation time
func (r *notificationRepository) FindByEmail(email string) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.Where("email = ?", email).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		logger.Error("Failed to find notifications by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) FindByID(id uint) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkRead(id uint) error {
	if err := r.db.Model(&model.Notification{}).Where("id = ?", id).
		Update("is_read", true).Error; err != nil {
		logger.Error("Failed to mark notification read in database", err, map[string]interface{}{
			"notification_id": id,
		})
		return err
	}
	return nil
}
