package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/mailer"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/sms"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationEvent describes one storefront event to record and deliver
type NotificationEvent struct {
	UserID  *uint
	Email   string
	Phone   string
	Type    model.NotificationType
	Message string
	OrderID *uint
	Amount  *float64
}

type NotificationService interface {
	Dispatch(ctx context.Context, event NotificationEvent) (*model.Notification, error)
	GetAll() ([]model.Notification, error)
	GetByEmail(email string) ([]model.Notification, error)
	MarkRead(id uint) error
	MarkAllRead(email string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	settingsRepo     repository.SettingsRepository
	mailer           *mailer.Mailer
	smsSender        sms.Sender
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	settingsRepo repository.SettingsRepository,
	m *mailer.Mailer,
	smsSender sms.Sender,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		settingsRepo:     settingsRepo,
		mailer:           m,
		smsSender:        smsSender,
	}
}

// Dispatch persists the notification row, then delivers email/SMS on a
// best-effort basis. Delivery failure never fails the call: the row is
// the record, the sends are a courtesy.
func (s *notificationService) Dispatch(ctx context.Context, event NotificationEvent) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  event.UserID,
		Email:   event.Email,
		Type:    event.Type,
		Message: event.Message,
		OrderID: event.OrderID,
		Amount:  event.Amount,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, err
	}

	emailOn, smsOn := s.deliveryPreferences(event.UserID)

	if emailOn && event.Email != "" {
		subject := subjectFor(event.Type)
		detail := ""
		if event.Amount != nil {
			detail = fmt.Sprintf("Amount: %.2f", *event.Amount)
		}
		if err := s.mailer.SendNotification(event.Email, subject, event.Message, detail); err != nil {
			logger.Warn("Notification email delivery failed", map[string]interface{}{
				"notification_id": notification.ID,
				"email":           event.Email,
				"error":           err.Error(),
			})
		}
	}

	if smsOn && event.Phone != "" && s.smsSender != nil {
		if err := s.smsSender.Send(ctx, event.Phone, event.Message); err != nil {
			logger.Warn("Notification SMS delivery failed", map[string]interface{}{
				"notification_id": notification.ID,
				"error":           err.Error(),
			})
		}
	}

	logger.Debug("Notification dispatched", map[string]interface{}{
		"notification_id": notification.ID,
		"type":            event.Type,
	})
	return notification, nil
}

// deliveryPreferences reads the user's channel toggles, falling back to
// the defaults when no settings row exists
func (s *notificationService) deliveryPreferences(userID *uint) (emailOn, smsOn bool) {
	emailOn, smsOn = true, true
	if userID == nil {
		return
	}

	settings, err := s.settingsRepo.FindByUserID(*userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Failed to load notification settings", map[string]interface{}{
				"user_id": *userID,
				"error":   err.Error(),
			})
		}
		return
	}
	return settings.EmailNotifications, settings.SMSNotifications
}

func subjectFor(t model.NotificationType) string {
	switch t {
	case model.NotificationProductAdded:
		return "New product in the store"
	case model.NotificationProductCarted:
		return "Item added to your cart"
	case model.NotificationPayment:
		return "Payment received"
	case model.NotificationOrderStatus:
		return "Order status update"
	default:
		return "Divine Grace Ventures"
	}
}

func (s *notificationService) GetAll() ([]model.Notification, error) {
	return s.notificationRepo.FindAll()
}

func (s *notificationService) GetByEmail(email string) ([]model.Notification, error) {
	return s.notificationRepo.FindByEmail(email)
}

func (s *notificationService) MarkRead(id uint) error {
	if _, err := s.notificationRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return s.notificationRepo.MarkRead(id)
}

func (s *notificationService) MarkAllRead(email string) error {
	return s.notificationRepo.MarkAllRead(email)
}
