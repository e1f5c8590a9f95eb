package repository

import (
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	FindByID(id uint) (*model.Payment, error)
	FindByReference(reference string) (*model.Payment, error)
	FindByOrderID(orderID uint) (*model.Payment, error)
	FindByUserID(userID uint) ([]model.Payment, error)
	FindAll() ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *model.Payment) error {
	logger.Debug("Creating payment in database", map[string]interface{}{
		"order_id":  payment.OrderID,
		"reference": payment.Reference,
		"amount":    payment.Amount,
	})

	if err := r.db.Create(payment).Error; err != nil {
		logger.Error("Failed to create payment in database", err, map[string]interface{}{
			"order_id":  payment.OrderID,
			"reference": payment.Reference,
		})
		return err
	}
	return nil
}

func (r *paymentRepository) FindByID(id uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		logger.Error("Failed to find payment by ID in database", err, map[string]interface{}{
			"payment_id": id,
		})
		return nil, err
	}
	return &payment, nil
}

// FindByReference looks a payment up by its gateway reference. Checkout
// uses this for idempotent replay detection.
func (r *paymentRepository) FindByReference(reference string) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByOrderID(orderID uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		logger.Error("Failed to find payment by order ID in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByUserID(userID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		logger.Error("Failed to find payments by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) FindAll() ([]model.Payment, error) {
	var payments []model.Payment
	if err := r.db.Order("created_at DESC").Find(&payments).Error; err != nil {
		logger.Error("Failed to find payments in database", err)
		return nil, err
	}
	return payments, nil
}
