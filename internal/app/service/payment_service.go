package service

import (
	"errors"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentService interface {
	GetUserPayments(userID uint) ([]model.Payment, error)
	GetByReference(userID uint, reference string, isAdmin bool) (*model.Payment, error)
	GetByOrderID(userID, orderID uint, isAdmin bool) (*model.Payment, error)
	GetAll() ([]model.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo}
}

func (s *paymentService) GetUserPayments(userID uint) ([]model.Payment, error) {
	return s.paymentRepo.FindByUserID(userID)
}

func (s *paymentService) GetByReference(userID uint, reference string, isAdmin bool) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if !isAdmin && payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// GetByOrderID returns the payment row backing an order. A payment
// belonging to another user reads as not found.
func (s *paymentService) GetByOrderID(userID, orderID uint, isAdmin bool) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if !isAdmin && payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *paymentService) GetAll() ([]model.Payment, error) {
	return s.paymentRepo.FindAll()
}
