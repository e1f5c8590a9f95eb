package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/paystack"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("order belongs to another user")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingFields       = errors.New("required checkout fields are missing")
	ErrReferenceInUse      = errors.New("payment reference already used by another account")
	ErrPaymentNotVerified  = errors.New("payment could not be verified with the gateway")
	ErrAmountMismatch      = errors.New("verified payment amount does not match the cart total")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
)

// GatewayVerifier confirms a payment reference with the external gateway.
// A nil verifier puts checkout in development mode: references are
// accepted without confirmation.
type GatewayVerifier interface {
	Verify(ctx context.Context, reference string) (*paystack.VerifyTransaction, error)
}

// CheckoutInput is the client's checkout request. The cart itself is read
// server-side; clients only supply delivery details and the gateway
// reference obtained from the payment widget.
type CheckoutInput struct {
	Reference       string
	DeliveryAddress string
	DeliveryPhone   string
	PayerName       string
	Note            string
}

// CheckoutResult pairs the created order with its payment record
type CheckoutResult struct {
	Order    *model.Order   `json:"order"`
	Payment  *model.Payment `json:"payment"`
	Replayed bool           `json:"replayed"` // true when an identical earlier checkout was returned
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error)
	GetAllOrders(status string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error)
	FailStalePending(olderThan time.Time) (int, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	cartRepo     repository.CartRepository
	userRepo     repository.UserRepository
	notification NotificationService
	gateway      GatewayVerifier
	db           *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	notification NotificationService,
	gateway GatewayVerifier,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
		notification: notification,
		gateway:      gateway,
		db:           db,
	}
}

// Checkout converts the user's cart into an order and payment record in
// one transaction. The payment reference doubles as an idempotency key:
// a retry carrying a reference that already produced a payment returns
// the original order instead of creating a duplicate, which also
// serializes concurrent checkouts on the same widget session.
func (s *orderService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error) {
	if input.Reference == "" || input.DeliveryAddress == "" || input.DeliveryPhone == "" || input.PayerName == "" {
		return nil, ErrMissingFields
	}

	logger.Info("Checkout started", map[string]interface{}{
		"user_id":   userID,
		"reference": input.Reference,
	})

	// Idempotent replay: a reference that already settled returns the
	// original result
	if existing, err := s.paymentRepo.FindByReference(input.Reference); err == nil {
		if existing.UserID != userID {
			return nil, ErrReferenceInUse
		}
		order, err := s.orderRepo.FindByID(existing.OrderID)
		if err != nil {
			return nil, err
		}
		logger.Info("Checkout replayed from existing payment", map[string]interface{}{
			"user_id":   userID,
			"order_id":  order.ID,
			"reference": input.Reference,
		})
		return &CheckoutResult{Order: order, Payment: existing, Replayed: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	snapshots := make([]model.OrderItemSnapshot, 0, len(cartItems))
	var total float64
	for _, item := range cartItems {
		snapshots = append(snapshots, model.OrderItemSnapshot{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			UnitPrice:   item.UnitPrice,
			Unit:        item.Unit,
			Image:       item.Image,
			Quantity:    item.UserQuantity,
			Note:        item.Note,
		})
		total += item.Subtotal()
	}

	channel, paidAt, err := s.verifyWithGateway(ctx, input.Reference, total)
	if err != nil {
		return nil, err
	}

	// the gateway has already confirmed the reference by this point,
	// so the order is born paid
	order := &model.Order{
		UserID:          userID,
		Total:           total,
		DeliveryAddress: input.DeliveryAddress,
		DeliveryPhone:   input.DeliveryPhone,
		PayerName:       input.PayerName,
		Note:            input.Note,
		Status:          model.OrderStatusPaid,
	}
	if err := order.SetItemSnapshots(snapshots); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		UserID:          userID,
		Reference:       input.Reference,
		PayerName:       input.PayerName,
		Amount:          total,
		Channel:         channel,
		DeliveryAddress: input.DeliveryAddress,
		DeliveryPhone:   input.DeliveryPhone,
		Note:            input.Note,
		Status:          model.PaymentStatusSuccessful,
		PaidAt:          paidAt,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to insert order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	payment.OrderID = order.ID
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to insert payment", err, map[string]interface{}{
			"user_id":   userID,
			"order_id":  order.ID,
			"reference": input.Reference,
		})
		// The unique reference index turns a concurrent duplicate into
		// this error instead of a second order
		return nil, err
	}

	if err := s.cartRepo.WithTx(tx).DeleteByUserID(userID); err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	s.notifyPayment(ctx, userID, order, payment)

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    total,
	})
	return &CheckoutResult{Order: order, Payment: payment}, nil
}

// verifyWithGateway confirms the reference and checks the settled amount
// against the computed total. Without a configured gateway the reference
// is trusted, which is only acceptable in development.
func (s *orderService) verifyWithGateway(ctx context.Context, reference string, total float64) (channel string, paidAt *time.Time, err error) {
	if s.gateway == nil {
		logger.Warn("No payment gateway configured, accepting reference unverified", map[string]interface{}{
			"reference": reference,
		})
		now := time.Now()
		return "", &now, nil
	}

	txn, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		logger.Error("Gateway verification failed", err, map[string]interface{}{
			"reference": reference,
		})
		return "", nil, fmt.Errorf("%w: %v", ErrPaymentNotVerified, err)
	}

	// an overpayment still covers the cart; only a short payment fails
	settled := paystack.FromSubunit(txn.Amount)
	if settled < total-0.009 {
		logger.Warn("Settled amount does not cover cart total", map[string]interface{}{
			"reference": reference,
			"settled":   settled,
			"total":     total,
		})
		return "", nil, ErrAmountMismatch
	}

	return txn.Channel, txn.PaidAt, nil
}

func (s *orderService) notifyPayment(ctx context.Context, userID uint, order *model.Order, payment *model.Payment) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		logger.Warn("Could not load user for payment notification", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	amount := payment.Amount
	if _, err := s.notification.Dispatch(ctx, NotificationEvent{
		UserID:  &user.ID,
		Email:   user.Email,
		Phone:   user.Phone,
		Type:    model.NotificationPayment,
		Message: fmt.Sprintf("Your payment of %.2f for order #%d was received", amount, order.ID),
		OrderID: &order.ID,
		Amount:  &amount,
	}); err != nil {
		logger.Warn("Failed to dispatch payment notification", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *orderService) GetAllOrders(status string) ([]model.Order, error) {
	return s.orderRepo.FindAll(status)
}

var validStatusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending: {model.OrderStatusPaid, model.OrderStatusDelivered, model.OrderStatusCancelled, model.OrderStatusFailed},
	model.OrderStatusPaid:    {model.OrderStatusDelivered, model.OrderStatusCancelled},
}

// UpdateStatus applies an admin status change and notifies the customer
func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	order.Status = status

	if user, err := s.userRepo.FindByID(order.UserID); err == nil {
		if _, err := s.notification.Dispatch(ctx, NotificationEvent{
			UserID:  &user.ID,
			Email:   user.Email,
			Phone:   user.Phone,
			Type:    model.NotificationOrderStatus,
			Message: fmt.Sprintf("Your order #%d is now %s", order.ID, status),
			OrderID: &order.ID,
		}); err != nil {
			logger.Warn("Failed to dispatch order status notification", map[string]interface{}{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	return order, nil
}

// FailStalePending marks pending orders past the cutoff with no successful
// payment as failed. Run from the scheduler.
func (s *orderService) FailStalePending(olderThan time.Time) (int, error) {
	orders, err := s.orderRepo.FindStalePending(olderThan)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, order := range orders {
		if err := s.orderRepo.UpdateStatus(order.ID, model.OrderStatusFailed); err != nil {
			logger.Error("Failed to mark stale order failed", err, map[string]interface{}{
				"order_id": order.ID,
			})
			continue
		}
		failed++
	}

	if failed > 0 {
		logger.Info("Stale pending orders failed", map[string]interface{}{
			"count": failed,
		})
	}
	return failed, nil
}
