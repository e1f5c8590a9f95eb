package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrNotCartOwner     = errors.New("cart item belongs to another user")
	ErrQuantityTooLow   = errors.New("quantity must be at least 1")
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID uint, quantity int, note string) (*model.CartItem, error)
	GetCart(userID uint) ([]model.CartItem, float64, error)
	UpdateItem(userID, itemID uint, quantity int, note *string) (*model.CartItem, error)
	RemoveItem(userID, itemID uint) error
}

type cartService struct {
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	notification NotificationService
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notification NotificationService,
) CartService {
	return &cartService{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		notification: notification,
	}
}

// AddItem puts a product in the cart, snapshotting its current price and
// presentation. Adding the same product again increments the quantity.
func (s *cartService) AddItem(ctx context.Context, userID, productID uint, quantity int, note string) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.cartRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var item *model.CartItem
	if existing != nil {
		existing.UserQuantity += quantity
		if note != "" {
			existing.Note = note
		}
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		item = existing
	} else {
		item = &model.CartItem{
			UserID:       userID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			Price:        product.Price,
			UnitPrice:    product.UnitPrice,
			Unit:         product.Unit,
			Image:        product.Image,
			UserQuantity: quantity,
			Note:         note,
		}
		if err := s.cartRepo.Create(item); err != nil {
			return nil, err
		}
	}

	if user, err := s.userRepo.FindByID(userID); err == nil {
		if _, err := s.notification.Dispatch(ctx, NotificationEvent{
			UserID:  &user.ID,
			Email:   user.Email,
			Phone:   user.Phone,
			Type:    model.NotificationProductCarted,
			Message: fmt.Sprintf("%s was added to your cart", product.Name),
		}); err != nil {
			logger.Warn("Failed to dispatch cart notification", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	logger.Info("Cart item added", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   item.UserQuantity,
	})
	return item, nil
}

func (s *cartService) GetCart(userID uint) ([]model.CartItem, float64, error) {
	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for i := range items {
		total += items[i].Subtotal()
	}
	return items, total, nil
}

func (s *cartService) UpdateItem(userID, itemID uint, quantity int, note *string) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrNotCartOwner
	}

	if quantity > 0 {
		item.UserQuantity = quantity
	} else if quantity < 0 {
		return nil, ErrQuantityTooLow
	}
	if note != nil {
		item.Note = *note
	}

	if err := s.cartRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) RemoveItem(userID, itemID uint) error {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	if item.UserID != userID {
		return ErrNotCartOwner
	}

	return s.cartRepo.Delete(itemID)
}
