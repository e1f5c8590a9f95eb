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
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
)

// ProductInput carries admin-supplied catalog fields
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	UnitPrice   float64
	Unit        string
	Quantity    int
	Available   *bool
	Image       string
	Gallery     []string
	Category    string
}

type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*model.Product, error)
	List(filter repository.ProductFilter) ([]model.Product, error)
	GetByID(id uint) (*model.Product, error)
	Update(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	notification NotificationService
}

func NewProductService(productRepo repository.ProductRepository, notification NotificationService) ProductService {
	return &productService{
		productRepo:  productRepo,
		notification: notification,
	}
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":  input.Name,
		"price": input.Price,
	})

	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	available := input.Quantity > 0
	if input.Available != nil {
		available = *input.Available
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		UnitPrice:   input.UnitPrice,
		Unit:        input.Unit,
		Quantity:    input.Quantity,
		Available:   available,
		Image:       input.Image,
		Gallery:     input.Gallery,
		Category:    input.Category,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	// Broadcast row; customer views filter it in by type
	if _, err := s.notification.Dispatch(ctx, NotificationEvent{
		Type:    model.NotificationProductAdded,
		Message: fmt.Sprintf("%s is now available in the store", product.Name),
	}); err != nil {
		logger.Warn("Failed to dispatch product notification", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
	}

	return product, nil
}

func (s *productService) List(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *productService) GetByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Price > 0 {
		product.Price = input.Price
	}
	if input.UnitPrice > 0 {
		product.UnitPrice = input.UnitPrice
	}
	if input.Unit != "" {
		product.Unit = input.Unit
	}
	if input.Quantity >= 0 {
		product.Quantity = input.Quantity
	}
	if input.Available != nil {
		product.Available = *input.Available
	}
	if input.Image != "" {
		product.Image = input.Image
	}
	if input.Gallery != nil {
		product.Gallery = input.Gallery
	}
	if input.Category != "" {
		product.Category = input.Category
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(id)
}
