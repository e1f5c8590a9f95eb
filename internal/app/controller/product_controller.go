package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	UnitPrice   float64  `json:"unit_price"`
	Unit        string   `json:"unit"`
	Quantity    int      `json:"quantity" binding:"gte=0"`
	Available   *bool    `json:"available"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	Category    string   `json:"category"`
}

type ProductUpdateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	UnitPrice   float64  `json:"unit_price"`
	Unit        string   `json:"unit"`
	Quantity    int      `json:"quantity"`
	Available   *bool    `json:"available"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	Category    string   `json:"category"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		UnitPrice:   r.UnitPrice,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		Available:   r.Available,
		Image:       r.Image,
		Gallery:     r.Gallery,
		Category:    r.Category,
	}
}

func (r ProductUpdateRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		UnitPrice:   r.UnitPrice,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		Available:   r.Available,
		Image:       r.Image,
		Gallery:     r.Gallery,
		Category:    r.Category,
	}
}

// List returns the catalog, optionally filtered
// GET /api/v1/products?category=&search=&available=true
func (ctrl *ProductController) List(c *gin.Context) {
	filter := repository.ProductFilter{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		AvailableOnly: c.Query("available") == "true",
	}

	products, err := ctrl.productService.List(filter)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// Get returns a single product
// GET /api/v1/products/:id
func (ctrl *ProductController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Create adds a catalog product (admin)
// POST /api/v1/admin/products
func (ctrl *ProductController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product details")
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.BadRequest(c, apperrors.ProductInvalidPrice, "Price must be greater than zero")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity cannot be negative")
		default:
			log.Error("Product creation failed", err, map[string]interface{}{
				"name": req.Name,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create product")
		}
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created",
		"product": product,
	})
}

// Update edits a catalog product (admin)
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product details")
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.BadRequest(c, apperrors.ProductInvalidPrice, "Price must be greater than zero")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity cannot be negative")
		default:
			log.Error("Product update failed", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated",
		"product": product,
	})
}

// Delete removes a catalog product (admin)
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Product deletion failed", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete product")
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted",
	})
}
