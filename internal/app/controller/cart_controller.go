package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Note      string `json:"note"`
}

type UpdateCartItemRequest struct {
	Quantity int     `json:"quantity"`
	Note     *string `json:"note"`
}

// Add puts a product in the cart, incrementing an existing line
// POST /api/v1/cart
func (ctrl *CartController) Add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart item details")
		return
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrQuantityTooLow):
			apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be at least 1")
		default:
			log.Error("Failed to add cart item", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "add to cart")
		}
		return
	}

	log.Info("Cart item added", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   item.UserQuantity,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Added to cart",
		"item":    item,
	})
}

// Get returns the cart contents with the running total
// GET /api/v1/cart
func (ctrl *CartController) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	items, total, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"count": len(items),
	})
}

// Update changes quantity or note on a cart line
// PUT /api/v1/cart/:id
func (ctrl *CartController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid cart item ID")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart item details")
		return
	}

	item, err := ctrl.cartService.UpdateItem(userID, uint(itemID), req.Quantity, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
		case errors.Is(err, service.ErrNotCartOwner):
			apperrors.Forbidden(c, "You can only modify your own cart")
		case errors.Is(err, service.ErrQuantityTooLow):
			apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be at least 1")
		default:
			log.Error("Failed to update cart item", err, map[string]interface{}{
				"user_id": userID,
				"item_id": itemID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update cart item")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"item":    item,
	})
}

// Remove deletes a cart line
// DELETE /api/v1/cart/:id
func (ctrl *CartController) Remove(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid cart item ID")
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, uint(itemID)); err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
		case errors.Is(err, service.ErrNotCartOwner):
			apperrors.Forbidden(c, "You can only modify your own cart")
		default:
			log.Error("Failed to remove cart item", err, map[string]interface{}{
				"user_id": userID,
				"item_id": itemID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "remove cart item")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Removed from cart",
	})
}
