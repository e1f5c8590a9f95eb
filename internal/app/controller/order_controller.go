package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type CheckoutRequest struct {
	Reference       string `json:"reference" binding:"required"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	DeliveryPhone   string `json:"delivery_phone" binding:"required"`
	PayerName       string `json:"payer_name" binding:"required"`
	Note            string `json:"note"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout converts the cart into a paid order
// POST /api/v1/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout details")
		return
	}

	result, err := ctrl.orderService.Checkout(c.Request.Context(), userID, service.CheckoutInput{
		Reference:       req.Reference,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryPhone:   req.DeliveryPhone,
		PayerName:       req.PayerName,
		Note:            req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Delivery address, phone and payer name are required")
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrReferenceInUse):
			apperrors.Conflict(c, apperrors.PaymentDuplicateReference, "This payment reference belongs to another order")
		case errors.Is(err, service.ErrPaymentNotVerified):
			apperrors.PaymentRequired(c, apperrors.PaymentVerificationFailed, "Payment could not be verified")
		case errors.Is(err, service.ErrAmountMismatch):
			apperrors.PaymentRequired(c, apperrors.OrderTotalMismatch, "Paid amount does not cover the cart total")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id":   userID,
				"reference": req.Reference,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "checkout")
		}
		return
	}

	if result.Replayed {
		log.Info("Checkout replayed for existing reference", map[string]interface{}{
			"user_id":   userID,
			"order_id":  result.Order.ID,
			"reference": req.Reference,
		})
		c.JSON(http.StatusOK, gin.H{
			"message": "Order already placed for this payment",
			"order":   result.Order,
			"payment": result.Payment,
		})
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"user_id":  userID,
		"order_id": result.Order.ID,
		"total":    result.Order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   result.Order,
		"payment": result.Payment,
	})
}

// List returns the authenticated customer's orders
// GET /api/v1/orders
func (ctrl *OrderController) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// Get returns a single order; customers only see their own
// GET /api/v1/orders/:id
func (ctrl *OrderController) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, uint(orderID), role == model.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrNotOrderOwner):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListAll returns every order, optionally filtered by status (admin)
// GET /api/v1/admin/orders?status=pending
func (ctrl *OrderController) ListAll(c *gin.Context) {
	orders, err := ctrl.orderService.GetAllOrders(c.Query("status"))
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list all orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateStatus moves an order through its lifecycle (admin)
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status is required")
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), uint(orderID), model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidOrderStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Order cannot move to that status")
		default:
			log.Error("Order status update failed", err, map[string]interface{}{
				"order_id": orderID,
				"status":   req.Status,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update order status")
		}
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

// Export streams all orders as an .xlsx workbook (admin)
// GET /api/v1/admin/orders/export?status=paid
func (ctrl *OrderController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.GetAllOrders(c.Query("status"))
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export orders")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order ID", "Customer", "Payer", "Total", "Status", "Delivery Address", "Delivery Phone", "Items", "Placed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		snapshots, _ := order.ItemSnapshots()
		itemCount := 0
		for _, s := range snapshots {
			itemCount += s.Quantity
		}

		customer := ""
		if order.User.Email != "" {
			customer = order.User.Email
		}

		values := []interface{}{
			order.ID,
			customer,
			order.PayerName,
			order.Total,
			string(order.Status),
			order.DeliveryAddress,
			order.DeliveryPhone,
			itemCount,
			order.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write export workbook", err, nil)
	}
}
