package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// List returns the authenticated customer's payment history
// GET /api/v1/payments
func (ctrl *PaymentController) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	payments, err := ctrl.paymentService.GetUserPayments(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}

// Get looks up a payment by its gateway reference
// GET /api/v1/payments/:reference
func (ctrl *PaymentController) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	reference := c.Param("reference")
	if reference == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Payment reference is required")
		return
	}

	payment, err := ctrl.paymentService.GetByReference(userID, reference, role == model.RoleAdmin)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			apperrors.NotFound(c, apperrors.PaymentNotFound, "Payment not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// GetByOrder looks up the payment backing an order
// GET /api/v1/payments/order/:order_id
func (ctrl *PaymentController) GetByOrder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	payment, err := ctrl.paymentService.GetByOrderID(userID, uint(orderID), role == model.RoleAdmin)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			apperrors.NotFound(c, apperrors.PaymentNotFound, "Payment not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get payment by order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// ListAll returns every payment record (admin)
// GET /api/v1/admin/payments
func (ctrl *PaymentController) ListAll(c *gin.Context) {
	payments, err := ctrl.paymentService.GetAll()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list all payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}
