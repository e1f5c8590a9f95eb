package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/mailer"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/paystack"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/sms"
)

type cannedGateway struct {
	txn *paystack.VerifyTransaction
	err error
}

func (g *cannedGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyTransaction, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.txn, nil
}

func setupOrderControllerTest(t *testing.T, gateway service.GatewayVerifier) (*OrderController, *gin.Engine, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	notificationService := service.NewNotificationService(
		repository.NewNotificationRepository(testDB),
		repository.NewSettingsRepository(testDB),
		mailer.New(config.SMTPConfig{}),
		sms.NewTermiiService(config.SMSConfig{}),
	)
	orderService := service.NewOrderService(
		repository.NewOrderRepository(testDB),
		repository.NewPaymentRepository(testDB),
		repository.NewCartRepository(testDB),
		repository.NewUserRepository(testDB),
		notificationService,
		gateway,
		testDB,
	)
	orderController := NewOrderController(orderService)

	user := &model.User{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		FullName:     "Test Shopper",
		Phone:        "08030000000",
		Verified:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:      "Bag of Rice",
		Price:     1000,
		Unit:      "bag",
		Quantity:  50,
		Available: true,
	}
	testDB.Create(product)
	require.NoError(t, repository.NewCartRepository(testDB).Create(&model.CartItem{
		UserID:       user.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Price:        product.Price,
		Unit:         product.Unit,
		UserQuantity: 2,
	}))

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return orderController, router, testDB, user
}

func postCheckout(t *testing.T, router *gin.Engine, reference string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"reference":        reference,
		"delivery_address": "12 Market Road, Ilorin",
		"delivery_phone":   "08030000000",
		"payer_name":       "Test Shopper",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrderController_Checkout_Success(t *testing.T) {
	gateway := &cannedGateway{txn: &paystack.VerifyTransaction{
		Status:    "success",
		Reference: "ref-ctrl-ok",
		Amount:    paystack.ToSubunit(2000),
		Channel:   "card",
	}}
	controller, router, _, user := setupOrderControllerTest(t, gateway)

	router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Checkout(c)
	})

	w := postCheckout(t, router, "ref-ctrl-ok")
	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Order struct {
			Status string `json:"status"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, string(model.OrderStatusPaid), response.Order.Status)
}

func TestOrderController_Checkout_ShortPayment(t *testing.T) {
	// settled 500.00 against a 2000.00 cart
	gateway := &cannedGateway{txn: &paystack.VerifyTransaction{
		Status:    "success",
		Reference: "ref-ctrl-short",
		Amount:    paystack.ToSubunit(500),
	}}
	controller, router, _, user := setupOrderControllerTest(t, gateway)

	router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Checkout(c)
	})

	w := postCheckout(t, router, "ref-ctrl-short")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ORDER_TOTAL_MISMATCH", response["error"])
}

func TestOrderController_Checkout_VerificationFailure(t *testing.T) {
	gateway := &cannedGateway{err: paystack.ErrVerificationFailed}
	controller, router, _, user := setupOrderControllerTest(t, gateway)

	router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Checkout(c)
	})

	w := postCheckout(t, router, "ref-ctrl-fail")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "PAYMENT_VERIFICATION_FAILED", response["error"])
}
