package controller

import (
	"bytes"
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
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/mailer"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/sms"
)

func setupCartControllerTest(t *testing.T) (*CartController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationService := service.NewNotificationService(
		repository.NewNotificationRepository(testDB),
		repository.NewSettingsRepository(testDB),
		mailer.New(config.SMTPConfig{}),
		sms.NewTermiiService(config.SMSConfig{}),
	)
	cartService := service.NewCartService(cartRepo, productRepo, userRepo, notificationService)
	cartController := NewCartController(cartService)

	user := &model.User{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		FullName:     "Test Shopper",
		Verified:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:        "Bag of Rice",
		Description: "50kg bag",
		Price:       1000,
		UnitPrice:   950,
		Unit:        "bag",
		Quantity:    50,
		Available:   true,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return cartController, router, testDB, user, product
}

func setUserIdentity(c *gin.Context, user *model.User) {
	c.Set(middleware.UserIDKey, user.ID)
	c.Set(middleware.UserEmailKey, user.Email)
	c.Set(middleware.UserRoleKey, model.RoleUser)
}

func TestCartController_Get_Empty(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.GET("/cart", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Get(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(0), response["count"])
	assert.Equal(t, float64(0), response["total"])
}

func TestCartController_Add_Success(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/cart", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Add(c)
	})

	reqBody := AddCartItemRequest{
		ProductID: product.ID,
		Quantity:  2,
	}
	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Added to cart", response["message"])
}

func TestCartController_Add_ProductNotFound(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.POST("/cart", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Add(c)
	})

	reqBody := AddCartItemRequest{
		ProductID: 9999,
		Quantity:  2,
	}
	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "PRODUCT_NOT_FOUND", response["error"])
}

func TestCartController_Add_InvalidRequest(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/cart", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Add(c)
	})

	tests := []struct {
		name    string
		reqBody map[string]interface{}
	}{
		{
			name:    "Missing product_id",
			reqBody: map[string]interface{}{"quantity": 2},
		},
		{
			name:    "Missing quantity",
			reqBody: map[string]interface{}{"product_id": product.ID},
		},
		{
			name:    "Zero quantity",
			reqBody: map[string]interface{}{"product_id": product.ID, "quantity": 0},
		},
		{
			name:    "Negative quantity",
			reqBody: map[string]interface{}{"product_id": product.ID, "quantity": -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonBody, _ := json.Marshal(tt.reqBody)
			req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(jsonBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			assert.Equal(t, "VALIDATION_INVALID_INPUT", response["error"])
		})
	}
}

func TestCartController_Get_WithItems(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:       user.ID,
		ProductID:    product.ID,
		UserQuantity: 2,
		Price:        product.Price,
		UnitPrice:    product.UnitPrice,
		Unit:         product.Unit,
	})

	router.GET("/cart", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Get(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(1), response["count"])
	assert.Equal(t, float64(2000), response["total"])
}

func TestCartController_Update_NotFound(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.PUT("/cart/:id", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Update(c)
	})

	reqBody := UpdateCartItemRequest{Quantity: 5}
	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, "/cart/9999", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "CART_ITEM_NOT_FOUND", response["error"])
}

func TestCartController_Update_InvalidID(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.PUT("/cart/:id", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Update(c)
	})

	reqBody := UpdateCartItemRequest{Quantity: 5}
	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, "/cart/invalid", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "VALIDATION_INVALID_ID", response["error"])
}

func TestCartController_Update_OtherUsersItem(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		FullName:     "Other Shopper",
		Verified:     true,
	}
	testDB.Create(other)

	cartRepo := repository.NewCartRepository(testDB)
	item := &model.CartItem{
		UserID:       other.ID,
		ProductID:    product.ID,
		UserQuantity: 1,
		Price:        product.Price,
	}
	cartRepo.Create(item)

	router.PUT("/cart/:id", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Update(c)
	})

	reqBody := UpdateCartItemRequest{Quantity: 5}
	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, "/cart/1", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "AUTHZ_FORBIDDEN", response["error"])
}

func TestCartController_Remove_Success(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	cartRepo.Create(&model.CartItem{
		UserID:       user.ID,
		ProductID:    product.ID,
		UserQuantity: 2,
		Price:        product.Price,
	})

	router.DELETE("/cart/:id", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Remove(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/cart/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Removed from cart", response["message"])

	items, _ := cartRepo.FindByUserID(user.ID)
	assert.Len(t, items, 0)
}

func TestCartController_Remove_NotFound(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.DELETE("/cart/:id", func(c *gin.Context) {
		setUserIdentity(c, user)
		controller.Remove(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/cart/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "CART_ITEM_NOT_FOUND", response["error"])
}
