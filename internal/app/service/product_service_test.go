package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
)

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productService := NewProductService(
		repository.NewProductRepository(testDB),
		newTestNotificationService(testDB),
	)
	return productService, testDB
}

func TestProductService_Create(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	product, err := productService.Create(context.Background(), ProductInput{
		Name:      "Bag of Rice",
		Price:     1000,
		UnitPrice: 950,
		Unit:      "bag",
		Quantity:  50,
		Category:  "grains",
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.True(t, product.Available)

	// a storewide announcement was recorded
	var notifications []model.Notification
	testDB.Where("type = ?", model.NotificationProductAdded).Find(&notifications)
	require.Len(t, notifications, 1)
	assert.Nil(t, notifications[0].UserID)
}

func TestProductService_Create_Validation(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	_, err := productService.Create(context.Background(), ProductInput{Name: "Free Thing", Price: 0})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = productService.Create(context.Background(), ProductInput{Name: "Ghost Stock", Price: 10, Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestProductService_Create_AvailabilityDerivedFromStock(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	soldOut, err := productService.Create(context.Background(), ProductInput{
		Name: "Palm Oil", Price: 700, Quantity: 0,
	})
	require.NoError(t, err)
	assert.False(t, soldOut.Available)

	// an explicit flag wins over the stock level
	forced := true
	preorder, err := productService.Create(context.Background(), ProductInput{
		Name: "Yam Flour", Price: 1200, Quantity: 0, Available: &forced,
	})
	require.NoError(t, err)
	assert.True(t, preorder.Available)
}

func TestProductService_List_Filters(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	for _, input := range []ProductInput{
		{Name: "Bag of Rice", Price: 1000, Quantity: 5, Category: "grains"},
		{Name: "Brown Beans", Price: 800, Quantity: 0, Category: "grains"},
		{Name: "Vegetable Oil", Price: 500, Quantity: 9, Category: "oils"},
	} {
		_, err := productService.Create(context.Background(), input)
		require.NoError(t, err)
	}

	all, err := productService.List(repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	grains, err := productService.List(repository.ProductFilter{Category: "grains"})
	require.NoError(t, err)
	assert.Len(t, grains, 2)

	available, err := productService.List(repository.ProductFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	matched, err := productService.List(repository.ProductFilter{Search: "rice"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Bag of Rice", matched[0].Name)
}

func TestProductService_Update(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.Create(context.Background(), ProductInput{
		Name: "Bag of Rice", Price: 1000, Quantity: 5,
	})
	require.NoError(t, err)

	updated, err := productService.Update(context.Background(), product.ID, ProductInput{
		Price: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1200), updated.Price)
	assert.Equal(t, "Bag of Rice", updated.Name)

	_, err = productService.Update(context.Background(), 9999, ProductInput{Price: 10})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.Create(context.Background(), ProductInput{
		Name: "Bag of Rice", Price: 1000, Quantity: 5,
	})
	require.NoError(t, err)

	require.NoError(t, productService.Delete(context.Background(), product.ID))

	_, err = productService.GetByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, productService.Delete(context.Background(), product.ID), ErrProductNotFound)
}
