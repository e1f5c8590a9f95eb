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

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartService := NewCartService(
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewUserRepository(testDB),
		newTestNotificationService(testDB),
	)

	user := &model.User{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		FullName:     "Test Shopper",
		Role:         model.RoleUser,
		Verified:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:      "Bag of Rice",
		Price:     1000,
		UnitPrice: 950,
		Unit:      "bag",
		Quantity:  50,
		Available: true,
		Category:  "grains",
	}
	testDB.Create(product)

	return cartService, testDB, user, product
}

func TestCartService_AddItem_SnapshotsProduct(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	item, err := cartService.AddItem(context.Background(), user.ID, product.ID, 2, "no stones please")
	require.NoError(t, err)
	assert.Equal(t, product.Name, item.ProductName)
	assert.Equal(t, product.Price, item.Price)
	assert.Equal(t, product.UnitPrice, item.UnitPrice)
	assert.Equal(t, product.Unit, item.Unit)
	assert.Equal(t, 2, item.UserQuantity)
	assert.Equal(t, float64(2000), item.Subtotal())

	// later price changes do not touch the snapshot
	testDB.Model(product).Update("price", 1500)
	items, total, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1000), items[0].Price)
	assert.Equal(t, float64(2000), total)

	// the user was notified
	var count int64
	testDB.Model(&model.Notification{}).Where("type = ?", model.NotificationProductCarted).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCartService_AddItem_IncrementsExistingLine(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), user.ID, product.ID, 2, "")
	require.NoError(t, err)
	item, err := cartService.AddItem(context.Background(), user.ID, product.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 5, item.UserQuantity)

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	cartService, _, user, product := setupCartServiceTest(t)

	_, err := cartService.AddItem(context.Background(), user.ID, product.ID, 0, "")
	assert.ErrorIs(t, err, ErrQuantityTooLow)

	_, err = cartService.AddItem(context.Background(), user.ID, 9999, 1, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	item, err := cartService.AddItem(context.Background(), user.ID, product.ID, 2, "")
	require.NoError(t, err)

	note := "deliver fresh"
	updated, err := cartService.UpdateItem(user.ID, item.ID, 4, &note)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.UserQuantity)
	assert.Equal(t, "deliver fresh", updated.Note)

	// zero quantity leaves the count alone
	updated, err = cartService.UpdateItem(user.ID, item.ID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.UserQuantity)

	_, err = cartService.UpdateItem(user.ID, item.ID, -1, nil)
	assert.ErrorIs(t, err, ErrQuantityTooLow)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Role: model.RoleUser}
	testDB.Create(other)
	_, err = cartService.UpdateItem(other.ID, item.ID, 1, nil)
	assert.ErrorIs(t, err, ErrNotCartOwner)

	_, err = cartService.UpdateItem(user.ID, 9999, 1, nil)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveItem(t *testing.T) {
	cartService, testDB, user, product := setupCartServiceTest(t)

	item, err := cartService.AddItem(context.Background(), user.ID, product.ID, 1, "")
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Role: model.RoleUser}
	testDB.Create(other)
	assert.ErrorIs(t, cartService.RemoveItem(other.ID, item.ID), ErrNotCartOwner)

	require.NoError(t, cartService.RemoveItem(user.ID, item.ID))

	items, total, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 0)
	assert.Zero(t, total)

	assert.ErrorIs(t, cartService.RemoveItem(user.ID, item.ID), ErrCartItemNotFound)
}
