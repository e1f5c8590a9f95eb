package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
)

func TestNotificationService_Dispatch(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := newTestNotificationService(testDB)

	userID := uint(7)
	amount := 2500.0
	orderID := uint(3)

	notification, err := svc.Dispatch(context.Background(), NotificationEvent{
		UserID:  &userID,
		Email:   "shopper@example.com",
		Type:    model.NotificationPayment,
		Message: "Your payment of 2500.00 for order #3 was received",
		OrderID: &orderID,
		Amount:  &amount,
	})
	require.NoError(t, err)
	assert.NotZero(t, notification.ID)
	assert.False(t, notification.IsRead)

	// broadcast rows have no user
	broadcast, err := svc.Dispatch(context.Background(), NotificationEvent{
		Type:    model.NotificationProductAdded,
		Message: "Bag of Rice is now available in the store",
	})
	require.NoError(t, err)
	assert.Nil(t, broadcast.UserID)
}

func TestNotificationService_HistorySurvivesEmailChange(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := newTestNotificationService(testDB)

	user := &model.User{
		Email:        "old@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
		Verified:     true,
	}
	testDB.Create(user)

	_, err = svc.Dispatch(context.Background(), NotificationEvent{
		UserID:  &user.ID,
		Email:   user.Email,
		Type:    model.NotificationOrderStatus,
		Message: "Your order #1 is now paid",
	})
	require.NoError(t, err)

	// the account email changes afterwards
	testDB.Model(user).Update("email", "new@example.com")

	history, err := svc.GetByEmail("old@example.com")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	fresh, err := svc.GetByEmail("new@example.com")
	require.NoError(t, err)
	assert.Len(t, fresh, 0)
}

func TestNotificationService_MarkRead(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := newTestNotificationService(testDB)

	notification, err := svc.Dispatch(context.Background(), NotificationEvent{
		Email:   "shopper@example.com",
		Type:    model.NotificationProductAdded,
		Message: "Vegetable Oil is now available in the store",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(notification.ID))

	var stored model.Notification
	testDB.First(&stored, notification.ID)
	assert.True(t, stored.IsRead)

	assert.ErrorIs(t, svc.MarkRead(9999), ErrNotificationNotFound)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := newTestNotificationService(testDB)

	for i := 0; i < 3; i++ {
		_, err := svc.Dispatch(context.Background(), NotificationEvent{
			Email:   "shopper@example.com",
			Type:    model.NotificationProductAdded,
			Message: "New product in the store",
		})
		require.NoError(t, err)
	}
	other, err := svc.Dispatch(context.Background(), NotificationEvent{
		Email:   "other@example.com",
		Type:    model.NotificationProductAdded,
		Message: "New product in the store",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllRead("shopper@example.com"))

	var unread int64
	testDB.Model(&model.Notification{}).
		Where("email = ? AND is_read = ?", "shopper@example.com", false).
		Count(&unread)
	assert.Zero(t, unread)

	// other users' rows are untouched
	var stored model.Notification
	testDB.First(&stored, other.ID)
	assert.False(t, stored.IsRead)
}
