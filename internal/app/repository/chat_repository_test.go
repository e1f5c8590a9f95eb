package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
)

func setupChatRepositoryTest(t *testing.T) (ChatRepository, *gorm.DB, *model.Admin, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	admin := &model.Admin{
		Email:        "admin@divinegrace.com",
		PasswordHash: "hash",
		FullName:     "Store Admin",
	}
	testDB.Create(admin)

	user := &model.User{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		FullName:     "Test Shopper",
		Verified:     true,
	}
	testDB.Create(user)

	return NewChatRepository(testDB), testDB, admin, user
}

func seedMessage(t *testing.T, testDB *gorm.DB, adminID, userID uint, role model.SenderRole, text string, at time.Time) {
	msg := &model.ChatMessage{
		AdminID:    adminID,
		UserID:     userID,
		SenderRole: role,
		Message:    text,
		CreatedAt:  at,
	}
	require.NoError(t, testDB.Create(msg).Error)
}

func TestChatRepository_FindThread_Chronological(t *testing.T) {
	repo, testDB, admin, user := setupChatRepositoryTest(t)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleUser, "first", base)
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleAdmin, "second", base.Add(time.Minute))
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleUser, "third", base.Add(2*time.Minute))

	messages, err := repo.FindThread(admin.ID, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, "second", messages[1].Message)
	assert.Equal(t, "third", messages[2].Message)
}

func TestChatRepository_FindThread_Limit(t *testing.T) {
	repo, testDB, admin, user := setupChatRepositoryTest(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleUser, "msg", base.Add(time.Duration(i)*time.Minute))
	}

	// the limit keeps the newest messages, still in chronological order
	messages, err := repo.FindThread(admin.ID, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))
}

func TestChatRepository_ListThreads(t *testing.T) {
	repo, testDB, admin, user := setupChatRepositoryTest(t)

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		FullName:     "Other Shopper",
		Verified:     true,
	}
	testDB.Create(other)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleUser, "hello", base)
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleUser, "is my order ready?", base.Add(time.Minute))
	seedMessage(t, testDB, admin.ID, other.ID, model.SenderRoleUser, "hi there", base.Add(2*time.Minute))
	seedMessage(t, testDB, admin.ID, other.ID, model.SenderRoleAdmin, "how can I help?", base.Add(3*time.Minute))

	summaries, err := repo.ListThreads(admin.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byUser := make(map[uint]ThreadSummary, len(summaries))
	for _, s := range summaries {
		byUser[s.UserID] = s
	}

	assert.Equal(t, "is my order ready?", byUser[user.ID].LastMessage)
	assert.Equal(t, int64(2), byUser[user.ID].UnreadCount)
	assert.Equal(t, "Test Shopper", byUser[user.ID].UserName)

	// the admin's own reply does not count as unread
	assert.Equal(t, "how can I help?", byUser[other.ID].LastMessage)
	assert.Equal(t, int64(1), byUser[other.ID].UnreadCount)

	// most recently active thread first
	assert.Equal(t, other.ID, summaries[0].UserID)
}

func TestChatRepository_MarkThreadRead(t *testing.T) {
	repo, testDB, admin, user := setupChatRepositoryTest(t)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleUser, "hello", base)
	seedMessage(t, testDB, admin.ID, user.ID, model.SenderRoleAdmin, "hi", base.Add(time.Minute))

	// admin reading the thread marks the customer's messages
	require.NoError(t, repo.MarkThreadRead(admin.ID, user.ID, model.SenderRoleAdmin))

	var unreadFromUser int64
	testDB.Model(&model.ChatMessage{}).
		Where("user_id = ? AND sender_role = ? AND is_read = ?", user.ID, model.SenderRoleUser, false).
		Count(&unreadFromUser)
	assert.Zero(t, unreadFromUser)

	var unreadFromAdmin int64
	testDB.Model(&model.ChatMessage{}).
		Where("user_id = ? AND sender_role = ? AND is_read = ?", user.ID, model.SenderRoleAdmin, false).
		Count(&unreadFromAdmin)
	assert.Equal(t, int64(1), unreadFromAdmin)
}
