package repository

import (
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

// ThreadSummary is one row of the admin inbox: a customer plus the last
// message exchanged with them.
type ThreadSummary struct {
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	LastMessage string `json:"last_message"`
	UnreadCount int64  `json:"unread_count"`
}

type ChatRepository interface {
	Create(message *model.ChatMessage) error
	FindThread(adminID, userID uint, limit int) ([]model.ChatMessage, error)
	ListThreads(adminID uint) ([]ThreadSummary, error)
	MarkThreadRead(adminID, userID uint, reader model.SenderRole) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(message *model.ChatMessage) error {
	logger.Debug("Creating chat message in database", map[string]interface{}{
		"admin_id":    message.AdminID,
		"user_id":     message.UserID,
		"sender_role": message.SenderRole,
	})

	if err := r.db.Create(message).Error; err != nil {
		logger.Error("Failed to create chat message in database", err, map[string]interface{}{
			"admin_id": message.AdminID,
			"user_id":  message.UserID,
		})
		return err
	}
	return nil
}

func (r *chatRepository) FindThread(adminID, userID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var messages []model.ChatMessage
	err := r.db.Where("admin_id = ? AND user_id = ?", adminID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		logger.Error("Failed to find chat thread in database", err, map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
		})
		return nil, err
	}

	// reverse into chronological order for display
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *chatRepository) ListThreads(adminID uint) ([]ThreadSummary, error) {
	var summaries []ThreadSummary

	err := r.db.Raw(`
		SELECT m.user_id,
		       u.full_name AS user_name,
		       u.email AS user_email,
		       (SELECT message FROM chat_messages
		         WHERE admin_id = ? AND user_id = m.user_id
		         ORDER BY created_at DESC LIMIT 1) AS last_message,
		       SUM(CASE WHEN m.sender_role = 'user' AND m.is_read = ? THEN 1 ELSE 0 END) AS unread_count
		  FROM chat_messages m
		  JOIN users u ON u.id = m.user_id
		 WHERE m.admin_id = ?
		 GROUP BY m.user_id, u.full_name, u.email
		 ORDER BY MAX(m.created_at) DESC
	`, adminID, false, adminID).Scan(&summaries).Error
	if err != nil {
		logger.Error("Failed to list chat threads in database", err, map[string]interface{}{
			"admin_id": adminID,
		})
		return nil, err
	}
	return summaries, nil
}

// MarkThreadRead flags messages authored by the other party as read
func (r *chatRepository) MarkThreadRead(adminID, userID uint, reader model.SenderRole) error {
	other := model.SenderRoleUser
	if reader == model.SenderRoleUser {
		other = model.SenderRoleAdmin
	}

	err := r.db.Model(&model.ChatMessage{}).
		Where("admin_id = ? AND user_id = ? AND sender_role = ? AND is_read = ?", adminID, userID, other, false).
		Update("is_read", true).Error
	if err != nil {
		logger.Error("Failed to mark chat thread read in database", err, map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
		})
		return err
	}
	return nil
}
