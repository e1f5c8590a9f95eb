package service

import (
	"errors"
	"strings"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/websocket"
)

var (
	ErrEmptyMessage = errors.New("message body is empty")
	ErrNoAdmin      = errors.New("no admin account available for chat")
)

// ChatService manages customer support conversations. A thread is the
// pair (admin, customer); customer-initiated messages attach to the
// store's default admin.
type ChatService interface {
	SendMessage(senderID uint, senderRole model.SenderRole, peerID uint, message, imageURL string) (*model.ChatMessage, error)
	GetThread(adminID, userID uint, reader model.SenderRole, limit int) ([]model.ChatMessage, error)
	ListThreads(adminID uint) ([]repository.ThreadSummary, error)
	DefaultAdminID() (uint, error)
	JoinThread(p websocket.Principal, threadID uint)
	LeaveThread(p websocket.Principal, threadID uint)
}

type chatService struct {
	chatRepo  repository.ChatRepository
	adminRepo repository.AdminRepository
	userRepo  repository.UserRepository
	hub       *websocket.Hub
}

func NewChatService(chatRepo repository.ChatRepository, adminRepo repository.AdminRepository, userRepo repository.UserRepository, hub *websocket.Hub) ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		adminRepo: adminRepo,
		userRepo:  userRepo,
		hub:       hub,
	}
}

// chatPayload is the wire shape pushed to live thread members.
type chatPayload struct {
	Type       string `json:"type"`
	ID         uint   `json:"id"`
	AdminID    uint   `json:"admin_id"`
	UserID     uint   `json:"user_id"`
	SenderRole string `json:"sender_role"`
	Message    string `json:"message"`
	ImageURL   string `json:"image_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// SendMessage persists the message and pushes it to the live thread.
// For an admin sender peerID is the customer; for a customer sender
// peerID is ignored and the default admin anchors the thread.
func (s *chatService) SendMessage(senderID uint, senderRole model.SenderRole, peerID uint, message, imageURL string) (*model.ChatMessage, error) {
	if strings.TrimSpace(message) == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}

	var adminID, userID uint
	switch senderRole {
	case model.SenderRoleAdmin:
		adminID = senderID
		userID = peerID
		if _, err := s.userRepo.FindByID(userID); err != nil {
			return nil, ErrUserNotFound
		}
	default:
		userID = senderID
		defaultAdmin, err := s.adminRepo.FindFirst()
		if err != nil {
			return nil, ErrNoAdmin
		}
		adminID = defaultAdmin.ID
	}

	msg := &model.ChatMessage{
		AdminID:    adminID,
		UserID:     userID,
		SenderRole: senderRole,
		Message:    message,
		ImageURL:   imageURL,
	}

	if err := s.chatRepo.Create(msg); err != nil {
		return nil, err
	}

	payload := chatPayload{
		Type:       "chat_message",
		ID:         msg.ID,
		AdminID:    msg.AdminID,
		UserID:     msg.UserID,
		SenderRole: string(msg.SenderRole),
		Message:    msg.Message,
		ImageURL:   msg.ImageURL,
		CreatedAt:  msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	sender := websocket.Principal{Role: websocket.RoleUser, ID: senderID}
	if senderRole == model.SenderRoleAdmin {
		sender.Role = websocket.RoleAdmin
	}

	// thread rooms are keyed by the customer's user ID
	s.hub.SendToThread(msg.UserID, payload, sender)

	return msg, nil
}

// GetThread returns the conversation in chronological order and marks
// the other party's messages as read for the reader.
func (s *chatService) GetThread(adminID, userID uint, reader model.SenderRole, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	messages, err := s.chatRepo.FindThread(adminID, userID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.MarkThreadRead(adminID, userID, reader); err != nil {
		return nil, err
	}

	return messages, nil
}

// ListThreads returns the admin inbox: one summary per customer the
// admin has a conversation with, newest activity first.
func (s *chatService) ListThreads(adminID uint) ([]repository.ThreadSummary, error) {
	return s.chatRepo.ListThreads(adminID)
}

// DefaultAdminID resolves the admin that anchors customer-initiated
// threads.
func (s *chatService) DefaultAdminID() (uint, error) {
	admin, err := s.adminRepo.FindFirst()
	if err != nil {
		return 0, ErrNoAdmin
	}
	return admin.ID, nil
}

func (s *chatService) JoinThread(p websocket.Principal, threadID uint) {
	s.hub.JoinThread(p, threadID)
}

func (s *chatService) LeaveThread(p websocket.Principal, threadID uint) {
	s.hub.LeaveThread(p, threadID)
}
