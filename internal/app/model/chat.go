package model

import (
	"time"
)

type SenderRole string

const (
	SenderRoleAdmin SenderRole = "admin"
	SenderRoleUser  SenderRole = "user"
)

// ChatMessage is append-only. A thread is the set of rows sharing an
// (admin_id, user_id) pair; only is_read is ever mutated.
type ChatMessage struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	AdminID    uint       `gorm:"not null;index:idx_chat_thread" json:"admin_id"`
	UserID     uint       `gorm:"not null;index:idx_chat_thread" json:"user_id"`
	SenderRole SenderRole `gorm:"type:varchar(10);not null" json:"sender_role"`
	Message    string     `gorm:"type:text" json:"message"`
	ImageURL   string     `json:"image_url,omitempty"`
	IsRead     bool       `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`

	Admin Admin `gorm:"foreignKey:AdminID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
