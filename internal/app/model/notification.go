package model

import (
	"time"
)

type NotificationType string

const (
	NotificationProductAdded  NotificationType = "product_added"
	NotificationProductCarted NotificationType = "product_carted"
	NotificationPayment       NotificationType = "payment"
	NotificationOrderStatus   NotificationType = "order_status"
)

// Notification keeps a denormalized copy of the recipient email taken at
// creation time. A later email change on the user row does not relink
// past notifications.
type Notification struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	UserID    *uint            `gorm:"index" json:"user_id,omitempty"` // nil for broadcast rows
	Email     string           `gorm:"index" json:"email"`
	Type      NotificationType `gorm:"type:varchar(30);not null;index" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	OrderID   *uint            `gorm:"index" json:"order_id,omitempty"`
	Amount    *float64         `json:"amount,omitempty"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
