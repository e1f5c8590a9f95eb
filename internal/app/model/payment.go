package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type Payment struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	OrderID         uint           `gorm:"not null;index" json:"order_id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Reference       string         `gorm:"uniqueIndex;not null" json:"reference"` // gateway transaction reference
	PayerName       string         `json:"payer_name"`
	Amount          float64        `gorm:"not null" json:"amount"`
	Channel         string         `gorm:"type:varchar(50)" json:"channel,omitempty"` // card, bank_transfer, ussd
	DeliveryAddress string         `gorm:"type:text" json:"delivery_address"`
	DeliveryPhone   string         `gorm:"type:varchar(30)" json:"delivery_phone"`
	Note            string         `gorm:"type:text" json:"note"`
	Status          PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaidAt          *time.Time     `json:"paid_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
