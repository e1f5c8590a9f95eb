package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
)

// OrderItemSnapshot is the immutable record of one line as it was at
// checkout. Orders never re-derive item data from live product rows, so
// catalog edits and deletions cannot corrupt order history.
type OrderItemSnapshot struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit"`
	Image       string  `json:"image"`
	Quantity    int     `json:"quantity"`
	Note        string  `json:"note,omitempty"`
}

type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Items           datatypes.JSON `gorm:"not null" json:"items"` // []OrderItemSnapshot
	Total           float64        `gorm:"not null" json:"total"`
	DeliveryAddress string         `gorm:"type:text;not null" json:"delivery_address"`
	DeliveryPhone   string         `gorm:"type:varchar(30);not null" json:"delivery_phone"`
	PayerName       string         `gorm:"not null" json:"payer_name"`
	Note            string         `gorm:"type:text" json:"note"`
	Status          OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User    User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Payment *Payment `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// ItemSnapshots decodes the serialized line items
func (o *Order) ItemSnapshots() ([]OrderItemSnapshot, error) {
	var items []OrderItemSnapshot
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetItemSnapshots serializes line items into the order
func (o *Order) SetItemSnapshots(items []OrderItemSnapshot) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	o.Items = datatypes.JSON(data)
	return nil
}
