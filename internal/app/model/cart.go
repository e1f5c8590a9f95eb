package model

import (
	"time"

	"gorm.io/gorm"
)

// CartItem snapshots price/unit/image at add-time so a later catalog edit
// does not silently change what the shopper agreed to pay.
type CartItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	// no unique index on (user, product): removed rows stay behind as
	// soft-deleted history, so uniqueness is enforced by the add path's
	// find-then-increment instead
	UserID       uint           `gorm:"not null;index:idx_cart_user_product" json:"user_id"`
	ProductID    uint           `gorm:"not null;index:idx_cart_user_product" json:"product_id"`
	ProductName  string         `gorm:"not null" json:"product_name"`
	Price        float64        `gorm:"not null" json:"price"`
	UnitPrice    float64        `json:"unit_price"`
	Unit         string         `gorm:"type:varchar(50)" json:"unit"`
	Image        string         `json:"image"`
	UserQuantity int            `gorm:"not null;default:1" json:"user_quantity"`
	Note         string         `gorm:"type:text" json:"note"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal returns the line total for this cart item
func (c *CartItem) Subtotal() float64 {
	return c.Price * float64(c.UserQuantity)
}
