package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null;index" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`      // selling price for one unit set
	UnitPrice   float64        `json:"unit_price"`                 // price per single unit
	Unit        string         `gorm:"type:varchar(50)" json:"unit"` // e.g. "bag", "carton", "kg"
	Quantity    int            `gorm:"not null;default:0" json:"quantity"`
	Available   bool           `gorm:"default:true" json:"available"`
	Image       string         `json:"image"` // storage key, resolved to a URL at read time
	Gallery     pq.StringArray `gorm:"type:text[]" json:"gallery,omitempty"`
	Category    string         `gorm:"type:varchar(100);index" json:"category"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
