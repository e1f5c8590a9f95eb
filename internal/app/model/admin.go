package model

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a back-office operator account, stored separately from
// customer accounts.
type Admin struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	FullName     string         `gorm:"not null" json:"full_name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'admin'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	OTP          string         `gorm:"type:varchar(10)" json:"-"`
	OTPExpiresAt *time.Time     `json:"-"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}
