package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	FullName     string         `gorm:"not null" json:"full_name"`
	Phone        string         `json:"phone"`
	Address      string         `json:"address"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	OTP          string         `gorm:"type:varchar(10)" json:"-"` // pending one-time code, empty when none
	OTPExpiresAt *time.Time     `json:"-"`
	Verified     bool           `gorm:"default:false" json:"verified"`
	IsOnline     bool           `gorm:"default:false" json:"is_online"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
