package model

import (
	"time"
)

// UserSettings is created lazily: a read for a user without a row returns
// the defaults without persisting, a write persists the merged values.
type UserSettings struct {
	UserID             uint      `gorm:"primarykey" json:"user_id"`
	EmailNotifications bool      `gorm:"default:true" json:"email_notifications"`
	SMSNotifications   bool      `gorm:"default:true" json:"sms_notifications"`
	DarkMode           bool      `gorm:"default:false" json:"dark_mode"`
	UpdatedAt          time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultUserSettings returns the fixed defaults applied when no row exists
func DefaultUserSettings(userID uint) UserSettings {
	return UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		SMSNotifications:   true,
		DarkMode:           false,
	}
}
