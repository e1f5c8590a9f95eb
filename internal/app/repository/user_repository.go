package repository

import (
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	SetOnline(id uint, online bool) error
	Deactivate(id uint) error
	ClearExpiredOTPs() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) SetOnline(id uint, online bool) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("is_online", online).Error; err != nil {
		logger.Error("Failed to update user online flag in database", err, map[string]interface{}{
			"user_id": id,
			"online":  online,
		})
		return err
	}
	return nil
}

// Deactivate soft-deletes the account and drops its active flags
func (r *userRepository) Deactivate(id uint) error {
	logger.Debug("Deactivating user in database", map[string]interface{}{
		"user_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", id).
			Updates(map[string]interface{}{"is_active": false, "is_online": false}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to deactivate user in database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	logger.Debug("User deactivated in database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// ClearExpiredOTPs blanks OTP fields whose expiry has passed
func (r *userRepository) ClearExpiredOTPs() (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("otp <> '' AND otp_expires_at IS NOT NULL AND otp_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{"otp": "", "otp_expires_at": nil})
	if result.Error != nil {
		logger.Error("Failed to clear expired OTPs in database", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
