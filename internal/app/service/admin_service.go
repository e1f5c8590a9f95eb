package service

import (
	"context"
	"errors"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrAdminNotFound = errors.New("admin not found")

type AdminService interface {
	Login(ctx context.Context, email, password string) (*model.Admin, *util.TokenPair, error)
	GetAdminByID(id uint) (*model.Admin, error)
	GetDefaultAdmin() (*model.Admin, error)
}

type adminService struct {
	adminRepo     repository.AdminRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AdminService {
	return &adminService{
		adminRepo:     adminRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Login authenticates a back-office operator. Admin tokens carry the
// admin role claim; there is no header-based identity path.
func (s *adminService) Login(ctx context.Context, email, password string) (*model.Admin, *util.TokenPair, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"email": email,
	})

	admin, err := s.adminRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(admin.PasswordHash, password) {
		logger.Warn("Admin login failed: wrong password", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	if !admin.IsActive {
		logger.Warn("Admin login refused: account disabled", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, nil, ErrAccountDisabled
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		logger.Error("Failed to record admin login time", err, map[string]interface{}{
			"admin_id": admin.ID,
		})
	}

	tokens, err := util.GenerateTokenPair(
		admin.ID, admin.Email, string(model.RoleAdmin),
		s.jwtSecret, s.accessExpiry, s.refreshExpiry,
	)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"admin_id": admin.ID,
		"email":    admin.Email,
	})
	return admin, tokens, nil
}

func (s *adminService) GetAdminByID(id uint) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// GetDefaultAdmin returns the operator identity that customer chat
// threads attach to
func (s *adminService) GetDefaultAdmin() (*model.Admin, error) {
	admin, err := s.adminRepo.FindFirst()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}
