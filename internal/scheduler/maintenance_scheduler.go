package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
)

// stalePendingAge is how long an unpaid order may sit in pending
// before the sweep marks it failed.
const stalePendingAge = 24 * time.Hour

// MaintenanceScheduler runs periodic cleanup: failing stale pending
// orders and purging expired verification codes.
type MaintenanceScheduler struct {
	cron         *cron.Cron
	orderService service.OrderService
	userRepo     repository.UserRepository
}

func NewMaintenanceScheduler(orderService service.OrderService, userRepo repository.UserRepository) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:         cron.New(),
		orderService: orderService,
		userRepo:     userRepo,
	}
}

// Start registers the hourly jobs and starts the cron loop.
func (s *MaintenanceScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		logger.Info("Starting stale pending order sweep", nil)

		count, err := s.orderService.FailStalePending(time.Now().Add(-stalePendingAge))
		if err != nil {
			logger.Error("Stale pending order sweep failed", err)
			return
		}

		logger.Info("Stale pending order sweep finished", map[string]interface{}{
			"failed_orders": count,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for stale order sweep", err)
		return err
	}

	_, err = s.cron.AddFunc("30 * * * *", func() {
		logger.Info("Starting expired OTP cleanup", nil)

		count, err := s.userRepo.ClearExpiredOTPs()
		if err != nil {
			logger.Error("Expired OTP cleanup failed", err)
			return
		}

		logger.Info("Expired OTP cleanup finished", map[string]interface{}{
			"cleared": count,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for OTP cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started (hourly jobs)", nil)

	return nil
}

// Stop halts the cron loop.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	s.cron.Stop()
	logger.Info("Maintenance scheduler stopped", nil)
}
