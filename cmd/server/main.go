package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/controller"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/router"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/scheduler"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/storage"
	ws "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/websocket"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/captcha"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/mailer"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/paystack"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/redis"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/sms"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Divine Grace Ventures Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it token revocation is disabled
	redisAvailable := false
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		redisAvailable = true
		defer redis.Close()
	}

	// Outbound integrations
	mail := mailer.New(cfg.SMTP)
	smsSender := sms.NewTermiiService(cfg.SMS)
	captchaVerifier := captcha.NewVerifier(cfg.Captcha.Secret)

	// Without a Paystack key checkout trusts references (dev mode)
	var gateway service.GatewayVerifier
	if cfg.Paystack.SecretKey != "" {
		client, err := paystack.NewClient(paystack.Config{
			SecretKey: cfg.Paystack.SecretKey,
			BaseURL:   cfg.Paystack.BaseURL,
		})
		if err != nil {
			logger.Fatal("Failed to initialize Paystack client", err)
		}
		gateway = client
	} else {
		logger.Warn("PAYSTACK_SECRET_KEY not set, payment verification disabled", nil)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	adminRepo := repository.NewAdminRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	paymentRepo := repository.NewPaymentRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())
	chatRepo := repository.NewChatRepository(db.GetDB())
	settingsRepo := repository.NewSettingsRepository(db.GetDB())

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	var blacklist func(ctx context.Context, token string, ttl time.Duration) error
	var resendThrottle func(ctx context.Context, email string, cooldown time.Duration) (bool, error)
	if redisAvailable {
		blacklist = redis.BlacklistToken
		resendThrottle = redis.ThrottleOTPResend
	}

	authService := service.NewAuthService(
		userRepo,
		mail,
		smsSender,
		captchaVerifier,
		blacklist,
		resendThrottle,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	adminService := service.NewAdminService(
		adminRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	notificationService := service.NewNotificationService(notificationRepo, settingsRepo, mail, smsSender)
	productService := service.NewProductService(productRepo, notificationService)
	cartService := service.NewCartService(cartRepo, productRepo, userRepo, notificationService)
	orderService := service.NewOrderService(orderRepo, paymentRepo, cartRepo, userRepo, notificationService, gateway, db.GetDB())
	paymentService := service.NewPaymentService(paymentRepo)
	chatService := service.NewChatService(chatRepo, adminRepo, userRepo, hub)
	settingsService := service.NewSettingsService(settingsRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg.JWT.AccessTokenExpiry)
	adminController := controller.NewAdminController(adminService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	paymentController := controller.NewPaymentController(paymentService)
	notificationController := controller.NewNotificationController(notificationService)
	chatController := controller.NewChatController(chatService, hub, cfg.CORS.AllowedOrigins)
	settingsController := controller.NewSettingsController(settingsService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, redisAvailable)

	// Background maintenance
	maintenance := scheduler.NewMaintenanceScheduler(orderService, userRepo)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}
	defer maintenance.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		adminController,
		productController,
		cartController,
		orderController,
		paymentController,
		notificationController,
		chatController,
		settingsController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
