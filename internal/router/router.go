package router

import (
	"github.com/gin-gonic/gin"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/controller"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	adminController        *controller.AdminController
	productController      *controller.ProductController
	cartController         *controller.CartController
	orderController        *controller.OrderController
	paymentController      *controller.PaymentController
	notificationController *controller.NotificationController
	chatController         *controller.ChatController
	settingsController     *controller.SettingsController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	adminController *controller.AdminController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	paymentController *controller.PaymentController,
	notificationController *controller.NotificationController,
	chatController *controller.ChatController,
	settingsController *controller.SettingsController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		adminController:        adminController,
		productController:      productController,
		cartController:         cartController,
		orderController:        orderController,
		paymentController:      paymentController,
		notificationController: notificationController,
		chatController:         chatController,
		settingsController:     settingsController,
		uploadController:       uploadController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Divine Grace Ventures API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", r.authController.Signup)
			auth.POST("/login", r.authController.Login)
			auth.POST("/verify-otp", r.authController.VerifyOTP)
			auth.POST("/resend-otp", r.authController.ResendOTP)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/profile", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
			auth.DELETE("/me", r.authMiddleware.Authenticate(), r.authController.Deactivate)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.List)
			products.GET("/:id", r.productController.Get)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.Get)
			cart.POST("", r.cartController.Add)
			cart.PUT("/:id", r.cartController.Update)
			cart.DELETE("/:id", r.cartController.Remove)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.List)
			orders.GET("/:id", r.orderController.Get)
			orders.POST("/checkout", r.orderController.Checkout)
		}

		payments := v1.Group("/payments")
		payments.Use(r.authMiddleware.Authenticate())
		{
			payments.GET("", r.paymentController.List)
			payments.GET("/order/:order_id", r.paymentController.GetByOrder)
			payments.GET("/:reference", r.paymentController.Get)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.List)
			notifications.PUT("/read-all", r.notificationController.MarkAllRead)
			notifications.PUT("/:id/read", r.notificationController.MarkRead)
		}

		chat := v1.Group("/chat")
		chat.Use(r.authMiddleware.Authenticate())
		{
			chat.POST("/messages", r.chatController.Send)
			chat.GET("/thread", r.chatController.Thread)
			chat.GET("/ws", r.chatController.Connect)
		}

		settings := v1.Group("/settings")
		settings.Use(r.authMiddleware.Authenticate())
		{
			settings.GET("", r.settingsController.Get)
			settings.PUT("", r.settingsController.Update)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("", r.uploadController.Upload)
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/auth/login", r.adminController.Login)

			protected := admin.Group("")
			protected.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
			{
				protected.GET("/auth/me", r.adminController.Me)

				protected.POST("/products", r.productController.Create)
				protected.PUT("/products/:id", r.productController.Update)
				protected.DELETE("/products/:id", r.productController.Delete)

				protected.GET("/orders", r.orderController.ListAll)
				protected.GET("/orders/export", r.orderController.Export)
				protected.PUT("/orders/:id/status", r.orderController.UpdateStatus)

				protected.GET("/payments", r.paymentController.ListAll)

				protected.GET("/notifications", r.notificationController.ListAll)

				protected.GET("/chat/threads", r.chatController.Threads)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
