package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/database"
	"github.com/hlefebvre/coliving-backend/internal/adminsignature"
	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/auth"
	"github.com/hlefebvre/coliving-backend/internal/booking"
	"github.com/hlefebvre/coliving-backend/internal/contact"
	"github.com/hlefebvre/coliving-backend/internal/contract"
	"github.com/hlefebvre/coliving-backend/internal/contracttemplate"
	"github.com/hlefebvre/coliving-backend/internal/dashboard"
	"github.com/hlefebvre/coliving-backend/internal/notification"
	"github.com/hlefebvre/coliving-backend/internal/payment"
	"github.com/hlefebvre/coliving-backend/internal/reports"
	"github.com/hlefebvre/coliving-backend/internal/room"
	"github.com/hlefebvre/coliving-backend/middleware"

	_ "github.com/hlefebvre/coliving-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Setup(r *gin.Engine, cfg *config.Config) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())     // Global rate limit per IP
	api.Use(middleware.AuditMiddleware()) // Capture client IP for audit trails

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)

		authGroup.GET("/me", middleware.AuthMiddleware(cfg, authSvc), authHandler.Me)
	}

	// ========== Modules ==========
	roomRepo := room.NewRepository(database.DB)
	roomSvc := room.NewService(roomRepo, auditSvc)
	roomHandler := room.NewHandler(roomSvc)

	paymentRepo := payment.NewRepository(database.DB)
	paymentSvc := payment.NewService(paymentRepo, cfg, auditSvc)
	paymentHandler := payment.NewHandler(paymentSvc)

	bookingRepo := booking.NewRepository(database.DB)
	bookingSvc := booking.NewService(bookingRepo, roomRepo, auditSvc)
	bookingHandler := booking.NewHandler(bookingSvc)

	contactRepo := contact.NewRepository(database.DB)
	contactSvc := contact.NewService(contactRepo, authRepo, auditSvc)
	contactHandler := contact.NewHandler(contactSvc)

	templateRepo := contracttemplate.NewRepository(database.DB)
	templateSvc := contracttemplate.NewService(templateRepo, auditSvc)
	templateHandler := contracttemplate.NewHandler(templateSvc)

	signatureRepo := adminsignature.NewRepository(database.DB)
	signatureSvc := adminsignature.NewService(signatureRepo, auditSvc)
	signatureHandler := adminsignature.NewHandler(signatureSvc)

	contractRepo := contract.NewRepository(database.DB)
	contractSvc := contract.NewService(contractRepo, bookingRepo, templateSvc, signatureSvc, cfg, auditSvc)
	contractHandler := contract.NewHandler(contractSvc)

	dashboardSvc := dashboard.NewService(database.DB)
	dashboardHandler := dashboard.NewHandler(dashboardSvc)

	reportsRepo := reports.NewRepository(database.DB)
	reportsExporter := reports.NewExporter()
	reportsSvc := reports.NewService(reportsRepo, reportsExporter, auditSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	notificationRepo := notification.NewRepository(database.DB)
	notificationSvc := notification.NewService(notificationRepo, authRepo)
	notificationHandler := notification.NewHandler(notificationSvc)

	// ========== Public (site vitrine) ==========
	api.GET("/rooms/public", roomHandler.ListPublicRooms)
	api.POST("/contact", contactHandler.SubmitContact)

	// Signing links are tokenized and mailed out, so they carry their own
	// stricter rate limit instead of authentication.
	signRoutes := api.Group("/contracts/sign")
	signRoutes.Use(middleware.SignLimiter())
	{
		signRoutes.GET("/:token", contractHandler.GetSigningView)
		signRoutes.POST("/:token", contractHandler.Sign)
	}

	// ========== Back office ==========
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	// Audit logs (admin only)
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	// User management (admin only)
	userRoutes := protected.Group("/users")
	userRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		userRoutes.GET("", authHandler.ListUsers)
		userRoutes.PATCH("/:id/status", authHandler.UpdateUserStatus)
	}

	// Rooms
	roomRoutes := protected.Group("/rooms")
	{
		roomRoutes.GET("", roomHandler.ListRooms)
		roomRoutes.GET("/:id", roomHandler.GetRoom)

		roomWrites := roomRoutes.Group("")
		roomWrites.Use(middleware.RequireWriteAccess())
		{
			roomWrites.POST("", roomHandler.CreateRoom)
			roomWrites.PUT("", roomHandler.BulkUpdateRooms)
			roomWrites.PUT("/:id", roomHandler.UpdateRoom)
			roomWrites.DELETE("", roomHandler.BulkDeleteRooms)
			roomWrites.DELETE("/:id", roomHandler.DeleteRoom)
		}
	}

	// Bookings
	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.GET("", bookingHandler.ListBookings)
		bookingRoutes.GET("/:id", bookingHandler.GetBooking)

		bookingWrites := bookingRoutes.Group("")
		bookingWrites.Use(middleware.RequireWriteAccess())
		{
			bookingWrites.POST("", bookingHandler.CreateBooking)
			bookingWrites.PUT("", bookingHandler.BulkUpdateBookings)
			bookingWrites.PUT("/:id", bookingHandler.UpdateBooking)
			bookingWrites.DELETE("", bookingHandler.BulkDeleteBookings)
			bookingWrites.DELETE("/:id", bookingHandler.DeleteBooking)
		}
	}

	// Payments
	paymentRoutes := protected.Group("/payments")
	{
		paymentRoutes.GET("", paymentHandler.ListPayments)
		paymentRoutes.GET("/:id", paymentHandler.GetPayment)

		paymentWrites := paymentRoutes.Group("")
		paymentWrites.Use(middleware.RequireWriteAccess())
		{
			paymentWrites.POST("", paymentHandler.CreatePayment)
			paymentWrites.PUT("/:id", paymentHandler.UpdatePayment)
			paymentWrites.DELETE("/:id", paymentHandler.DeletePayment)
			paymentWrites.POST("/:id/order", paymentHandler.StartOnlinePayment)
			paymentWrites.POST("/verify", paymentHandler.VerifyOnlinePayment)
		}
	}

	// Contact inbox
	contactRoutes := protected.Group("/contacts")
	{
		contactRoutes.GET("", contactHandler.ListContacts)
		contactRoutes.GET("/:id", contactHandler.GetContact)

		contactWrites := contactRoutes.Group("")
		contactWrites.Use(middleware.RequireWriteAccess())
		{
			contactWrites.PUT("/:id", contactHandler.UpdateContact)
			contactWrites.DELETE("/:id", contactHandler.DeleteContact)
		}
	}

	// Contract templates
	templateRoutes := protected.Group("/contract-templates")
	{
		templateRoutes.GET("", templateHandler.ListTemplates)
		templateRoutes.GET("/variables", templateHandler.GetVariables)
		templateRoutes.GET("/:id", templateHandler.GetTemplate)
		templateRoutes.POST("/preview", templateHandler.PreviewTemplate)

		templateWrites := templateRoutes.Group("")
		templateWrites.Use(middleware.RequireWriteAccess())
		{
			templateWrites.POST("", templateHandler.CreateTemplate)
			templateWrites.PUT("/:id", templateHandler.UpdateTemplate)
			templateWrites.DELETE("/:id", templateHandler.DeleteTemplate)
			templateWrites.POST("/:id/set-default", templateHandler.SetDefaultTemplate)
		}
	}

	// Admin signatures
	signatureRoutes := protected.Group("/admin-signatures")
	{
		signatureRoutes.GET("", signatureHandler.ListSignatures)
		signatureRoutes.GET("/:id", signatureHandler.GetSignature)

		signatureWrites := signatureRoutes.Group("")
		signatureWrites.Use(middleware.RequireWriteAccess())
		{
			signatureWrites.POST("", signatureHandler.CreateSignature)
			signatureWrites.PUT("/:id", signatureHandler.UpdateSignature)
			signatureWrites.DELETE("/:id", signatureHandler.DeleteSignature)
			signatureWrites.POST("/:id/set-default", signatureHandler.SetDefaultSignature)
		}
	}

	// Contracts
	contractRoutes := protected.Group("/contracts")
	{
		contractRoutes.GET("", contractHandler.ListContracts)
		contractRoutes.GET("/:id", contractHandler.GetContract)
		contractRoutes.GET("/:id/pdf", contractHandler.DownloadPDF)

		contractWrites := contractRoutes.Group("")
		contractWrites.Use(middleware.RequireWriteAccess())
		{
			contractWrites.POST("", contractHandler.CreateContract)
			contractWrites.PUT("/:id", contractHandler.UpdateContract)
			contractWrites.DELETE("/:id", contractHandler.DeleteContract)
			contractWrites.PUT("/:id/status", contractHandler.TransitionStatus)
			contractWrites.POST("/:id/send", contractHandler.SendForSignature)
		}
	}

	// Dashboard
	protected.GET("/dashboard", dashboardHandler.GetStats)

	// Reports (admin + manager)
	protected.GET("/reports",
		middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleManager),
		reportsHandler.Export)

	// Notifications
	notificationRoutes := protected.Group("/notifications")
	{
		notificationRoutes.GET("", notificationHandler.ListNotifications)
		notificationRoutes.PUT("/read-all", notificationHandler.MarkAllRead)
		notificationRoutes.PUT("/:id/read", notificationHandler.MarkRead)
		notificationRoutes.POST("/devices", notificationHandler.RegisterDevice)
		notificationRoutes.DELETE("/devices/:token", notificationHandler.UnregisterDevice)
	}
}
