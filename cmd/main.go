package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/database"
	"github.com/hlefebvre/coliving-backend/internal/adminsignature"
	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/auth"
	"github.com/hlefebvre/coliving-backend/internal/booking"
	"github.com/hlefebvre/coliving-backend/internal/contact"
	"github.com/hlefebvre/coliving-backend/internal/contract"
	"github.com/hlefebvre/coliving-backend/internal/contracttemplate"
	"github.com/hlefebvre/coliving-backend/internal/notification"
	"github.com/hlefebvre/coliving-backend/internal/payment"
	"github.com/hlefebvre/coliving-backend/internal/room"
	"github.com/hlefebvre/coliving-backend/routes"
	"github.com/hlefebvre/coliving-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis
	if err := utils.InitRedis(cfg); err != nil {
		log.Fatalf("❌ Redis init failed: %v", err)
	}

	// Init Kafka
	utils.InitializeKafka(cfg)

	// Init Firebase (optional, push notifications only)
	log.Println("🔄 Initializing Firebase...")
	if err := utils.InitFirebase(); err != nil {
		log.Printf("⚠️ Firebase initialization failed: %v", err)
		log.Println("ℹ️ Continuing without Firebase (push notifications will be disabled)")
	} else if utils.IsFCMEnabled() {
		log.Println("✅ Firebase and FCM initialized successfully")
	} else {
		log.Println("⚠️ Firebase initialized but FCM client unavailable")
	}

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&auditlog.AuditLog{},
		&room.Room{},
		&booking.Booking{},
		&payment.Payment{},
		&contact.Contact{},
		&contracttemplate.ContractTemplate{},
		&adminsignature.AdminSignature{},
		&contract.Contract{},
		&contract.ContractSignature{},
		&notification.Notification{},
		&notification.DeviceToken{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	// Seed roles & default admin
	if err := auth.SeedUserRoles(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed roles: %v", err))
	}
	if err := auth.SeedAdminUser(db, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin user: %v", err))
	}

	// Contract PDFs land under the upload directory
	if err := os.MkdirAll(filepath.Join(cfg.UploadDir, "contracts"), os.ModePerm); err != nil {
		panic(fmt.Sprintf("❌ Failed to create upload directory: %v", err))
	}

	// Background workers
	authRepo := auth.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	notificationSvc := notification.NewService(notificationRepo, authRepo)
	go notification.StartContractEventConsumer(context.Background(), cfg, notificationSvc)

	go expireStaleContracts(cfg, db)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg)

	fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
	fmt.Printf("📁 Upload directory: %s\n", cfg.UploadDir)
	if utils.IsFCMEnabled() {
		fmt.Println("✅ Firebase Cloud Messaging enabled")
	} else {
		fmt.Println("ℹ️ Firebase Cloud Messaging disabled")
		if err := utils.GetInitError(); err != nil {
			fmt.Printf("   Reason: %v\n", err)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
}

// expireStaleContracts sweeps SENT contracts whose signing window has lapsed.
// Runs hourly for the life of the process.
func expireStaleContracts(cfg *config.Config, db *gorm.DB) {
	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)

	contractRepo := contract.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	templateRepo := contracttemplate.NewRepository(db)
	templateSvc := contracttemplate.NewService(templateRepo, auditSvc)
	signatureSvc := adminsignature.NewService(adminsignature.NewRepository(db), auditSvc)
	contractSvc := contract.NewService(contractRepo, bookingRepo, templateSvc, signatureSvc, cfg, auditSvc)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		n, err := contractSvc.ExpireStaleContracts(context.Background())
		if err != nil {
			log.Printf("⚠️ Contract expiry sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("ℹ️ Expired %d stale contract(s)", n)
		}
	}
}
