package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/middleware"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/routes"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/repositories"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/services"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/observability"

	_ "github.com/LordAhmad1/Clinic-Pro-sub000/docs" // Swagger docs
)

// @title Clinic Pro API
// @version 1.0
// @description Authentication and account security API for the Clinic Pro administration system
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clinic-pro.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.clinic-pro.example.com
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Structured logger and error monitoring
	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.AppMode)
	defer logger.Sync()

	if err := observability.InitSentry(cfg.Observability.SentryDSN, cfg.AppMode); err != nil {
		log.Printf("⚠️ Warning: Failed to initialize Sentry: %v", err)
	}
	defer observability.FlushSentry()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Ensure collection indexes (unique email, lockout sweep)
	accountRepo := repositories.NewAccountRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("❌ Failed to ensure indexes: %v", err)
	}

	// Seed default staff accounts (development only)
	if cfg.IsDev() && cfg.SeedAccounts {
		if err := config.NewSeeder(db).Run(ctx); err != nil {
			log.Printf("⚠️ Warning: Failed to seed accounts: %v", err)
		}
	}
	cancel()

	// Start scheduled security maintenance (expired lock sweep)
	maintenanceService := services.NewMaintenanceService(accountRepo, cfg, logger)
	if err := maintenanceService.Start(); err != nil {
		log.Fatalf("❌ Failed to start maintenance scheduler: %v", err)
	}
	defer maintenanceService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Clinic Pro API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, cfg and logger for dependency injection)
	routes.Setup(app, db, cfg, logger)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
