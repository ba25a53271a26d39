package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/handlers"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/middleware"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/session"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/repositories"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/services"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/audit"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/ratelimit"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)

	// Initialize services
	auditLog := audit.NewLogger(log)
	authService := services.NewAuthService(accountRepo, cfg, auditLog)
	accountService := services.NewAccountService(accountRepo, auditLog)

	// Session cookie transport
	transport := session.New(session.Config{
		AccessTokenMins:  cfg.JWT.AccessTokenMins,
		RefreshTokenDays: cfg.JWT.RefreshTokenDays,
		RefreshPath:      "/api/v1/auth/refresh",
		Secure:           cfg.Cookie.Secure,
		SameSite:         cfg.Cookie.SameSite,
		Domain:           cfg.Cookie.Domain,
	})

	// Per-tier rate limiters (the global tier is set up in middleware.Setup)
	authLimiter := ratelimit.New("auth",
		cfg.RateLimit.AuthMax, time.Duration(cfg.RateLimit.AuthWindowSecs)*time.Second)
	adminLimiter := ratelimit.New("admin",
		cfg.RateLimit.AdminMax, time.Duration(cfg.RateLimit.AuthWindowSecs)*time.Second)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, transport, log)
	accountHandler := handlers.NewAccountHandler(accountService, log)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, accountHandler, authLimiter, adminLimiter, auditLog, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	authLimiter *ratelimit.Limiter,
	adminLimiter *ratelimit.Limiter,
	auditLog *audit.Logger,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.NoStore())
	setupAuthRoutes(authRoutes, authHandler, authLimiter, auditLog, cfg)

	// Account administration routes (verified managers only)
	accountRoutes := router.Group("/accounts")
	accountRoutes.Use(middleware.NoStore())
	accountRoutes.Use(middleware.AuthMiddleware(cfg))
	accountRoutes.Use(middleware.AdminRateLimiter(adminLimiter, auditLog))
	accountRoutes.Use(middleware.ManagerOnly())
	accountRoutes.Use(middleware.VerifiedOnly())
	setupAccountRoutes(accountRoutes, accountHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, rl *ratelimit.Limiter, auditLog *audit.Logger, cfg *config.Config) {
	// Public routes; login and refresh carry the strict credential tier
	router.Post("/login", middleware.AuthRateLimiter(rl, auditLog), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(rl, auditLog), handler.Refresh)
	router.Post("/logout", handler.Logout)
	router.Post("/verify", handler.Verify)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Put("/password", middleware.AuthMiddleware(cfg), handler.ChangePassword)
}

// setupAccountRoutes configures account administration routes
func setupAccountRoutes(router fiber.Router, handler *handlers.AccountHandler) {
	router.Get("/", handler.ListAccounts)
	router.Get("/:id", handler.GetAccount)
	router.Put("/:id/unlock", handler.UnlockAccount)
	router.Put("/:id/status", handler.SetAccountStatus)
	router.Put("/:id/role", handler.SetAccountRole)
}
