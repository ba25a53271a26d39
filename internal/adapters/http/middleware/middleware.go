package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/audit"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/ratelimit"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/response"
)

// Setup configures all middlewares for the application
func Setup(app *fiber.App, cfg *config.Config) {
	// Recover middleware - catches panics
	app.Use(recover.New())

	// Gzip Compression middleware
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // fastest, fits API payloads
	}))

	// Security Headers middleware (Helmet)
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	// Rate Limiter middleware - General API (per IP, all routes)
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.GlobalMax,
		Expiration: time.Duration(cfg.RateLimit.GlobalWindowSecs) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests, please slow down")
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	}))

	// Logger middleware
	if cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	// CORS middleware
	if cfg.IsDev() {
		// Development: Allow all origins
		app.Use(cors.New(cors.Config{
			AllowOrigins:     "*",
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
			AllowCredentials: false, // Cannot be true with AllowOrigins: "*"
		}))
	} else {
		// Production: Restrict origins; credentials required for cookie auth
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.GetAllowedOrigins(),
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
			AllowCredentials: true,
		}))
	}
}

// AuthRateLimiter limits credential endpoints per source IP using a fixed
// window. Counting is independent of the global limiter tier; rejections go
// to the audit stream.
func AuthRateLimiter(rl *ratelimit.Limiter, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, retryAfter := rl.Allow(c.IP())
		if !ok {
			auditLog.RateLimited(rl.Scope(), c.IP(), c.IP())
			return response.TooManyRequests(c, "Too many authentication attempts, please wait before retrying",
				ratelimit.RetryAfterSeconds(retryAfter))
		}
		return c.Next()
	}
}

// AdminRateLimiter limits account administration endpoints per authenticated
// actor. Falls back to the source IP when no account is attached yet.
func AdminRateLimiter(rl *ratelimit.Limiter, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if accountID, ok := c.Locals("accountID").(string); ok && accountID != "" {
			key = key + ":" + accountID
		}

		ok, retryAfter := rl.Allow(key)
		if !ok {
			auditLog.RateLimited(rl.Scope(), key, c.IP())
			return response.TooManyRequests(c, "Too many administration requests, please wait before retrying",
				ratelimit.RetryAfterSeconds(retryAfter))
		}
		return c.Next()
	}
}

// CustomErrorHandler handles errors globally
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message)
}
