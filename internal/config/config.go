package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode       string
	Port          string
	Mongo         MongoConfig
	JWT           JWTConfig
	Cookie        CookieConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
	Maintenance   MaintenanceConfig
	Observability ObservabilityConfig
	SeedAccounts  bool
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI            string
	Database       string
	TimeoutSeconds int
	MaxPoolSize    uint64
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
	Issuer           string
	Audience         string
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// SecurityConfig holds the login lockout policy parameters
type SecurityConfig struct {
	MaxLoginAttempts int
	LockoutMinutes   int
}

// RateLimitConfig holds the rate limiter tiers
type RateLimitConfig struct {
	GlobalMax        int
	GlobalWindowSecs int
	AuthMax          int
	AuthWindowSecs   int
	AdminMax         int
}

// MaintenanceConfig holds the scheduled security maintenance settings
type MaintenanceConfig struct {
	LockSweepSchedule   string
	LockSweepGraceHours int
}

// ObservabilityConfig holds logging and error monitoring settings
type ObservabilityConfig struct {
	SentryDSN string
	LogLevel  string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	seedAccounts, _ := strconv.ParseBool(getEnv("SEED_DEFAULT_ACCOUNTS", "true"))

	// Build config based on APP_MODE
	config := &Config{
		AppMode:       appMode,
		Port:          getEnv("PORT", "3000"),
		Mongo:         loadMongoConfig(appMode),
		JWT:           loadJWTConfig(appMode),
		Cookie:        loadCookieConfig(appMode),
		Security:      loadSecurityConfig(),
		RateLimit:     loadRateLimitConfig(),
		Maintenance:   loadMaintenanceConfig(),
		Observability: loadObservabilityConfig(),
		SeedAccounts:  seedAccounts,
	}

	// Signing secrets have no safe fallback outside development
	if config.IsProd() {
		if config.JWT.AccessSecret == "" || config.JWT.RefreshSecret == "" {
			return nil, fmt.Errorf("production mode requires PROD_JWT_ACCESS_SECRET and PROD_JWT_REFRESH_SECRET")
		}
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadMongoConfig loads MongoDB config based on mode
func loadMongoConfig(mode string) MongoConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	timeout, _ := strconv.Atoi(getEnv("MONGO_TIMEOUT_SECONDS", "10"))
	poolSize, _ := strconv.ParseUint(getEnv("MONGO_MAX_POOL_SIZE", "100"), 10, 64)

	return MongoConfig{
		URI:            getEnv(prefix+"MONGO_URI", "mongodb://localhost:27017"),
		Database:       getEnv(prefix+"MONGO_DB", "clinic_pro"),
		TimeoutSeconds: timeout,
		MaxPoolSize:    poolSize,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	accessDefault := "dev_access_secret"
	refreshDefault := "dev_refresh_secret"
	if mode == "prod" {
		prefix = "PROD_"
		accessDefault = ""
		refreshDefault = ""
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		AccessSecret:     getEnv(prefix+"JWT_ACCESS_SECRET", accessDefault),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", refreshDefault),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
		Issuer:           getEnv("JWT_ISSUER", "clinic-pro-api"),
		Audience:         getEnv("JWT_AUDIENCE", "clinic-pro-client"),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	secureDefault := "false"
	if mode == "prod" {
		prefix = "PROD_"
		secureDefault = "true"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", secureDefault))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "Strict"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadSecurityConfig loads the lockout policy parameters
func loadSecurityConfig() SecurityConfig {
	maxAttempts, _ := strconv.Atoi(getEnv("MAX_LOGIN_ATTEMPTS", "5"))
	lockoutMins, _ := strconv.Atoi(getEnv("LOCKOUT_MINUTES", "15"))

	return SecurityConfig{
		MaxLoginAttempts: maxAttempts,
		LockoutMinutes:   lockoutMins,
	}
}

// loadRateLimitConfig loads the rate limiter tiers
func loadRateLimitConfig() RateLimitConfig {
	globalMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	globalWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	authMax, _ := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_MAX", "5"))
	authWindow, _ := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_WINDOW_SECONDS", "60"))
	adminMax, _ := strconv.Atoi(getEnv("ADMIN_RATE_LIMIT_MAX", "30"))

	return RateLimitConfig{
		GlobalMax:        globalMax,
		GlobalWindowSecs: globalWindow,
		AuthMax:          authMax,
		AuthWindowSecs:   authWindow,
		AdminMax:         adminMax,
	}
}

// loadMaintenanceConfig loads the scheduled maintenance settings
func loadMaintenanceConfig() MaintenanceConfig {
	graceHours, _ := strconv.Atoi(getEnv("LOCK_SWEEP_GRACE_HOURS", "24"))

	return MaintenanceConfig{
		LockSweepSchedule:   getEnv("LOCK_SWEEP_SCHEDULE", "0 3 * * *"),
		LockSweepGraceHours: graceHours,
	}
}

// loadObservabilityConfig loads logging and monitoring settings
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://app.clinic-pro.example.com"
	}
	return origins
}
