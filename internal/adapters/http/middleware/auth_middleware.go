package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/session"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/jwt"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/response"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Get token from cookie, then Authorization header
		accessToken := session.AccessToken(c)

		// 2. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 3. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 4. Set account info in context
		c.Locals("accountID", claims.Subject)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)
		c.Locals("verified", claims.Verified)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Check if account's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if domain.Role(role) == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// ManagerOnly middleware allows only the manager role
func ManagerOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleManager)
}

// VerifiedOnly blocks accounts whose verified flag is unset. Verification
// gates administrative operations, not plain login, so it only guards the
// account management routes.
func VerifiedOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if verified, ok := c.Locals("verified").(bool); !ok || !verified {
			return response.Forbidden(c, "Account is not verified")
		}
		return c.Next()
	}
}
