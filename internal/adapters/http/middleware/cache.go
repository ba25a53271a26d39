package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// NoStore disables response caching. Login, refresh and account responses
// carry tokens and personal data, so they must never land in a shared or
// browser cache.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}
