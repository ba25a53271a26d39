// Package session moves token pairs between the API and its callers:
// cookies for browsers, Authorization header or body for services.
package session

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names used for the browser session
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Transport writes and clears the session cookies. All parameters are
// explicit; nothing reads global state.
type Transport struct {
	accessMaxAge  int
	refreshMaxAge int
	refreshPath   string
	secure        bool
	sameSite      string
	domain        string
}

// Config for constructing a Transport
type Config struct {
	AccessTokenMins  int
	RefreshTokenDays int
	// RefreshPath scopes the refresh cookie to the refresh endpoint so the
	// long-lived token never travels with ordinary requests.
	RefreshPath string
	Secure      bool
	SameSite    string
	Domain      string
}

// New creates a session transport
func New(cfg Config) *Transport {
	refreshPath := cfg.RefreshPath
	if refreshPath == "" {
		refreshPath = "/"
	}

	return &Transport{
		accessMaxAge:  cfg.AccessTokenMins * 60,
		refreshMaxAge: cfg.RefreshTokenDays * 24 * 60 * 60,
		refreshPath:   refreshPath,
		secure:        cfg.Secure,
		sameSite:      cfg.SameSite,
		domain:        cfg.Domain,
	}
}

// SetPair writes both token cookies
func (t *Transport) SetPair(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   t.accessMaxAge,
		Secure:   t.secure,
		HTTPOnly: true,
		SameSite: t.sameSite,
		Domain:   t.domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    refreshToken,
		Path:     t.refreshPath,
		MaxAge:   t.refreshMaxAge,
		Secure:   t.secure,
		HTTPOnly: true,
		SameSite: t.sameSite,
		Domain:   t.domain,
	})
}

// Clear expires both cookies. It works regardless of whether the request
// carried a valid session.
func (t *Transport) Clear(c *fiber.Ctx) {
	t.expire(c, AccessCookie, "/")
	t.expire(c, RefreshCookie, t.refreshPath)
}

func (t *Transport) expire(c *fiber.Ctx, name, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   t.secure,
		HTTPOnly: true,
		SameSite: t.sameSite,
		Domain:   t.domain,
	})
}

// AccessToken reads the access token from the cookie, falling back to the
// Authorization bearer header for non-browser clients.
func AccessToken(c *fiber.Ctx) string {
	if token := c.Cookies(AccessCookie); token != "" {
		return token
	}

	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RefreshToken reads the refresh token from the cookie, falling back to the
// request body for non-browser clients.
func RefreshToken(c *fiber.Ctx) string {
	if token := c.Cookies(RefreshCookie); token != "" {
		return token
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err == nil && body.RefreshToken != "" {
		return body.RefreshToken
	}
	return ""
}
