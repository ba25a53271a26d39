package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/http/session"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/services"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/observability"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/response"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	transport   *session.Transport
	log         *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, transport *session.Transport, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		transport:   transport,
		log:         log,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents password change request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles staff login
// @Summary Login
// @Description Authenticate a staff account and return a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}

	result, err := h.authService.Login(c.Context(), input, c.IP())
	if err != nil {
		var locked *domain.AccountLockedError
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, "Email and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, domain.ErrAccountDeactivated):
			return response.Unauthorized(c, "Account is deactivated")
		case errors.As(err, &locked):
			return response.Unauthorized(c, lockedMessage(locked))
		default:
			return h.serverError(c, "Failed to login", err)
		}
	}

	h.transport.SetPair(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", result)
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a fresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := session.RefreshToken(c)

	result, err := h.authService.Refresh(c.Context(), refreshToken, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			h.transport.Clear(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, domain.ErrTokenInvalid):
			h.transport.Clear(c)
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, domain.ErrAuthentication):
			h.transport.Clear(c)
			return response.Unauthorized(c, "Authentication required, please login again")
		default:
			return h.serverError(c, "Failed to refresh token", err)
		}
	}

	h.transport.SetPair(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", result)
}

// Logout handles logout. It always succeeds: cookies are cleared whether or
// not the request carried a valid session.
// @Summary Logout
// @Description Clear the session cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := session.RefreshToken(c)
	if token == "" {
		token = session.AccessToken(c)
	}
	h.authService.Logout(token, c.IP())

	h.transport.Clear(c)

	return response.Success(c, "Logged out successfully", nil)
}

// VerifyRequest represents a token verification request body
type VerifyRequest struct {
	Token string `json:"token"`
}

// Verify checks an access token on behalf of a collaborating service. The
// token comes from the body; callers holding a session can omit it and the
// cookie or bearer header is used instead.
// @Summary Verify access token
// @Description Validate an access token and return the account it belongs to
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body VerifyRequest false "Token to verify"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err == nil && req.Token != "" {
		return h.verifyToken(c, req.Token)
	}
	return h.verifyToken(c, session.AccessToken(c))
}

func (h *AuthHandler) verifyToken(c *fiber.Ctx, token string) error {
	account, err := h.authService.Verify(c.Context(), token, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			return response.Unauthorized(c, "Access token expired")
		case errors.Is(err, domain.ErrTokenInvalid):
			return response.Unauthorized(c, "Invalid access token")
		case errors.Is(err, domain.ErrAuthentication):
			return response.Unauthorized(c, "Authentication required")
		default:
			return h.serverError(c, "Failed to verify token", err)
		}
	}

	return response.Success(c, "Token verified", fiber.Map{
		"account": account,
	})
}

// Me returns the current account info
// @Summary Get current account
// @Description Get the currently authenticated account
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	account, err := h.authService.GetAccountByID(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return h.serverError(c, "Failed to load account", err)
	}

	return response.Success(c, "Account retrieved successfully", fiber.Map{
		"account": account.ToResponse(),
	})
}

// ChangePassword changes the authenticated account's password
// @Summary Change password
// @Description Verify the current password and replace it with a new one
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password change data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Current and new password are required")
	}

	input := &services.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}

	if err := h.authService.ChangePassword(c.Context(), accountID, input, c.IP()); err != nil {
		switch {
		case errors.Is(err, domain.ErrPasswordMismatch):
			return response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters with a letter and a digit")
		case errors.Is(err, domain.ErrSamePassword):
			return response.BadRequest(c, "New password must differ from the current one")
		case errors.Is(err, domain.ErrAuthentication):
			return response.Unauthorized(c, "Unauthorized")
		default:
			return h.serverError(c, "Failed to change password", err)
		}
	}

	return response.Success(c, "Password changed successfully", nil)
}

// lockedMessage tells the caller how long the lock lasts, using the same
// clock the service rejected the attempt with. Rounds up so the hint never
// undershoots the actual expiry.
func lockedMessage(err *domain.AccountLockedError) string {
	mins := int((err.Remaining + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("Account temporarily locked, try again in %d minutes", mins)
}

// serverError logs the failure with full detail and returns a bare 500.
// Infrastructure errors are never disguised as credential errors.
func (h *AuthHandler) serverError(c *fiber.Ctx, msg string, err error) error {
	h.log.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	observability.CaptureError(err)
	return response.InternalServerError(c, msg)
}
