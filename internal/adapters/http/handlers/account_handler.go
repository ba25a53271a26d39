package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/services"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/observability"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/pagination"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/response"
)

// AccountHandler handles account administration endpoints
type AccountHandler struct {
	accountService *services.AccountService
	log            *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		log:            log,
	}
}

// ListAccounts handles listing all accounts (Manager only)
// @Summary List all accounts
// @Description Get a paginated list of staff accounts (Manager only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	params := pagination.FromQuery(c)

	accounts, total, err := h.accountService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return h.serverError(c, "Failed to list accounts", err)
	}

	return response.Success(c, "Accounts retrieved successfully",
		pagination.NewPage(accounts, params, total))
}

// GetAccount handles getting an account by ID (Manager only)
// @Summary Get account by ID
// @Description Get a specific staff account (Manager only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.accountService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return h.serverError(c, "Failed to get account", err)
	}

	return response.Success(c, "Account retrieved successfully", fiber.Map{
		"account": account,
	})
}

// UnlockAccount handles releasing an account lockout (Manager only)
// @Summary Unlock account
// @Description Clear the failed attempt counter and any active lock (Manager only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id}/unlock [put]
func (h *AccountHandler) UnlockAccount(c *fiber.Ctx) error {
	actorID, _ := c.Locals("accountID").(string)

	account, err := h.accountService.Unlock(c.Context(), actorID, c.Params("id"), c.IP())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return h.serverError(c, "Failed to unlock account", err)
	}

	return response.Success(c, "Account unlocked successfully", fiber.Map{
		"account": account,
	})
}

// SetStatusRequest represents account status request body
type SetStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetAccountStatus handles activating or deactivating an account (Manager only)
// @Summary Set account status
// @Description Activate or deactivate a staff account (Manager only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param body body SetStatusRequest true "Status data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id}/status [put]
func (h *AccountHandler) SetAccountStatus(c *fiber.Ctx) error {
	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.IsActive == nil {
		return response.BadRequest(c, "is_active is required")
	}

	actorID, _ := c.Locals("accountID").(string)

	account, err := h.accountService.SetActive(c.Context(), actorID, c.Params("id"), *req.IsActive, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, domain.ErrOwnDeactivation):
			return response.BadRequest(c, "Cannot deactivate your own account")
		default:
			return h.serverError(c, "Failed to update account status", err)
		}
	}

	return response.Success(c, "Account status updated successfully", fiber.Map{
		"account": account,
	})
}

// SetRoleRequest represents account role request body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetAccountRole handles changing an account's role (Manager only)
// @Summary Set account role
// @Description Change a staff account's role (Manager only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param body body SetRoleRequest true "Role data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id}/role [put]
func (h *AccountHandler) SetAccountRole(c *fiber.Ctx) error {
	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actorID, _ := c.Locals("accountID").(string)

	account, err := h.accountService.SetRole(c.Context(), actorID, c.Params("id"), domain.Role(req.Role), c.IP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role. Must be manager, doctor, secretary, or nurse")
		case errors.Is(err, domain.ErrOwnRoleChange):
			return response.BadRequest(c, "Cannot change your own role")
		default:
			return h.serverError(c, "Failed to set account role", err)
		}
	}

	return response.Success(c, "Account role updated successfully", fiber.Map{
		"account": account,
	})
}

func (h *AccountHandler) serverError(c *fiber.Ctx, msg string, err error) error {
	h.log.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	observability.CaptureError(err)
	return response.InternalServerError(c, msg)
}
