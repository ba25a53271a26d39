package services

import (
	"context"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/models"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/repositories"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/audit"
)

// AccountService handles account administration business logic
type AccountService struct {
	accountRepo repositories.AccountRepository
	audit       *audit.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo repositories.AccountRepository, auditLog *audit.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		audit:       auditLog,
	}
}

// List lists accounts with pagination
func (s *AccountService) List(ctx context.Context, offset, limit int) ([]*models.AccountAdminResponse, int64, error) {
	accounts, total, err := s.accountRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.AccountAdminResponse, len(accounts))
	for i, account := range accounts {
		responses[i] = account.ToAdminResponse()
	}

	return responses, total, nil
}

// GetByID gets an account by ID
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.AccountAdminResponse, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.ToAdminResponse(), nil
}

// Unlock clears the failed attempt counter and any active lock. This is the
// administrative reset; it does not wait for the lock to expire.
func (s *AccountService) Unlock(ctx context.Context, actorID, id, sourceIP string) (*models.AccountAdminResponse, error) {
	if err := s.accountRepo.ResetLock(ctx, id); err != nil {
		return nil, err
	}

	s.audit.Admin(actorID, "unlock", id, sourceIP)

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.ToAdminResponse(), nil
}

// SetActive activates or deactivates an account. Deactivation is the
// revocation lever for stateless sessions: refresh and verify reject
// deactivated accounts on their next call.
func (s *AccountService) SetActive(ctx context.Context, actorID, id string, active bool, sourceIP string) (*models.AccountAdminResponse, error) {
	// Managers cannot lock themselves out
	if actorID == id && !active {
		return nil, domain.ErrOwnDeactivation
	}

	if err := s.accountRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}

	action := "activate"
	if !active {
		action = "deactivate"
	}
	s.audit.Admin(actorID, action, id, sourceIP)

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.ToAdminResponse(), nil
}

// SetRole changes an account's role
func (s *AccountService) SetRole(ctx context.Context, actorID, id string, role domain.Role, sourceIP string) (*models.AccountAdminResponse, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if actorID == id {
		return nil, domain.ErrOwnRoleChange
	}

	if err := s.accountRepo.SetRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.audit.Admin(actorID, "set_role:"+string(role), id, sourceIP)

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.ToAdminResponse(), nil
}
