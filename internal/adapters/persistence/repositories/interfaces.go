package repositories

import (
	"context"
	"time"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/models"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
)

// AccountRepository defines account repository interface
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context, offset, limit int) ([]*models.Account, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ApplyLoginOutcome persists the lockout bookkeeping decided for one
	// login attempt. The update only applies while failed_attempts still
	// holds expectedAttempts, the value read before evaluating the attempt;
	// it returns false when a concurrent attempt changed it first.
	ApplyLoginOutcome(ctx context.Context, id string, expectedAttempts, attempts int, lockedUntil, lastLogin *time.Time) (bool, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	ResetLock(ctx context.Context, id string) error
	ReleaseExpiredLocks(ctx context.Context, olderThan time.Time) (int64, error)

	EnsureIndexes(ctx context.Context) error
}
