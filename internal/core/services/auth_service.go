package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/models"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/repositories"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/audit"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/jwt"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/password"
)

// lockoutApplyRetries bounds how often a login attempt re-reads and
// re-applies its lockout decision after losing a write race.
const lockoutApplyRetries = 3

// AuthService handles authentication business logic
type AuthService struct {
	accountRepo repositories.AccountRepository
	policy      LockoutPolicy
	cfg         *config.Config
	audit       *audit.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(accountRepo repositories.AccountRepository, cfg *config.Config, auditLog *audit.Logger) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		policy: NewLockoutPolicy(
			cfg.Security.MaxLoginAttempts,
			time.Duration(cfg.Security.LockoutMinutes)*time.Minute,
		),
		cfg:   cfg,
		audit: auditLog,
		now:   time.Now,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput represents password change input
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Account      *models.AccountResponse `json:"account"`
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
}

// Login authenticates a staff account. Every terminal outcome is written to
// the audit stream with the caller's source IP.
func (s *AuthService) Login(ctx context.Context, input *LoginInput, sourceIP string) (*AuthResponse, error) {
	// 1. Validate input before touching storage
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		s.audit.Login(email, audit.OutcomeValidationFailed, sourceIP)
		return nil, domain.ErrValidation
	}

	// 2. Find account. Unknown emails burn a hash comparison so their
	//    timing matches a real verification.
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			password.CompareDummy()
			s.audit.Login(email, audit.OutcomeInvalidCredentials, sourceIP)
			return nil, domain.ErrInvalidCredentials
		}
		s.audit.Login(email, audit.OutcomeServerError, sourceIP)
		return nil, err
	}

	// 3. Deactivated accounts never reach the hasher
	if !account.IsActive {
		s.audit.Login(email, audit.OutcomeDeactivated, sourceIP)
		return nil, domain.ErrAccountDeactivated
	}

	// 4. An active lock rejects the attempt before password verification
	now := s.now()
	if account.IsLocked(now) {
		s.audit.Login(email, audit.OutcomeLocked, sourceIP)
		return nil, domain.NewAccountLockedError(*account.LockedUntil, now)
	}

	// 5. Verify credentials once; the result is a pure input to the policy
	valid := password.Verify(input.Password, account.PasswordHash)

	// 6. Decide the next lockout state and persist it conditionally. When a
	//    concurrent attempt moved the counter first, re-read and re-decide,
	//    so no increment is lost and no stale reset is written.
	var decision LockoutDecision
	applied := false
	for i := 0; i <= lockoutApplyRetries && !applied; i++ {
		if i > 0 {
			account, err = s.accountRepo.GetByID(ctx, account.ID.Hex())
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					// Account deleted between our read and write; same
					// caller-visible outcome as an unknown email.
					s.audit.Login(email, audit.OutcomeInvalidCredentials, sourceIP)
					return nil, domain.ErrInvalidCredentials
				}
				s.audit.Login(email, audit.OutcomeServerError, sourceIP)
				return nil, err
			}
		}

		decision = s.policy.Evaluate(account.FailedAttempts, account.LockedUntil, now, valid)
		if decision.Outcome == AttemptLocked {
			// A concurrent attempt locked the account between our read
			// and write.
			s.audit.Login(email, audit.OutcomeLocked, sourceIP)
			return nil, domain.NewAccountLockedError(*decision.LockedUntil, now)
		}

		var lastLogin *time.Time
		if decision.Outcome == AttemptSuccess {
			lastLogin = &now
		}

		applied, err = s.accountRepo.ApplyLoginOutcome(
			ctx,
			account.ID.Hex(),
			account.FailedAttempts,
			decision.FailedAttempts,
			decision.LockedUntil,
			lastLogin,
		)
		if err != nil {
			s.audit.Login(email, audit.OutcomeServerError, sourceIP)
			return nil, err
		}
	}
	if !applied {
		// Fail closed: access is never granted without the persisted reset
		s.audit.Login(email, audit.OutcomeServerError, sourceIP)
		return nil, domain.ErrInternalServer
	}

	// 7. Report the persisted outcome. The caller sees the state this
	//    attempt produced, including a lock it just created.
	switch decision.Outcome {
	case AttemptLockedNow:
		s.audit.Login(email, audit.OutcomeLockedNow, sourceIP)
		return nil, domain.NewAccountLockedError(*decision.LockedUntil, now)
	case AttemptInvalid:
		s.audit.Login(email, audit.OutcomeInvalidCredentials, sourceIP)
		return nil, domain.ErrInvalidCredentials
	}

	// 8. Mint tokens only after the reset is durable
	tokens, err := s.generateTokens(account)
	if err != nil {
		s.audit.Login(email, audit.OutcomeServerError, sourceIP)
		return nil, err
	}

	account.FailedAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &now

	s.audit.Login(email, audit.OutcomeSuccess, sourceIP)

	return &AuthResponse{
		Account:      account.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The account's
// live state is re-checked, so deactivation or a lock applied after issuance
// cuts the session off here. Rotation is stateless: a previously issued
// refresh token stays cryptographically valid until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, sourceIP string) (*AuthResponse, error) {
	// 1. No token, no session
	if refreshToken == "" {
		s.audit.Token("refresh", "", audit.OutcomeTokenInvalid, sourceIP)
		return nil, domain.ErrAuthentication
	}

	// 2. Validate signature and claims against the refresh secret
	claims, err := jwt.ValidateRefreshToken(
		refreshToken,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.Audience,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.audit.Token("refresh", "", audit.OutcomeTokenExpired, sourceIP)
			return nil, domain.ErrTokenExpired
		}
		s.audit.Token("refresh", "", audit.OutcomeTokenInvalid, sourceIP)
		return nil, domain.ErrTokenInvalid
	}

	// 3. Re-check live account state; a token never outlives it
	account, err := s.accountRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.audit.Token("refresh", claims.Subject, audit.OutcomeTokenInvalid, sourceIP)
			return nil, domain.ErrAuthentication
		}
		s.audit.Token("refresh", claims.Subject, audit.OutcomeServerError, sourceIP)
		return nil, err
	}
	if !account.IsActive {
		s.audit.Token("refresh", claims.Subject, audit.OutcomeDeactivated, sourceIP)
		return nil, domain.ErrAuthentication
	}
	if account.IsLocked(s.now()) {
		s.audit.Token("refresh", claims.Subject, audit.OutcomeLocked, sourceIP)
		return nil, domain.ErrAuthentication
	}

	// 4. Mint a fresh pair
	tokens, err := s.generateTokens(account)
	if err != nil {
		s.audit.Token("refresh", claims.Subject, audit.OutcomeServerError, sourceIP)
		return nil, err
	}

	s.audit.Token("refresh", claims.Subject, audit.OutcomeSuccess, sourceIP)

	return &AuthResponse{
		Account:      account.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout records the logout. Tokens are stateless, so there is nothing to
// revoke server-side; the transport clears the cookies. Never fails.
func (s *AuthService) Logout(token, sourceIP string) {
	s.audit.Token("logout", jwt.PeekSubject(token), audit.OutcomeSuccess, sourceIP)
}

// Verify checks an access token for a collaborating service and returns the
// account it belongs to. A lock does not invalidate already-issued access
// tokens; deactivation does.
func (s *AuthService) Verify(ctx context.Context, accessToken, sourceIP string) (*models.AccountResponse, error) {
	// 1. No token, no identity
	if accessToken == "" {
		s.audit.Token("verify", "", audit.OutcomeTokenInvalid, sourceIP)
		return nil, domain.ErrAuthentication
	}

	// 2. Validate signature and claims against the access secret
	claims, err := jwt.ValidateAccessToken(
		accessToken,
		s.cfg.JWT.AccessSecret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.Audience,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.audit.Token("verify", "", audit.OutcomeTokenExpired, sourceIP)
			return nil, domain.ErrTokenExpired
		}
		s.audit.Token("verify", "", audit.OutcomeTokenInvalid, sourceIP)
		return nil, domain.ErrTokenInvalid
	}

	// 3. The account must still exist and be active
	account, err := s.accountRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.audit.Token("verify", claims.Subject, audit.OutcomeTokenInvalid, sourceIP)
			return nil, domain.ErrAuthentication
		}
		s.audit.Token("verify", claims.Subject, audit.OutcomeServerError, sourceIP)
		return nil, err
	}
	if !account.IsActive {
		s.audit.Token("verify", claims.Subject, audit.OutcomeDeactivated, sourceIP)
		return nil, domain.ErrAuthentication
	}

	s.audit.Token("verify", claims.Subject, audit.OutcomeSuccess, sourceIP)
	return account.ToResponse(), nil
}

// ChangePassword verifies the current password and stores a new hash.
// Lockout bookkeeping is untouched.
func (s *AuthService) ChangePassword(ctx context.Context, accountID string, input *ChangePasswordInput, sourceIP string) error {
	// 1. Fetch the authenticated account
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.audit.PasswordChange(accountID, audit.OutcomeTokenInvalid, sourceIP)
			return domain.ErrAuthentication
		}
		s.audit.PasswordChange(accountID, audit.OutcomeServerError, sourceIP)
		return err
	}

	// 2. Re-verify the current password
	if !password.Verify(input.CurrentPassword, account.PasswordHash) {
		s.audit.PasswordChange(accountID, audit.OutcomeInvalidCredentials, sourceIP)
		return domain.ErrPasswordMismatch
	}

	// 3. Validate the new password
	if !password.Validate(input.NewPassword) {
		s.audit.PasswordChange(accountID, audit.OutcomeValidationFailed, sourceIP)
		return domain.ErrWeakPassword
	}
	if input.NewPassword == input.CurrentPassword {
		s.audit.PasswordChange(accountID, audit.OutcomeValidationFailed, sourceIP)
		return domain.ErrSamePassword
	}

	// 4. Hash and persist
	hash, err := password.Hash(input.NewPassword)
	if err != nil {
		s.audit.PasswordChange(accountID, audit.OutcomeServerError, sourceIP)
		return err
	}
	if err := s.accountRepo.UpdatePassword(ctx, accountID, hash); err != nil {
		s.audit.PasswordChange(accountID, audit.OutcomeServerError, sourceIP)
		return err
	}

	s.audit.PasswordChange(accountID, audit.OutcomeSuccess, sourceIP)
	return nil
}

// GetAccountByID gets an account by ID
func (s *AuthService) GetAccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(account *models.Account) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		account.ID.Hex(),
		account.Email,
		string(account.Role),
		account.IsVerified,
		s.cfg.JWT.AccessSecret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.Audience,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		account.ID.Hex(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.Audience,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
