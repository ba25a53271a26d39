package domain

import (
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrValidation     = errors.New("validation error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrAuthentication     = errors.New("authentication required")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Account errors
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrPasswordMismatch = errors.New("current password is incorrect")
	ErrWeakPassword     = errors.New("password does not meet requirements")
	ErrSamePassword     = errors.New("new password must differ from the current one")
	ErrInvalidRole      = errors.New("invalid role")
	ErrOwnRoleChange    = errors.New("cannot change own role")
	ErrOwnDeactivation  = errors.New("cannot deactivate own account")
)

// AccountLockedError reports a login rejected by an active lockout.
// Until is when the lock expires; Remaining is how long that is from the
// clock the rejecting attempt was evaluated against.
type AccountLockedError struct {
	Until     time.Time
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return "account temporarily locked until " + e.Until.Format(time.RFC3339)
}

// NewAccountLockedError builds a lockout error for the given expiry as seen
// at now
func NewAccountLockedError(until, now time.Time) *AccountLockedError {
	return &AccountLockedError{Until: until, Remaining: until.Sub(now)}
}
