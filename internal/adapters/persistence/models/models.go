package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
)

// Account represents a document in the accounts collection
type Account struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"password_hash" json:"-"`
	Role           domain.Role        `bson:"role" json:"role"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	IsVerified     bool               `bson:"is_verified" json:"is_verified"`
	FailedAttempts int                `bson:"failed_attempts" json:"-"`
	LockedUntil    *time.Time         `bson:"locked_until" json:"-"`
	LastLogin      *time.Time         `bson:"last_login" json:"last_login"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

func (Account) CollectionName() string {
	return "accounts"
}

// IsLocked reports whether the account has an active lockout at the given time
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// AccountResponse DTO. Lockout bookkeeping is surfaced only on the admin
// endpoints, never in login or verify responses.
type AccountResponse struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	IsActive   bool        `json:"is_active"`
	IsVerified bool        `json:"is_verified"`
	LastLogin  *time.Time  `json:"last_login,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:         a.ID.Hex(),
		Email:      a.Email,
		Role:       a.Role,
		IsActive:   a.IsActive,
		IsVerified: a.IsVerified,
		LastLogin:  a.LastLogin,
		CreatedAt:  a.CreatedAt,
	}
}

// AccountAdminResponse DTO for the account administration endpoints,
// including the security bookkeeping fields
type AccountAdminResponse struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	IsActive       bool        `json:"is_active"`
	IsVerified     bool        `json:"is_verified"`
	FailedAttempts int         `json:"failed_attempts"`
	LockedUntil    *time.Time  `json:"locked_until,omitempty"`
	LastLogin      *time.Time  `json:"last_login,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (a *Account) ToAdminResponse() *AccountAdminResponse {
	return &AccountAdminResponse{
		ID:             a.ID.Hex(),
		Email:          a.Email,
		Role:           a.Role,
		IsActive:       a.IsActive,
		IsVerified:     a.IsVerified,
		FailedAttempts: a.FailedAttempts,
		LockedUntil:    a.LockedUntil,
		LastLogin:      a.LastLogin,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
