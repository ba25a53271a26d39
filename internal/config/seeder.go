package config

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/models"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/repositories"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	accounts repositories.AccountRepository
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *mongo.Database) *Seeder {
	return &Seeder{accounts: repositories.NewAccountRepository(db)}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDefaultAccounts(ctx); err != nil {
		log.Printf("⚠️ Account seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDefaultAccounts seeds default staff accounts
// This is for development/testing only
// In production, create accounts through a secure process
func (s *Seeder) seedDefaultAccounts(ctx context.Context) error {
	defaults := []struct {
		email    string
		password string
		role     domain.Role
		verified bool
	}{
		{"manager@clinic.local", "manager123", domain.RoleManager, true},
		{"doctor@clinic.local", "doctor12345", domain.RoleDoctor, false},
		{"secretary@clinic.local", "secretary123", domain.RoleSecretary, false},
	}

	for _, d := range defaults {
		exists, err := s.accounts.ExistsByEmail(ctx, d.email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := password.Hash(d.password)
		if err != nil {
			return err
		}

		account := &models.Account{
			Email:        d.email,
			PasswordHash: hash,
			Role:         d.role,
			IsActive:     true,
			IsVerified:   d.verified,
		}

		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}

		log.Printf("✅ Account created: %s (%s)", d.email, d.role)
	}

	return nil
}
