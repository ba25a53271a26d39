package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/repositories"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/observability"
)

// MaintenanceService runs scheduled security housekeeping
type MaintenanceService struct {
	accountRepo repositories.AccountRepository
	cfg         *config.Config
	log         *zap.Logger
	cron        *cron.Cron
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(accountRepo repositories.AccountRepository, cfg *config.Config, log *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		accountRepo: accountRepo,
		cfg:         cfg,
		log:         log.Named("maintenance"),
		cron:        cron.New(),
	}
}

// Start schedules the maintenance jobs
func (s *MaintenanceService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Maintenance.LockSweepSchedule, s.SweepExpiredLocks)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("maintenance scheduler started",
		zap.String("lock_sweep_schedule", s.cfg.Maintenance.LockSweepSchedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("maintenance scheduler stopped")
}

// SweepExpiredLocks clears locks whose expiry passed more than the grace
// period ago and resets their counters. Functionally a bulk admin unlock for
// accounts nobody logged back into; active locks are never touched.
func (s *MaintenanceService) SweepExpiredLocks() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Mongo.TimeoutSeconds)*time.Second)
	defer cancel()

	olderThan := time.Now().Add(-time.Duration(s.cfg.Maintenance.LockSweepGraceHours) * time.Hour)

	released, err := s.accountRepo.ReleaseExpiredLocks(ctx, olderThan)
	if err != nil {
		s.log.Error("lock sweep failed", zap.Error(err))
		observability.CaptureError(err)
		return
	}

	if released > 0 {
		s.log.Info("released expired locks", zap.Int64("accounts", released))
	}
}
