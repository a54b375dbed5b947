package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"licentia-hq/licentia/pkg/catalog/store"
	"licentia-hq/licentia/pkg/config"
)

// Scheduler runs periodic database maintenance against the catalogue
// store: WAL checkpoints to bound the write-ahead log, and VACUUM runs to
// reclaim space after deletions. Schedules are cron expressions; an empty
// expression disables that job.
type Scheduler struct {
	store   *store.Store
	cfg     config.MaintenanceConfig
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a maintenance scheduler for the store.
func NewScheduler(st *store.Store, cfg config.MaintenanceConfig) *Scheduler {
	return &Scheduler{
		store:  st,
		cfg:    cfg,
		cron:   cron.New(),
		logger: slog.Default().With("component", "maintenance"),
	}
}

// Start schedules the configured jobs and begins running them. It returns
// an error for an invalid cron expression; with both schedules empty it
// does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.CheckpointSchedule == "" && s.cfg.VacuumSchedule == "" {
		s.logger.Info("no maintenance schedules configured, scheduler idle")
		return nil
	}

	if s.cfg.CheckpointSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.CheckpointSchedule, func() { s.runCheckpoint(ctx) }); err != nil {
			return fmt.Errorf("invalid checkpoint schedule %q: %w", s.cfg.CheckpointSchedule, err)
		}
	}
	if s.cfg.VacuumSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.VacuumSchedule, func() { s.runVacuum(ctx) }); err != nil {
			return fmt.Errorf("invalid vacuum schedule %q: %w", s.cfg.VacuumSchedule, err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("maintenance scheduler started",
		"checkpoint_schedule", s.cfg.CheckpointSchedule,
		"vacuum_schedule", s.cfg.VacuumSchedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce runs one checkpoint and one vacuum immediately, outside any
// schedule. The CLI's maintain command uses this.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.store.Checkpoint(ctx); err != nil {
		return err
	}
	return s.store.Vacuum(ctx)
}

func (s *Scheduler) runCheckpoint(ctx context.Context) {
	if err := s.store.Checkpoint(ctx); err != nil {
		s.logger.Error("scheduled checkpoint failed", "error", err)
		return
	}
	s.logger.Debug("scheduled checkpoint completed")
}

func (s *Scheduler) runVacuum(ctx context.Context) {
	if err := s.store.Vacuum(ctx); err != nil {
		s.logger.Error("scheduled vacuum failed", "error", err)
		return
	}
	s.logger.Debug("scheduled vacuum completed")
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("maintenance scheduler stopped")
	}
}

// IsRunning reports whether the scheduler has been started and not yet
// stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
