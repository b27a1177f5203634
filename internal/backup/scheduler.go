package backup

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs automatic backups on a cron schedule. Runs that would
// overlap a manual operation are skipped, never queued.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *Orchestrator
	settings     *SettingsStore
	logger       *zap.Logger
}

// NewScheduler constructs a scheduler around the orchestrator.
func NewScheduler(orchestrator *Orchestrator, settings *SettingsStore, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:         cron.New(),
		orchestrator: orchestrator,
		settings:     settings,
		logger:       logger,
	}
}

// Start registers the backup job under the given cron expression and starts
// the scheduler. An empty expression disables automatic backups.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.runScheduledBackup); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("automatic backups scheduled", zap.String("schedule", spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runScheduledBackup() {
	settings, err := s.settings.Load()
	if err != nil {
		s.logger.Error("scheduled backup skipped: cannot load settings", zap.Error(err))
		return
	}

	status, done, err := s.orchestrator.Run(context.Background(), OperationBackup, *settings)
	if err != nil {
		if errors.Is(err, ErrOperationInFlight) {
			s.logger.Warn("scheduled backup skipped: another operation is running")
			return
		}
		s.logger.Error("scheduled backup failed to start", zap.Error(err))
		return
	}

	for msg := range status {
		s.logger.Debug("scheduled backup progress", zap.String("status", msg))
	}
	result := <-done
	if result.Success {
		s.logger.Info("scheduled backup finished", zap.String("summary", result.Summary))
	} else {
		s.logger.Error("scheduled backup failed", zap.String("message", result.Message))
	}
}
