// Package jobs holds scheduled maintenance tasks.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"voxa/internal/repositories"
)

// SessionCleanupJob purges anonymous interview records past their
// retention window. Records with an owner are kept indefinitely.
type SessionCleanupJob struct {
	sessions *repositories.SessionRepository
	config   *CleanupConfig
	logger   *zap.Logger
	cron     *cron.Cron
}

type CleanupConfig struct {
	Schedule  string        // cron schedule, e.g. "0 3 * * *"
	Retention time.Duration // how long anonymous records live
	Enabled   bool
}

func NewSessionCleanupJob(sessions *repositories.SessionRepository, config *CleanupConfig, logger *zap.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessions: sessions,
		config:   config,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the cleanup. No-op when disabled.
func (job *SessionCleanupJob) Start() error {
	if !job.config.Enabled {
		job.logger.Info("Session cleanup is disabled, skipping scheduler")
		return nil
	}

	_, err := job.cron.AddFunc(job.config.Schedule, func() {
		if err := job.RunCleanup(); err != nil {
			job.logger.Error("Session cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	job.cron.Start()
	job.logger.Info("Session cleanup scheduled", zap.String("schedule", job.config.Schedule))
	return nil
}

func (job *SessionCleanupJob) Stop() {
	if job.cron != nil {
		job.cron.Stop()
	}
}

// RunCleanup deletes anonymous sessions older than the retention window.
func (job *SessionCleanupJob) RunCleanup() error {
	cutoff := time.Now().Add(-job.config.Retention)
	deleted, err := job.sessions.DeleteAnonymousOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired anonymous sessions: %w", err)
	}
	if deleted > 0 {
		job.logger.Info("Purged anonymous interview sessions",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return nil
}
