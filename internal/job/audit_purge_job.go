// Package job contains scheduled background jobs.
package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultRunTimeout = 5 * time.Minute

// AuditPurger deletes audit logs older than the retention window
type AuditPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditPurgeJob removes audit logs past the retention period
type AuditPurgeJob struct {
	purger    AuditPurger
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAuditPurgeJob creates a purge job. retentionDays 0 disables purging.
func NewAuditPurgeJob(purger AuditPurger, retentionDays int, logger *zap.Logger) *AuditPurgeJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditPurgeJob{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		timeout:   defaultRunTimeout,
		logger:    logger,
	}
}

// Enabled reports whether a retention period is configured
func (j *AuditPurgeJob) Enabled() bool {
	return j.retention > 0
}

// Run executes the purge with the default timeout. Used as the cron callback.
func (j *AuditPurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	j.RunContext(ctx)
}

// RunContext executes the purge once. Errors are logged, never returned.
func (j *AuditPurgeJob) RunContext(ctx context.Context) int64 {
	if !j.Enabled() {
		j.logger.Debug("Audit purge skipped, retention disabled")
		return 0
	}

	start := time.Now()
	deleted, err := j.purger.PurgeOlderThan(ctx, j.retention)
	if err != nil {
		j.logger.Error("Audit purge failed",
			zap.Duration("retention", j.retention),
			zap.Error(err),
		)
		return 0
	}

	j.logger.Info("Audit purge completed",
		zap.Int64("deleted", deleted),
		zap.Duration("retention", j.retention),
		zap.Duration("duration", time.Since(start)),
	)
	return deleted
}

// Schedule registers the job on the cron scheduler
func (j *AuditPurgeJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		j.logger.Info("Running scheduled audit purge job")
		j.Run()
	})
}
