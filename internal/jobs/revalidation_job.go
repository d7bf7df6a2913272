package jobs

import (
	"context"
	"time"

	"github.com/agrocampo/campo-api/internal/config"
	"github.com/agrocampo/campo-api/internal/trigger"
	"go.uber.org/zap"
)

// RevalidationJob sweeps the watched collections on a schedule, catching
// documents whose change notifications never reached the webhook.
type RevalidationJob struct {
	revalidator *trigger.Revalidator
	cfg         *config.RevalidationConfig
	logger      *zap.Logger
}

// NewRevalidationJob creates the sweep job.
func NewRevalidationJob(revalidator *trigger.Revalidator, cfg *config.RevalidationConfig, logger *zap.Logger) *RevalidationJob {
	return &RevalidationJob{revalidator: revalidator, cfg: cfg, logger: logger}
}

// Register schedules the sweep if revalidation is enabled.
func (j *RevalidationJob) Register(scheduler *Scheduler) error {
	if !j.cfg.Enabled {
		j.logger.Info("revalidation sweep disabled")
		return nil
	}
	return scheduler.AddJob("revalidation_sweep", j.cfg.CronExpr, j.Run)
}

// Run executes one bounded sweep over every watched collection.
func (j *RevalidationJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.TimeoutDuration())
	defer cancel()

	start := time.Now()
	if err := j.revalidator.Sweep(ctx); err != nil {
		j.logger.Error("revalidation sweep failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return
	}
	j.logger.Info("revalidation sweep completed",
		zap.Duration("elapsed", time.Since(start)))
}
