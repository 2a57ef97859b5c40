// Package jobs holds scheduled maintenance jobs.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/telemetry"
)

const reconcileJobName = "reconcile_pending"

// ReconcileConfig controls the pending-payment sweep.
type ReconcileConfig struct {
	// Interval between sweeps
	Interval time.Duration

	// OlderThan skips orders updated more recently, leaving room for the
	// webhook to arrive first.
	OlderThan time.Duration

	// RunTimeout bounds one sweep
	RunTimeout time.Duration
}

// ReconcileJob periodically asks the gateway about orders still PENDING,
// recovering payments whose webhook was lost.
type ReconcileJob struct {
	payments domain.PaymentService
	config   ReconcileConfig
	logger   *slog.Logger
}

// NewReconcileJob creates the sweep job
func NewReconcileJob(payments domain.PaymentService, config ReconcileConfig, logger *slog.Logger) *ReconcileJob {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.OlderThan <= 0 {
		config.OlderThan = 15 * time.Minute
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = config.Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileJob{
		payments: payments,
		config:   config,
		logger:   logger.With("job", reconcileJobName),
	}
}

// Start runs a sweep every Interval until ctx is cancelled.
func (j *ReconcileJob) Start(ctx context.Context) error {
	j.logger.Info("reconcile job starting",
		"interval", j.config.Interval,
		"older_than", j.config.OlderThan,
	)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("reconcile job shutting down")
			return ctx.Err()
		case <-ticker.C:
			_, _ = j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and logs its counts.
func (j *ReconcileJob) RunOnce(ctx context.Context) (*domain.SweepResult, error) {
	start := time.Now()
	defer func() {
		if telemetry.Business != nil {
			telemetry.Business.JobDuration.WithLabelValues(reconcileJobName).Observe(time.Since(start).Seconds())
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, j.config.RunTimeout)
	defer cancel()

	result, err := j.payments.ReconcilePending(runCtx, j.config.OlderThan)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error("reconcile sweep failed", "error", err)
			telemetry.CaptureError(err, map[string]interface{}{"job": reconcileJobName})
		}
		return result, err
	}

	attrs := []any{
		"checked", result.Checked,
		"paid", result.Paid,
		"failed", result.Failed,
		"still_pending", result.StillPending,
		"needs_review", result.NeedsReview,
		"already_closed", result.AlreadyClosed,
		"duration", time.Since(start),
	}
	switch {
	case result.NeedsReview > 0:
		j.logger.Warn("reconcile sweep finished with orders needing review", attrs...)
	case result.Checked > 0:
		j.logger.Info("reconcile sweep finished", attrs...)
	default:
		j.logger.Debug("reconcile sweep found nothing pending")
	}
	return result, nil
}
