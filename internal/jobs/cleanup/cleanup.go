package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gomeet-app/backend/internal/domain/rules"
)

type counterPurger interface {
	DeleteClosedBefore(ctx context.Context, dayCutoffKey, monthCutoffKey string, olderThan time.Time) (int64, error)
}

// Job prunes closed usage counter windows past the retention horizon.
// Open windows are never touched: the cutoff key is strictly before the
// oldest window that could still be charged.
type Job struct {
	counters  counterPurger
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(counters counterPurger, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		counters:  counters,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.counters == nil {
		return fmt.Errorf("counter store is not configured")
	}

	cutoff := j.now().UTC().Add(-j.retention)
	// Each window kind gets its own cutoff key. The monthly cutoff is
	// the month containing the retention horizon, so the open monthly
	// window never sorts below it regardless of retention length.
	dayCutoffKey := rules.DayKey(cutoff)
	monthCutoffKey := rules.MonthKey(cutoff)

	rows, err := j.counters.DeleteClosedBefore(ctx, dayCutoffKey, monthCutoffKey, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup usage counters: %w", err)
	}
	if rows > 0 {
		j.logger.Info("cleanup usage counters completed",
			zap.Int64("deleted", rows),
			zap.String("day_cutoff_key", dayCutoffKey),
			zap.String("month_cutoff_key", monthCutoffKey))
	}

	return nil
}

// RunPeriodically runs the job on a fixed interval until ctx is done. A
// failed pass is logged and retried on the next tick.
func (j *Job) RunPeriodically(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup pass failed", zap.Error(err))
			}
		}
	}
}
