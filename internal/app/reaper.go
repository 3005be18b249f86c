package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reaper periodically force-fails executions that have been running longer
// than the configured maximum age, so abandoned runs do not pin memory or
// report running forever.
type Reaper struct {
	executor *Executor
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
}

func NewReaper(executor *Executor, maxAge, interval time.Duration, logger *zap.Logger) *Reaper {
	return &Reaper{executor: executor, maxAge: maxAge, interval: interval, logger: logger}
}

// Run blocks until ctx is done, sweeping on every tick.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("execution reaper started",
		zap.Duration("max_age", r.maxAge),
		zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("execution reaper stopped")
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reaper) sweep() {
	cutoff := time.Now().UTC().Add(-r.maxAge)
	for _, id := range r.executor.StaleRunning(cutoff) {
		r.logger.Warn("reaping stale execution", zap.String("execution_id", id))
		r.executor.ForceFail(id, "execution exceeded maximum age")
	}
}
