package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler fires the catalog sync on a fixed period. It keeps the
// legacy deployment's shape: a polling loop that wakes on a short
// interval and checks whether the period has elapsed.
type Scheduler struct {
	task   func(context.Context) error
	period time.Duration
	poll   time.Duration
	logger *slog.Logger
}

// NewScheduler creates a scheduler that runs task every period,
// checking on each poll tick. Process start counts as the zeroth run,
// so the first fire lands one full period after boot.
func NewScheduler(task func(context.Context) error, period, poll time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		task:   task,
		period: period,
		poll:   poll,
		logger: logger,
	}
}

// Run executes the polling loop until ctx is canceled. Task errors are
// logged and swallowed; nothing a task does may stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	s.logger.Info("sync scheduler started",
		slog.Duration("period", s.period),
		slog.Duration("poll_interval", s.poll),
	)

	lastRun := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			if time.Since(lastRun) < s.period {
				continue
			}
			// The slot is consumed even if the task fails; the next
			// attempt waits a full period.
			lastRun = time.Now()

			if err := s.task(ctx); err != nil {
				if errors.Is(err, ErrSyncInFlight) {
					s.logger.Info("scheduled sync skipped, another run in flight")
					continue
				}
				s.logger.Error("scheduled sync failed", slog.String("error", err.Error()))
			}
		}
	}
}
