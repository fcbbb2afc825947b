package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/zenova/wms-billing/pkg/config"
)

// runSweeps ties the two sweep loops to the fx lifecycle. Each loop runs
// once at startup, then on its ticker; shutdown cancels the shared context
// and waits for in-flight runs to drain.
func runSweeps(lc fx.Lifecycle, s *Service, cfg *cfgpkg.Config, log *zap.SugaredLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				s.runLoop(ctx, "overdue", cfg.Reminder.OverdueSweepInterval, s.SweepOverdue)
			}()
			go func() {
				defer wg.Done()
				s.runLoop(ctx, "upcoming", cfg.Reminder.UpcomingSweepInterval, s.SweepUpcoming)
			}()
			log.Infow("sweeps_started",
				"overdue_interval", cfg.Reminder.OverdueSweepInterval,
				"upcoming_interval", cfg.Reminder.UpcomingSweepInterval)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			log.Info("sweeps_stopped")
			return nil
		},
	})
}

func (s *Service) runLoop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) error) {
	s.runWithRetry(ctx, name, sweep)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.runWithRetry(ctx, name, sweep)
		}
	}
}

// runWithRetry retries a failed sweep a bounded number of times, then gives
// up until the next tick. Sweeps are reload-from-store, so a retry never
// repeats work a previous attempt completed.
func (s *Service) runWithRetry(ctx context.Context, name string, sweep func(context.Context) error) {
	attempts := s.cfg.Reminder.SweepRetryCount
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		err := sweep(ctx)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.log.Errorw("sweep_failed", "sweep", name, "attempt", i, "max_attempts", attempts, "error", err)
	}
}
