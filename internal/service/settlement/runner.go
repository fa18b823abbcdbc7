package settlement

import (
	"context"
	"log/slog"
	"time"
)

// Runner drives the settlement job on a fixed interval. The per-item
// conditional write in the service makes overlapping or restarted runners
// safe; the runner only provides cadence.
type Runner struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewRunner creates a Runner that settles every interval.
func NewRunner(service *Service, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		service:  service,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the settlement loop in its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the loop to exit and waits for the in-flight pass to finish.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("settlement runner started", "interval", r.interval.String())
	for {
		select {
		case <-ticker.C:
			if _, err := r.service.SettleNow(ctx); err != nil {
				r.logger.Error("settlement pass failed", "error", err)
			}
		case <-r.stop:
			r.logger.Info("settlement runner stopped")
			return
		case <-ctx.Done():
			r.logger.Info("settlement runner context cancelled")
			return
		}
	}
}
