package preview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// startScheduler sets up the optional periodic full rebuild. This matters for
// git-sourced content, which the file watcher cannot see changing.
// Returns nil when no interval is configured.
func (s *Server) startScheduler(ctx context.Context) (gocron.Scheduler, error) {
	interval := s.cfg.Preview.RebuildIntervalDuration()
	if interval <= 0 {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.rebuild(ctx, "scheduled") }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}

	scheduler.Start()
	slog.Info("Scheduled periodic rebuild", slog.Duration("interval", interval))
	return scheduler, nil
}
