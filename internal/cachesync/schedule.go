package cachesync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/telemetry"
)

// DefaultSchedule re-derives every cache every five minutes.
const DefaultSchedule = "@every 5m"

// Scheduler periodically re-fetches a fixed set of collections.
type Scheduler struct {
	cron        *cron.Cron
	collections []string
	fetch       Fetcher
	timeout     time.Duration
}

// NewScheduler validates spec and registers the resync job. An empty spec
// selects DefaultSchedule.
func NewScheduler(spec string, collections []string, fetch Fetcher) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	s := &Scheduler{
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		collections: collections,
		fetch:       fetch,
		timeout:     time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("cache refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	telemetry.L().Info("cachesync.schedule_started", zap.Strings("collections", s.collections))
}

// Stop halts the schedule and waits for a running resync or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Run re-fetches every collection once and returns the failures.
func (s *Scheduler) Run(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	failed := map[string]error{}
	for _, name := range s.collections {
		err := s.fetch(ctx, name)
		metrics.CacheResyncs.WithLabelValues(name, "schedule", metrics.Result(err, nil)).Inc()
		if err != nil {
			failed[name] = err
			telemetry.L().Warn("cachesync.resync_failed", zap.String("collection", name), zap.Error(err))
		}
	}
	return failed
}
