// Package worker runs the scheduled weather refresh. The HTTP request path
// only ever reads weather; this scheduler is the single writer.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gilby125/travel-index-api/pkg/logger"
)

// refreshTimeout bounds a single refresh run so a hung provider cannot
// stall the next scheduled run.
const refreshTimeout = 10 * time.Minute

// Refresher refreshes weather records for the whole catalog.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Scheduler triggers the weather refresher on a cron schedule, with one
// immediate run at startup so the store is warm before the first request.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
}

// NewScheduler creates a scheduler that fires the refresher per the given
// cron expression.
func NewScheduler(refresher Refresher, spec string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		spec:      spec,
	}
}

// Start registers the refresh job and starts the cron loop. The initial
// warm-up refresh runs in the background so startup is not blocked on
// a slow provider.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runRefresh); err != nil {
		return fmt.Errorf("failed to schedule weather refresh %q: %w", s.spec, err)
	}

	go s.runRefresh()

	s.cron.Start()
	logger.Info("weather refresh scheduled", "cron", s.spec)
	return nil
}

// Stop stops the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("weather refresh scheduler stopped")
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.RefreshAll(ctx); err != nil {
		logger.Error(err, "weather refresh run failed")
		return
	}
	logger.Info("weather refresh run completed", "duration", time.Since(start).String())
}
