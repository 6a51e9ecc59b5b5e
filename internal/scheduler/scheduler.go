// Package scheduler runs the background price refresh on a cron schedule,
// keeping the cache warm so pack valuations rarely block on live fetches.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"plat-tracker/internal/catalog"
	"plat-tracker/internal/engine"
	"plat-tracker/internal/logger"
)

// Scheduler owns the cron instance and the refresh job.
type Scheduler struct {
	cron      *cron.Cron
	refresher *engine.Refresher
	catalog   *catalog.Catalog
}

// New creates a Scheduler around the given refresher and pack catalog.
func New(refresher *engine.Refresher, cat *catalog.Catalog) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		refresher: refresher,
		catalog:   cat,
	}
}

// Register installs the refresh job under the given cron spec. An empty
// spec disables scheduled refreshes.
func (s *Scheduler) Register(spec string) error {
	if spec == "" {
		logger.Info("Sched", "Refresh schedule disabled")
		return nil
	}
	_, err := s.cron.AddFunc(spec, s.refreshPackItems)
	if err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	logger.Info("Sched", fmt.Sprintf("Refresh scheduled: %s", spec))
	return nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) refreshPackItems() {
	slugs := s.catalog.Slugs()
	logger.Info("Sched", fmt.Sprintf("Refreshing %d pack items", len(slugs)))
	records := s.refresher.RefreshAll(context.Background(), slugs)
	logger.Success("Sched", fmt.Sprintf("Refreshed %d/%d pack items", len(records), len(slugs)))
}
