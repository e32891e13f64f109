package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// startMaintenance schedules the periodic maintenance job. The returned
// stop function waits for a running job to finish.
func (a *App) startMaintenance(ctx context.Context) (stop func(), err error) {
	schedule := a.Config().Engine.MaintenanceSchedule
	if schedule == "" || schedule == "off" {
		a.logger.Info("Maintenance schedule not configured, skipping scheduler.")
		return func() {}, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { a.Maintain(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	c.Start()
	a.logger.Info("Maintenance scheduler started.", "schedule", schedule)

	return func() {
		<-c.Stop().Done()
		a.logger.Debug("Maintenance scheduler stopped.")
	}, nil
}

// Maintain reports cache occupancy and prunes journal entries older than
// the configured retention.
func (a *App) Maintain(ctx context.Context) {
	c := a.Cache()
	a.logger.Info("Maintenance run.", "cache_entries", c.Len(), "cache_capacity", c.Capacity())

	if a.journal == nil {
		return
	}
	cutoff := time.Now().Add(-a.Config().Journal.RetentionDuration())
	deleted, err := a.journal.Prune(ctx, cutoff)
	if err != nil {
		a.logger.Error("Journal pruning failed.", "error", err)
		return
	}
	if deleted > 0 {
		a.logger.Info("Journal pruned.", "deleted_count", deleted)
	} else {
		a.logger.Debug("Journal pruning completed, no entries deleted.")
	}
}
