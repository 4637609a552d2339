package activity

import (
	"context"

	"github.com/edvin/cronhook/internal/retention"
)

// Maintenance contains activities for periodic housekeeping.
type Maintenance struct {
	collector *retention.Collector
}

// NewMaintenance creates a new Maintenance activity struct.
func NewMaintenance(collector *retention.Collector) *Maintenance {
	return &Maintenance{collector: collector}
}

// CleanupExecutions runs one retention sweep over the execution log and
// returns the number of executions deleted.
func (a *Maintenance) CleanupExecutions(ctx context.Context) (int64, error) {
	return a.collector.Run(ctx)
}
