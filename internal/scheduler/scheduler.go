package scheduler

import (
	"context"

	"github.com/edvin/cronhook/internal/model"
)

// TriggerAction identifies one invocation of the trigger executor. An empty
// ExecutionID means the execution id is generated at fire time, so every
// firing of a recurring registration gets a fresh execution while retries of
// the same firing keep theirs.
type TriggerAction struct {
	CronjobID   string `json:"cronjob_id"`
	ExecutionID string `json:"execution_id"`
}

// RecurringScheduler manages recurring trigger registrations in the external
// scheduler. Upsert is idempotent: registering an existing key replaces its
// schedule. Remove of an unknown key is a no-op.
type RecurringScheduler interface {
	Upsert(ctx context.Context, key string, cron model.CronExpression, action TriggerAction) error
	Remove(ctx context.Context, key string) error
}

// Enqueuer fires a single trigger action immediately, independent of any
// recurring registration.
type Enqueuer interface {
	Enqueue(ctx context.Context, action TriggerAction) error
}
