package activity

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/edvin/cronhook/internal/trigger"
)

// Executor performs a single cronjob trigger. *trigger.Executor satisfies
// this interface.
type Executor interface {
	Execute(ctx context.Context, cronjobID, executionID string) error
}

// Trigger contains the activity that fires cronjob HTTP requests.
type Trigger struct {
	executor Executor
}

// NewTrigger creates a new Trigger activity struct.
func NewTrigger(executor Executor) *Trigger {
	return &Trigger{executor: executor}
}

// ExecuteTriggerParams holds parameters for the ExecuteTrigger activity.
type ExecuteTriggerParams struct {
	CronjobID   string `json:"cronjob_id"`
	ExecutionID string `json:"execution_id"`
}

// ExecuteTrigger performs one cronjob trigger. Configuration problems such
// as an unsupported HTTP method are permanent and must not be retried, so
// they are returned as non-retryable application errors. Transport failures
// stay retryable; the executor records each attempt in the execution log
// under the same execution ID.
func (a *Trigger) ExecuteTrigger(ctx context.Context, params ExecuteTriggerParams) error {
	err := a.executor.Execute(ctx, params.CronjobID, params.ExecutionID)
	if errors.Is(err, trigger.ErrConfiguration) {
		return temporal.NewNonRetryableApplicationError("cronjob configuration invalid", "CONFIGURATION_ERROR", err)
	}
	return err
}
