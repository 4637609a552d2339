package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/cronhook/internal/activity"
	"github.com/edvin/cronhook/internal/platform"
)

// TriggerCronjobWorkflowName is the registered name of TriggerCronjobWorkflow.
// Schedule actions reference the workflow by name so the API process does not
// need the workflow code linked in.
const TriggerCronjobWorkflowName = "TriggerCronjobWorkflow"

// TriggerCronjobWorkflow fires one cronjob execution. Scheduled firings pass
// an empty executionID; manual triggers pass the ID they handed back to the
// caller so the resulting execution can be looked up immediately.
func TriggerCronjobWorkflow(ctx workflow.Context, cronjobID, executionID string) error {
	if executionID == "" {
		// Use SideEffect so the generated ID survives replay and every
		// activity retry lands on the same execution row.
		encodedID := workflow.SideEffect(ctx, func(ctx workflow.Context) interface{} {
			return platform.NewID()
		})
		if err := encodedID.Get(&executionID); err != nil {
			return err
		}
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	err := workflow.ExecuteActivity(ctx, "ExecuteTrigger", activity.ExecuteTriggerParams{
		CronjobID:   cronjobID,
		ExecutionID: executionID,
	}).Get(ctx, nil)
	if err != nil {
		return err
	}

	logger := workflow.GetLogger(ctx)
	logger.Info("trigger completed", "cronjobID", cronjobID, "executionID", executionID)

	return nil
}
