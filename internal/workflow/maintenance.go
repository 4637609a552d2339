package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// CleanupExecutionsWorkflow prunes old execution history.
func CleanupExecutionsWorkflow(ctx workflow.Context) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var deleted int64
	err := workflow.ExecuteActivity(ctx, "CleanupExecutions").Get(ctx, &deleted)
	if err != nil {
		return err
	}

	logger := workflow.GetLogger(ctx)
	logger.Info("cleaned up old executions", "deleted", deleted)

	return nil
}
