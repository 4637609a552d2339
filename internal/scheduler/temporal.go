package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.temporal.io/api/serviceerror"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/edvin/cronhook/internal/model"
)

// Temporal drives recurring registrations through the Temporal schedule API
// and fire-now triggers through direct workflow starts. All schedules share
// one configured timezone.
type Temporal struct {
	tc           temporalclient.Client
	taskQueue    string
	workflowName string
	timezone     string
}

func NewTemporal(tc temporalclient.Client, taskQueue, workflowName, timezone string) *Temporal {
	return &Temporal{tc: tc, taskQueue: taskQueue, workflowName: workflowName, timezone: timezone}
}

func (s *Temporal) workflowAction(key string, action TriggerAction) *temporalclient.ScheduleWorkflowAction {
	return &temporalclient.ScheduleWorkflowAction{
		ID:        key,
		Workflow:  s.workflowName,
		Args:      []any{action.CronjobID, action.ExecutionID},
		TaskQueue: s.taskQueue,
	}
}

// Upsert creates the schedule, or replaces its spec and action when it
// already exists (cron changes after a disable/enable cycle or an update).
func (s *Temporal) Upsert(ctx context.Context, key string, cron model.CronExpression, action TriggerAction) error {
	spec := temporalclient.ScheduleSpec{
		CronExpressions: []string{cron.String()},
		TimeZoneName:    s.timezone,
	}

	_, err := s.tc.ScheduleClient().Create(ctx, temporalclient.ScheduleOptions{
		ID:     key,
		Spec:   spec,
		Action: s.workflowAction(key, action),
	})
	if err == nil {
		return nil
	}
	if !isAlreadyExists(err) {
		return fmt.Errorf("create schedule %s: %w", key, err)
	}

	handle := s.tc.ScheduleClient().GetHandle(ctx, key)
	err = handle.Update(ctx, temporalclient.ScheduleUpdateOptions{
		DoUpdate: func(input temporalclient.ScheduleUpdateInput) (*temporalclient.ScheduleUpdate, error) {
			schedule := input.Description.Schedule
			schedule.Spec = &spec
			schedule.Action = s.workflowAction(key, action)
			return &temporalclient.ScheduleUpdate{Schedule: &schedule}, nil
		},
	})
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", key, err)
	}
	return nil
}

// Remove deletes the schedule if present. A missing schedule is not an error.
func (s *Temporal) Remove(ctx context.Context, key string) error {
	handle := s.tc.ScheduleClient().GetHandle(ctx, key)
	if err := handle.Delete(ctx); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("delete schedule %s: %w", key, err)
	}
	return nil
}

// Enqueue starts the trigger workflow directly for a manual firing. The
// workflow id is derived from the execution id so duplicate submissions of
// the same firing collapse into one run.
func (s *Temporal) Enqueue(ctx context.Context, action TriggerAction) error {
	_, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        "trigger-" + action.ExecutionID,
		TaskQueue: s.taskQueue,
	}, s.workflowName, action.CronjobID, action.ExecutionID)
	if err != nil {
		return fmt.Errorf("start trigger workflow for cronjob %s: %w", action.CronjobID, err)
	}
	return nil
}

// isAlreadyExists and isNotFound prefer the SDK's typed errors; the string
// checks remain as a fallback for servers whose gRPC errors arrive untyped.

func isAlreadyExists(err error) bool {
	if errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		return true
	}
	var alreadyExists *serviceerror.AlreadyExists
	if errors.As(err, &alreadyExists) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "already registered")
}

func isNotFound(err error) bool {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	return strings.Contains(err.Error(), "not found")
}
