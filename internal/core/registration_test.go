package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/scheduler"
)

func testCronjob(id string) *model.Cronjob {
	now := time.Now()
	return &model.Cronjob{
		ID:        id,
		ProjectID: "project-1",
		Title:     "nightly-report",
		Schedule:  model.CronExpression("0 3 * * *"),
		URL:       "https://example.com/hooks/report",
		Method:    "POST",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRegistrationAdd(t *testing.T) {
	sched := scheduler.NewInMemory()
	svc := NewRegistrationService(&mockDB{}, sched)

	err := svc.Add(context.Background(), testCronjob("cj-1"))
	require.NoError(t, err)

	reg, ok := sched.Get("cronjob-cj-1")
	require.True(t, ok)
	assert.Equal(t, model.CronExpression("0 3 * * *"), reg.Cron)
	assert.Equal(t, "cj-1", reg.Action.CronjobID)
	assert.Empty(t, reg.Action.ExecutionID)
}

func TestRegistrationAddReplacesExisting(t *testing.T) {
	sched := scheduler.NewInMemory()
	svc := NewRegistrationService(&mockDB{}, sched)

	cronjob := testCronjob("cj-1")
	require.NoError(t, svc.Add(context.Background(), cronjob))

	cronjob.Schedule = model.CronExpression("*/10 * * * *")
	require.NoError(t, svc.Add(context.Background(), cronjob))

	assert.Equal(t, 1, sched.Len())
	reg, _ := sched.Get("cronjob-cj-1")
	assert.Equal(t, model.CronExpression("*/10 * * * *"), reg.Cron)
}

func TestRegistrationAddInvalidSchedule(t *testing.T) {
	sched := scheduler.NewInMemory()
	svc := NewRegistrationService(&mockDB{}, sched)

	cronjob := testCronjob("cj-1")
	cronjob.Schedule = model.CronExpression("not a cron")

	err := svc.Add(context.Background(), cronjob)
	require.Error(t, err)
	assert.Zero(t, sched.Len())
}

func TestRegistrationRemoveUnknownIsNoop(t *testing.T) {
	sched := scheduler.NewInMemory()
	svc := NewRegistrationService(&mockDB{}, sched)

	assert.NoError(t, svc.Remove(context.Background(), "cj-unknown"))
}

func TestRegistrationResync(t *testing.T) {
	db := &mockDB{}
	sched := scheduler.NewInMemory()
	svc := NewRegistrationService(db, sched)

	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(newMockRows(
		func(dest ...any) error {
			*dest[0].(*string) = "cj-1"
			*dest[1].(*model.CronExpression) = "0 3 * * *"
			return nil
		},
		func(dest ...any) error {
			*dest[0].(*string) = "cj-2"
			*dest[1].(*model.CronExpression) = "*/5 * * * *"
			return nil
		},
	), nil)

	synced, err := svc.Resync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 2, sched.Len())

	reg, ok := sched.Get("cronjob-cj-2")
	require.True(t, ok)
	assert.Equal(t, model.CronExpression("*/5 * * * *"), reg.Cron)
}
