package core

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/scheduler"
)

func newCronjobService(db *mockDB) (*CronjobService, *scheduler.InMemory, *[]scheduler.TriggerAction) {
	sched := scheduler.NewInMemory()
	var enqueued []scheduler.TriggerAction
	sched.ExecuteFunc = func(_ context.Context, action scheduler.TriggerAction) error {
		enqueued = append(enqueued, action)
		return nil
	}
	registration := NewRegistrationService(db, sched)
	return NewCronjobService(db, registration, sched), sched, &enqueued
}

func TestCronjobCreateEnabledRegistersSchedule(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := svc.Create(context.Background(), testCronjob("cj-1"))
	require.NoError(t, err)

	_, ok := sched.Get("cronjob-cj-1")
	assert.True(t, ok)
	db.AssertExpectations(t)
}

func TestCronjobCreateDisabledSkipsRegistration(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	cronjob := testCronjob("cj-1")
	cronjob.Enabled = false
	require.NoError(t, svc.Create(context.Background(), cronjob))

	assert.Zero(t, sched.Len())
}

func TestCronjobCreateRejectsUnsupportedMethod(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	cronjob := testCronjob("cj-1")
	cronjob.Method = "PUT"

	err := svc.Create(context.Background(), cronjob)
	require.Error(t, err)
	assert.Zero(t, sched.Len())
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestCronjobUpdateDisabledRemovesRegistration(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	cronjob := testCronjob("cj-1")
	require.NoError(t, svc.Update(context.Background(), cronjob))
	assert.Equal(t, 1, sched.Len())

	cronjob.Enabled = false
	require.NoError(t, svc.Update(context.Background(), cronjob))
	assert.Zero(t, sched.Len())
}

func TestCronjobSetEnabled(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	cronjob := testCronjob("cj-1")
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(&mockRow{
		scanFunc: func(dest ...any) error {
			*dest[0].(*string) = cronjob.ID
			*dest[1].(*string) = cronjob.ProjectID
			*dest[2].(*string) = cronjob.Title
			*dest[3].(*model.CronExpression) = cronjob.Schedule
			*dest[4].(*string) = cronjob.URL
			*dest[5].(*string) = cronjob.Method
			*dest[6].(*bool) = true
			return nil
		},
	})

	got, err := svc.SetEnabled(context.Background(), "cj-1", true)
	require.NoError(t, err)
	assert.Equal(t, "cj-1", got.ID)
	assert.Equal(t, 1, sched.Len())

	_, err = svc.SetEnabled(context.Background(), "cj-1", false)
	require.NoError(t, err)
	assert.Zero(t, sched.Len())
}

func TestCronjobDeleteUnregistersFirst(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	require.NoError(t, sched.Upsert(context.Background(), "cronjob-cj-1", "0 3 * * *", scheduler.TriggerAction{CronjobID: "cj-1"}))

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("DELETE 1"), nil)

	require.NoError(t, svc.Delete(context.Background(), "cj-1"))
	assert.Zero(t, sched.Len())
	db.AssertExpectations(t)
}

func TestCronjobTriggerEnqueuesWithFreshExecutionID(t *testing.T) {
	db := &mockDB{}
	svc, _, enqueued := newCronjobService(db)

	cronjob := testCronjob("cj-1")
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(&mockRow{
		scanFunc: func(dest ...any) error {
			*dest[0].(*string) = cronjob.ID
			*dest[1].(*string) = cronjob.ProjectID
			*dest[2].(*string) = cronjob.Title
			*dest[3].(*model.CronExpression) = cronjob.Schedule
			*dest[4].(*string) = cronjob.URL
			*dest[5].(*string) = cronjob.Method
			*dest[6].(*bool) = cronjob.Enabled
			return nil
		},
	})

	executionID, err := svc.Trigger(context.Background(), "cj-1")
	require.NoError(t, err)
	assert.NotEmpty(t, executionID)

	require.Len(t, *enqueued, 1)
	assert.Equal(t, "cj-1", (*enqueued)[0].CronjobID)
	assert.Equal(t, executionID, (*enqueued)[0].ExecutionID)
}

// failingScheduler rejects every scheduler mutation.
type failingScheduler struct{}

func (failingScheduler) Upsert(context.Context, string, model.CronExpression, scheduler.TriggerAction) error {
	return errors.New("schedule service unavailable")
}

func (failingScheduler) Remove(context.Context, string) error {
	return errors.New("schedule service unavailable")
}

func newCronjobServiceWithFailingScheduler(db *mockDB) *CronjobService {
	registration := NewRegistrationService(db, failingScheduler{})
	return NewCronjobService(db, registration, scheduler.NewInMemory())
}

func TestCronjobCreateSchedulerFailureRollsBack(t *testing.T) {
	db := &mockDB{}
	svc := newCronjobServiceWithFailingScheduler(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := svc.Create(context.Background(), testCronjob("cj-1"))
	require.Error(t, err)

	tx := db.lastTx()
	require.NotNil(t, tx)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestCronjobSetEnabledSchedulerFailureRollsBack(t *testing.T) {
	db := &mockDB{}
	svc := newCronjobServiceWithFailingScheduler(db)

	cronjob := testCronjob("cj-1")
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(&mockRow{
		scanFunc: func(dest ...any) error {
			*dest[0].(*string) = cronjob.ID
			*dest[1].(*string) = cronjob.ProjectID
			*dest[2].(*string) = cronjob.Title
			*dest[3].(*model.CronExpression) = cronjob.Schedule
			*dest[4].(*string) = cronjob.URL
			*dest[5].(*string) = cronjob.Method
			*dest[6].(*bool) = false
			return nil
		},
	})
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	_, err := svc.SetEnabled(context.Background(), "cj-1", true)
	require.Error(t, err)

	tx := db.lastTx()
	require.NotNil(t, tx)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestCronjobDeleteSchedulerFailureRollsBack(t *testing.T) {
	db := &mockDB{}
	svc := newCronjobServiceWithFailingScheduler(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("DELETE 1"), nil)

	err := svc.Delete(context.Background(), "cj-1")
	require.Error(t, err)

	tx := db.lastTx()
	require.NotNil(t, tx)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestCronjobUpdateCommitsAfterSchedulerSuccess(t *testing.T) {
	db := &mockDB{}
	svc, sched, _ := newCronjobService(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	require.NoError(t, svc.Update(context.Background(), testCronjob("cj-1")))
	assert.Equal(t, 1, sched.Len())

	tx := db.lastTx()
	require.NotNil(t, tx)
	assert.True(t, tx.committed)
}

func TestCronjobTriggerUnknownCronjob(t *testing.T) {
	db := &mockDB{}
	svc, _, enqueued := newCronjobService(db)

	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(&mockRow{
		scanFunc: func(dest ...any) error { return pgx.ErrNoRows },
	})

	_, err := svc.Trigger(context.Background(), "cj-missing")
	require.Error(t, err)
	assert.Empty(t, *enqueued)
}
