package core

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/scheduler"
)

// ScheduleKey returns the recurring scheduler registration key for a cronjob.
// Keys are derived from the cronjob ID only, so re-registering after a title
// or schedule change replaces the existing registration instead of leaking a
// second one.
func ScheduleKey(cronjobID string) string {
	return "cronjob-" + cronjobID
}

// RegistrationService keeps the external scheduler in sync with enabled
// cronjobs. At most one registration exists per cronjob.
type RegistrationService struct {
	db    DB
	sched scheduler.RecurringScheduler
}

func NewRegistrationService(db DB, sched scheduler.RecurringScheduler) *RegistrationService {
	return &RegistrationService{db: db, sched: sched}
}

// Add registers or replaces the recurring schedule for a cronjob. The
// schedule is validated again here so a row written before a format change
// can never reach the scheduler.
func (s *RegistrationService) Add(ctx context.Context, cronjob *model.Cronjob) error {
	if _, err := model.ParseCronExpression(cronjob.Schedule.String()); err != nil {
		return fmt.Errorf("register cronjob %s: %w", cronjob.ID, err)
	}

	err := s.sched.Upsert(ctx, ScheduleKey(cronjob.ID), cronjob.Schedule, scheduler.TriggerAction{
		CronjobID: cronjob.ID,
	})
	if err != nil {
		return fmt.Errorf("register cronjob %s: %w", cronjob.ID, err)
	}
	return nil
}

// Remove drops the recurring schedule for a cronjob. Removing a cronjob that
// was never registered is a no-op.
func (s *RegistrationService) Remove(ctx context.Context, cronjobID string) error {
	if err := s.sched.Remove(ctx, ScheduleKey(cronjobID)); err != nil {
		return fmt.Errorf("unregister cronjob %s: %w", cronjobID, err)
	}
	return nil
}

// Resync re-registers every enabled cronjob. Run at worker startup so
// registrations lost to a scheduler wipe are restored from the database,
// which is the source of truth.
func (s *RegistrationService) Resync(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, schedule FROM cronjobs WHERE enabled = true ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("list enabled cronjobs: %w", err)
	}
	defer rows.Close()

	var cronjobs []model.Cronjob
	for rows.Next() {
		var c model.Cronjob
		if err := rows.Scan(&c.ID, &c.Schedule); err != nil {
			return 0, fmt.Errorf("scan cronjob: %w", err)
		}
		cronjobs = append(cronjobs, c)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate cronjobs: %w", err)
	}

	synced := 0
	for i := range cronjobs {
		if err := s.Add(ctx, &cronjobs[i]); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}
