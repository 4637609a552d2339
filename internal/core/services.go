package core

import (
	"github.com/edvin/cronhook/internal/scheduler"
)

type Services struct {
	ConfigTemplate *ConfigTemplateService
	Project        *ProjectService
	Cronjob        *CronjobService
	Execution      *ExecutionService
	Registration   *RegistrationService
}

func NewServices(db DB, sched scheduler.RecurringScheduler, enqueuer scheduler.Enqueuer) *Services {
	registration := NewRegistrationService(db, sched)
	return &Services{
		ConfigTemplate: NewConfigTemplateService(db),
		Project:        NewProjectService(db, registration),
		Cronjob:        NewCronjobService(db, registration, enqueuer),
		Execution:      NewExecutionService(db),
		Registration:   registration,
	}
}
