package scheduler

import (
	"context"
	"sync"

	"github.com/edvin/cronhook/internal/model"
)

// Registration is one stored recurring registration of the in-memory scheduler.
type Registration struct {
	Cron   model.CronExpression
	Action TriggerAction
}

// InMemory implements RecurringScheduler and Enqueuer in-process. It backs
// tests and local development without a Temporal server. Enqueued actions are
// handed to ExecuteFunc synchronously when one is set.
type InMemory struct {
	mu            sync.Mutex
	registrations map[string]Registration

	ExecuteFunc func(ctx context.Context, action TriggerAction) error
}

func NewInMemory() *InMemory {
	return &InMemory{registrations: make(map[string]Registration)}
}

func (s *InMemory) Upsert(_ context.Context, key string, cron model.CronExpression, action TriggerAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[key] = Registration{Cron: cron, Action: action}
	return nil
}

func (s *InMemory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registrations, key)
	return nil
}

func (s *InMemory) Enqueue(ctx context.Context, action TriggerAction) error {
	if s.ExecuteFunc == nil {
		return nil
	}
	return s.ExecuteFunc(ctx, action)
}

// Get returns the registration stored under key.
func (s *InMemory) Get(key string) (Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[key]
	return reg, ok
}

// Len returns the number of live registrations.
func (s *InMemory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}
