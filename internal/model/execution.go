package model

import "time"

// ExecutionState labels one entry in an execution's status history.
type ExecutionState string

// Execution states. The history is a monotonic log, not a strict state
// machine: any state may be appended at any time, including out of order
// when the target reports back asynchronously.
const (
	StatePending   ExecutionState = "pending"
	StateTriggered ExecutionState = "triggered"
	StateStarted   ExecutionState = "started"
	StateFinished  ExecutionState = "finished"
	StateFailed    ExecutionState = "failed"
	StateTimedOut  ExecutionState = "timed_out"
)

// ValidExecutionState reports whether s is one of the known states.
func ValidExecutionState(s ExecutionState) bool {
	switch s {
	case StatePending, StateTriggered, StateStarted, StateFinished, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// ExecutionStatus is one immutable entry in an execution's history.
// Details carries free-form diagnostics (status code, headers, elapsed
// milliseconds, error message, JSON response body).
type ExecutionStatus struct {
	ID          int64          `json:"id"`
	ExecutionID string         `json:"execution_id"`
	State       ExecutionState `json:"state"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Execution is one firing of a cronjob with its append-only status history.
// State is denormalized: it always equals the state of the entry with the
// greatest CreatedAt and is only ever written together with an append.
type Execution struct {
	ID        string            `json:"id"`
	CronjobID string            `json:"cronjob_id"`
	State     ExecutionState    `json:"state"`
	Statuses  []ExecutionStatus `json:"statuses,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CurrentState derives the execution's state from its loaded history: the
// state of the entry with the greatest CreatedAt, ties broken by append
// order. Returns StatePending for an execution with no entries.
func (e *Execution) CurrentState() ExecutionState {
	if len(e.Statuses) == 0 {
		return StatePending
	}
	latest := e.Statuses[0]
	for _, s := range e.Statuses[1:] {
		if !s.CreatedAt.Before(latest.CreatedAt) {
			latest = s
		}
	}
	return latest.State
}
