package request

// AppendExecutionStatus is the status callback payload. Triggered targets
// report progress with it; the state is validated against the known states
// by the execution service, not here, so the error message can name the
// offending value.
type AppendExecutionStatus struct {
	State   string         `json:"state" validate:"required"`
	Details map[string]any `json:"details"`
}
