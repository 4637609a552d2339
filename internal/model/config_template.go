package model

import "time"

// ConfigTemplate is a named reusable token auth bundle referenced by
// projects and cronjobs.
type ConfigTemplate struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Auth      TokenAuth `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
