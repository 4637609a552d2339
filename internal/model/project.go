package model

import "time"

// Project groups cronjobs and optionally carries its own token auth and a
// reference to a reusable config template.
type Project struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Auth       TokenAuth `json:"auth"`
	TemplateID *string   `json:"template_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
