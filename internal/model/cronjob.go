package model

import (
	"fmt"
	"net/http"
	"time"
)

// Cronjob is a scheduled HTTP trigger definition owned by a project.
type Cronjob struct {
	ID         string         `json:"id"`
	ProjectID  string         `json:"project_id"`
	Title      string         `json:"title"`
	Schedule   CronExpression `json:"schedule"`
	URL        string         `json:"url"`
	Method     string         `json:"method"`
	Enabled    bool           `json:"enabled"`
	Auth       TokenAuth      `json:"auth"`
	TemplateID *string        `json:"template_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ValidateMethod checks a cronjob's HTTP method. Only GET and POST are
// supported; anything else is a configuration error, never retried.
func ValidateMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodPost:
		return nil
	default:
		return fmt.Errorf("unsupported HTTP method %q: only GET and POST are allowed", method)
	}
}
