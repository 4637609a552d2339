package request

type CreateCronjob struct {
	Title      string    `json:"title" validate:"required,max=255"`
	Schedule   string    `json:"schedule" validate:"required,cron"`
	URL        string    `json:"url" validate:"required,url"`
	Method     string    `json:"method" validate:"omitempty,oneof=GET POST"`
	Enabled    *bool     `json:"enabled"`
	Auth       TokenAuth `json:"auth"`
	TemplateID *string   `json:"template_id"`
}

type UpdateCronjob struct {
	Title      *string    `json:"title" validate:"omitempty,max=255"`
	Schedule   *string    `json:"schedule" validate:"omitempty,cron"`
	URL        *string    `json:"url" validate:"omitempty,url"`
	Method     *string    `json:"method" validate:"omitempty,oneof=GET POST"`
	Enabled    *bool      `json:"enabled"`
	Auth       *TokenAuth `json:"auth"`
	TemplateID *string    `json:"template_id"`
}
