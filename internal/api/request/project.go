package request

type CreateProject struct {
	Title      string    `json:"title" validate:"required,max=255"`
	Auth       TokenAuth `json:"auth"`
	TemplateID *string   `json:"template_id"`
}

type UpdateProject struct {
	Title      *string    `json:"title" validate:"omitempty,max=255"`
	Auth       *TokenAuth `json:"auth"`
	TemplateID *string    `json:"template_id"`
}
