package request

type CreateConfigTemplate struct {
	Key  string    `json:"key" validate:"required,slug"`
	Auth TokenAuth `json:"auth"`
}

type UpdateConfigTemplate struct {
	Key  *string    `json:"key" validate:"omitempty,slug"`
	Auth *TokenAuth `json:"auth"`
}
