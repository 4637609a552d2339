package request

import "github.com/edvin/cronhook/internal/model"

// TokenAuth is the request payload shape for OAuth2 client-credentials
// settings on templates, projects and cronjobs. All fields are optional;
// empty fields fall through the auth chain.
type TokenAuth struct {
	TokenEndpoint string `json:"token_endpoint" validate:"omitempty,url"`
	Scope         string `json:"scope" validate:"omitempty,max=255"`
	ClientID      string `json:"client_id" validate:"omitempty,max=255"`
	ClientSecret  string `json:"client_secret" validate:"omitempty,max=255"`
}

func (t TokenAuth) Model() model.TokenAuth {
	return model.TokenAuth{
		TokenEndpoint: t.TokenEndpoint,
		Scope:         t.Scope,
		ClientID:      t.ClientID,
		ClientSecret:  t.ClientSecret,
	}
}
